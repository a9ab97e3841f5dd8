package handlers

import (
	"github.com/biou/admin-console/internal/services"
	"github.com/biou/admin-console/pkg/response"
	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	roleService *services.RoleService
}

func NewRoleHandler(roleService *services.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

func (h *RoleHandler) Create(c *gin.Context) {
	var req services.RoleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	role, err := h.roleService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, role)
}

func (h *RoleHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	role, err := h.roleService.GetByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, role)
}

func (h *RoleHandler) Page(c *gin.Context) {
	var req services.RoleQuery
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.roleService.Page(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.roleService.List()
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, roles)
}

func (h *RoleHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.RoleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	role, err := h.roleService.Update(id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, role)
}

func (h *RoleHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.roleService.Delete(id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

type assignPermissionsRequest struct {
	PermissionIDs []uint `json:"permission_ids" binding:"required"`
}

func (h *RoleHandler) AssignPermissions(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req assignPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.roleService.AssignPermissions(id, req.PermissionIDs); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

func (h *RoleHandler) Permissions(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ids, err := h.roleService.PermissionIDs(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, ids)
}
