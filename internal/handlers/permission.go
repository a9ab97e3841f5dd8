package handlers

import (
	"github.com/biou/admin-console/internal/services"
	"github.com/biou/admin-console/pkg/response"
	"github.com/gin-gonic/gin"
)

type PermissionHandler struct {
	permissionService *services.PermissionService
}

func NewPermissionHandler(permissionService *services.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissionService: permissionService}
}

func (h *PermissionHandler) Create(c *gin.Context) {
	var req services.PermissionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	perm, err := h.permissionService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, perm)
}

func (h *PermissionHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	perm, err := h.permissionService.GetByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, perm)
}

func (h *PermissionHandler) List(c *gin.Context) {
	perms, err := h.permissionService.List()
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, perms)
}

func (h *PermissionHandler) Tree(c *gin.Context) {
	tree, err := h.permissionService.Tree()
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, tree)
}

func (h *PermissionHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.PermissionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	perm, err := h.permissionService.Update(id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, perm)
}

func (h *PermissionHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.permissionService.Delete(id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}
