package handlers

import (
	"strconv"

	"github.com/biou/admin-console/internal/services"
	"github.com/biou/admin-console/pkg/response"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *services.UserService
	roleService *services.RoleService
}

func NewUserHandler(userService *services.UserService, roleService *services.RoleService) *UserHandler {
	return &UserHandler{
		userService: userService,
		roleService: roleService,
	}
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func (h *UserHandler) Create(c *gin.Context) {
	var req services.UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, user)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}

func (h *UserHandler) Page(c *gin.Context) {
	var req services.UserQuery
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.userService.Page(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

func (h *UserHandler) ListEnabled(c *gin.Context) {
	users, err := h.userService.ListEnabled()
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, users)
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Update(id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}

type statusUpdateRequest struct {
	Status *int `json:"status" binding:"required,oneof=0 1"`
}

func (h *UserHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.userService.UpdateStatus(id, *req.Status); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

func (h *UserHandler) Statistics(c *gin.Context) {
	stats, err := h.userService.Statistics()
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

func (h *UserHandler) CheckUsername(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		response.BadRequest(c, "username is required")
		return
	}

	exists, err := h.userService.UsernameExists(username)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"exists": exists})
}

func (h *UserHandler) CheckEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.BadRequest(c, "email is required")
		return
	}

	exists, err := h.userService.EmailExists(email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"exists": exists})
}

func (h *UserHandler) CheckPhone(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		response.BadRequest(c, "phone is required")
		return
	}

	exists, err := h.userService.PhoneExists(phone)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"exists": exists})
}

type assignRolesRequest struct {
	RoleIDs []uint `json:"role_ids" binding:"required"`
}

func (h *UserHandler) AssignRoles(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req assignRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if _, err := h.userService.GetByID(id); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.roleService.AssignToUser(id, req.RoleIDs); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

func (h *UserHandler) Roles(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	roles, err := h.roleService.RolesForUser(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, roles)
}
