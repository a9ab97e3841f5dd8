package handlers

import (
	"github.com/biou/admin-console/internal/middleware"
	"github.com/biou/admin-console/internal/services"
	"github.com/biou/admin-console/internal/utils"
	"github.com/biou/admin-console/pkg/response"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
}

func NewAuthHandler(authService *services.AuthService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Login(&req, utils.ClientIP(c.Request), utils.UserAgent(c.Request))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

func (h *AuthHandler) DingTalkLoginURL(c *gin.Context) {
	result, err := h.authService.DingTalkLoginURL(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

type dingTalkCallbackRequest struct {
	Code  string `json:"code" binding:"required"`
	State string `json:"state" binding:"required"`
}

func (h *AuthHandler) DingTalkCallback(c *gin.Context) {
	var req dingTalkCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.DingTalkLogin(c.Request.Context(), req.Code, req.State,
		utils.ClientIP(c.Request), utils.UserAgent(c.Request))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := c.Get(middleware.ContextToken)
	if !ok {
		response.Unauthorized(c, "not authenticated")
		return
	}

	h.authService.Logout(c.Request.Context(), token.(string),
		utils.ClientIP(c.Request), utils.UserAgent(c.Request))
	response.Success(c, nil)
}

func (h *AuthHandler) Validate(c *gin.Context) {
	token, ok := c.Get(middleware.ContextToken)
	if !ok {
		response.Success(c, gin.H{"valid": false})
		return
	}

	valid := h.authService.Validate(c.Request.Context(), token.(string))
	response.Success(c, gin.H{"valid": valid})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		response.Unauthorized(c, "not authenticated")
		return
	}

	user, err := h.userService.GetByID(userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}
