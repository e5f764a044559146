package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eyesmystery/bookclub-api/internal/api/middleware"
	"github.com/eyesmystery/bookclub-api/internal/dto"
	"github.com/eyesmystery/bookclub-api/internal/service"
	"github.com/eyesmystery/bookclub-api/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register 注册
// POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    result.User,
		"token":   result.Token,
	})
}

// Login 登录
// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    result.User,
		"token":   result.Token,
	})
}

// Logout 登出，吊销当前 Token
// POST /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authSvc.Logout(c.Request.Context(), middleware.CurrentClaims(c)); err != nil {
		handleError(c, err)
		return
	}
	response.OKMessage(c, "Logged out successfully", "", nil)
}

// Me 当前用户
// GET /api/user
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authSvc.CurrentUser(c.Request.Context(), actor(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "user", user)
}
