package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/eyesmystery/bookclub-api/internal/dto"
	"github.com/eyesmystery/bookclub-api/internal/service"
	"github.com/eyesmystery/bookclub-api/pkg/response"
)

// UserHandler 用户管理 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// List 用户列表（管理员）
// GET /api/users?division_id=&role=&page=&per_page=
func (h *UserHandler) List(c *gin.Context) {
	var q dto.UserListQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.userSvc.List(c.Request.Context(), actor(c), &q)
	if err != nil {
		handleError(c, err)
		return
	}
	writePage(c, "users", page)
}

// Get 用户详情（本人或管理员）
// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "User")
	if !ok {
		return
	}
	user, err := h.userSvc.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "user", user)
}

// Update 更新用户（本人或管理员）
// PUT /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "User")
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userSvc.Update(c.Request.Context(), actor(c), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OKMessage(c, "User updated successfully", "user", user)
}

// Delete 删除用户（管理员，不能删除自己）
// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "User")
	if !ok {
		return
	}
	if err := h.userSvc.Delete(c.Request.Context(), actor(c), id); err != nil {
		handleError(c, err)
		return
	}
	response.OKMessage(c, "User deleted successfully", "", nil)
}
