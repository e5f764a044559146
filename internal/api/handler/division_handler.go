package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/eyesmystery/bookclub-api/internal/dto"
	"github.com/eyesmystery/bookclub-api/internal/service"
	"github.com/eyesmystery/bookclub-api/pkg/response"
)

// DivisionHandler 分部 HTTP 处理器
type DivisionHandler struct {
	divisionSvc service.DivisionService
}

// NewDivisionHandler 创建 DivisionHandler
func NewDivisionHandler(divisionSvc service.DivisionService) *DivisionHandler {
	return &DivisionHandler{divisionSvc: divisionSvc}
}

// List 分部列表（公开）
// GET /api/divisions
func (h *DivisionHandler) List(c *gin.Context) {
	divisions, err := h.divisionSvc.List(c.Request.Context(), actor(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "divisions", divisions)
}

// Get 分部详情（公开）
// GET /api/divisions/:id
func (h *DivisionHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "Division")
	if !ok {
		return
	}
	division, err := h.divisionSvc.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "division", division)
}

// Create 创建分部
// POST /api/divisions
func (h *DivisionHandler) Create(c *gin.Context) {
	var req dto.CreateDivisionRequest
	if !bindJSON(c, &req) {
		return
	}
	division, err := h.divisionSvc.Create(c.Request.Context(), actor(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, "Division created successfully", "division", division)
}

// Update 更新分部
// PUT /api/divisions/:id
func (h *DivisionHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "Division")
	if !ok {
		return
	}
	var req dto.UpdateDivisionRequest
	if !bindJSON(c, &req) {
		return
	}
	division, err := h.divisionSvc.Update(c.Request.Context(), actor(c), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OKMessage(c, "Division updated successfully", "division", division)
}

// Delete 删除分部
// DELETE /api/divisions/:id
func (h *DivisionHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "Division")
	if !ok {
		return
	}
	if err := h.divisionSvc.Delete(c.Request.Context(), actor(c), id); err != nil {
		handleError(c, err)
		return
	}
	response.OKMessage(c, "Division deleted successfully", "", nil)
}
