package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/eyesmystery/bookclub-api/internal/dto"
	"github.com/eyesmystery/bookclub-api/internal/service"
	"github.com/eyesmystery/bookclub-api/pkg/response"
)

// ReviewHandler 书评 HTTP 处理器
type ReviewHandler struct {
	reviewSvc service.ReviewService
}

// NewReviewHandler 创建 ReviewHandler
func NewReviewHandler(reviewSvc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewSvc: reviewSvc}
}

// Submit 提交书评（每本书仅一次）
// POST /api/books/:id/review
func (h *ReviewHandler) Submit(c *gin.Context) {
	bookID, ok := parseID(c, "Book")
	if !ok {
		return
	}
	var req dto.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	review, err := h.reviewSvc.Submit(c.Request.Context(), actor(c), bookID, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, "Review added successfully", "review", review)
}

// ListByBook 某本书的书评，最新在前
// GET /api/books/:id/reviews
func (h *ReviewHandler) ListByBook(c *gin.Context) {
	bookID, ok := parseID(c, "Book")
	if !ok {
		return
	}
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.reviewSvc.ListByBook(c.Request.Context(), actor(c), bookID, &q)
	if err != nil {
		handleError(c, err)
		return
	}
	writePage(c, "reviews", page)
}

// Delete 删除书评（管理员）
// DELETE /api/reviews/:id
func (h *ReviewHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "Review")
	if !ok {
		return
	}
	if err := h.reviewSvc.Delete(c.Request.Context(), actor(c), id); err != nil {
		handleError(c, err)
		return
	}
	response.OKMessage(c, "Review deleted successfully", "", nil)
}
