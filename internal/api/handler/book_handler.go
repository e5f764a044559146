package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eyesmystery/bookclub-api/internal/dto"
	"github.com/eyesmystery/bookclub-api/internal/service"
	"github.com/eyesmystery/bookclub-api/pkg/response"
)

// BookHandler 书籍 HTTP 处理器
type BookHandler struct {
	bookSvc service.BookService
}

// NewBookHandler 创建 BookHandler
func NewBookHandler(bookSvc service.BookService) *BookHandler {
	return &BookHandler{bookSvc: bookSvc}
}

// List 书籍列表
// GET /api/books?search=&author=&sort_by=&sort_dir=&page=&per_page=
func (h *BookHandler) List(c *gin.Context) {
	var q dto.BookListQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.bookSvc.List(c.Request.Context(), actor(c), &q)
	if err != nil {
		handleError(c, err)
		return
	}
	writePage(c, "books", page)
}

// Popular 点赞最多的书籍
// GET /api/books/popular?limit=
func (h *BookHandler) Popular(c *gin.Context) {
	var q dto.LimitQuery
	if !bindQuery(c, &q) {
		return
	}
	books, err := h.bookSvc.Popular(c.Request.Context(), actor(c), q.Limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "books", books)
}

// Recent 最新加入的书籍
// GET /api/books/recent?limit=
func (h *BookHandler) Recent(c *gin.Context) {
	var q dto.LimitQuery
	if !bindQuery(c, &q) {
		return
	}
	books, err := h.bookSvc.Recent(c.Request.Context(), actor(c), q.Limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "books", books)
}

// Reviewed 至少有一条书评的书籍
// GET /api/books/reviewed
func (h *BookHandler) Reviewed(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.bookSvc.Reviewed(c.Request.Context(), actor(c), &q)
	if err != nil {
		handleError(c, err)
		return
	}
	writePage(c, "books", page)
}

// Get 书籍详情
// GET /api/books/:id
func (h *BookHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "Book")
	if !ok {
		return
	}
	book, err := h.bookSvc.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "book", book)
}

// Create 添加书籍（管理员）
// POST /api/books
func (h *BookHandler) Create(c *gin.Context) {
	var req dto.CreateBookRequest
	if !bindJSON(c, &req) {
		return
	}
	book, err := h.bookSvc.Create(c.Request.Context(), actor(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, "Book added to club library successfully", "book", book)
}

// Update 更新书籍（管理员）
// PUT /api/books/:id
func (h *BookHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "Book")
	if !ok {
		return
	}
	var req dto.UpdateBookRequest
	if !bindJSON(c, &req) {
		return
	}
	book, err := h.bookSvc.Update(c.Request.Context(), actor(c), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OKMessage(c, "Book updated successfully", "book", book)
}

// Delete 软删除书籍（管理员）
// DELETE /api/books/:id
func (h *BookHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "Book")
	if !ok {
		return
	}
	if err := h.bookSvc.Delete(c.Request.Context(), actor(c), id); err != nil {
		handleError(c, err)
		return
	}
	response.OKMessage(c, "Book removed from club library successfully", "", nil)
}

// ToggleLike 点赞 / 取消点赞
// POST /api/books/:id/like
func (h *BookHandler) ToggleLike(c *gin.Context) {
	id, ok := parseID(c, "Book")
	if !ok {
		return
	}
	result, err := h.bookSvc.ToggleLike(c.Request.Context(), actor(c), id)
	if err != nil {
		handleError(c, err)
		return
	}

	message := "Book unliked successfully"
	if result.Liked {
		message = "Book liked successfully"
	}
	response.JSON(c, http.StatusOK, gin.H{
		"message":     message,
		"liked":       result.Liked,
		"likes_count": result.LikesCount,
	})
}
