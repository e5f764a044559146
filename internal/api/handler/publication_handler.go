package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/eyesmystery/bookclub-api/internal/dto"
	"github.com/eyesmystery/bookclub-api/internal/service"
	"github.com/eyesmystery/bookclub-api/pkg/response"
)

// ── 文章 ──

// ArticleHandler 文章 HTTP 处理器
type ArticleHandler struct {
	articleSvc service.ArticleService
}

// NewArticleHandler 创建 ArticleHandler
func NewArticleHandler(articleSvc service.ArticleService) *ArticleHandler {
	return &ArticleHandler{articleSvc: articleSvc}
}

// List 文章列表
// GET /api/articles?division_id=&author_id=&published=&search=
func (h *ArticleHandler) List(c *gin.Context) {
	var q dto.ArticleListQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.articleSvc.List(c.Request.Context(), actor(c), &q)
	if err != nil {
		handleError(c, err)
		return
	}
	writePage(c, "articles", page)
}

// Get 文章详情（含 content_html）
// GET /api/articles/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "Article")
	if !ok {
		return
	}
	article, err := h.articleSvc.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "article", article)
}

// Create 创建文章（管理员）
// POST /api/articles
func (h *ArticleHandler) Create(c *gin.Context) {
	var req dto.CreateArticleRequest
	if !bindJSON(c, &req) {
		return
	}
	article, err := h.articleSvc.Create(c.Request.Context(), actor(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, "Article created successfully", "article", article)
}

// Update 更新文章（管理员）
// PUT /api/articles/:id
func (h *ArticleHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "Article")
	if !ok {
		return
	}
	var req dto.UpdateArticleRequest
	if !bindJSON(c, &req) {
		return
	}
	article, err := h.articleSvc.Update(c.Request.Context(), actor(c), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OKMessage(c, "Article updated successfully", "article", article)
}

// Delete 删除文章（管理员）
// DELETE /api/articles/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "Article")
	if !ok {
		return
	}
	if err := h.articleSvc.Delete(c.Request.Context(), actor(c), id); err != nil {
		handleError(c, err)
		return
	}
	response.OKMessage(c, "Article deleted successfully", "", nil)
}

// ── 新闻 ──

// NewsHandler 新闻 HTTP 处理器
type NewsHandler struct {
	newsSvc service.NewsService
}

// NewNewsHandler 创建 NewsHandler
func NewNewsHandler(newsSvc service.NewsService) *NewsHandler {
	return &NewsHandler{newsSvc: newsSvc}
}

// List 新闻列表
// GET /api/news?division_id=&published=&search=
func (h *NewsHandler) List(c *gin.Context) {
	var q dto.NewsListQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.newsSvc.List(c.Request.Context(), actor(c), &q)
	if err != nil {
		handleError(c, err)
		return
	}
	writePage(c, "news", page)
}

// Get 新闻详情（含 content_html）
// GET /api/news/:id
func (h *NewsHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "News")
	if !ok {
		return
	}
	news, err := h.newsSvc.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, "news", news)
}

// Create 创建新闻（管理员）
// POST /api/news
func (h *NewsHandler) Create(c *gin.Context) {
	var req dto.CreateNewsRequest
	if !bindJSON(c, &req) {
		return
	}
	news, err := h.newsSvc.Create(c.Request.Context(), actor(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, "News created successfully", "news", news)
}

// Update 更新新闻（管理员）
// PUT /api/news/:id
func (h *NewsHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "News")
	if !ok {
		return
	}
	var req dto.UpdateNewsRequest
	if !bindJSON(c, &req) {
		return
	}
	news, err := h.newsSvc.Update(c.Request.Context(), actor(c), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OKMessage(c, "News updated successfully", "news", news)
}

// Delete 删除新闻（管理员）
// DELETE /api/news/:id
func (h *NewsHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "News")
	if !ok {
		return
	}
	if err := h.newsSvc.Delete(c.Request.Context(), actor(c), id); err != nil {
		handleError(c, err)
		return
	}
	response.OKMessage(c, "News deleted successfully", "", nil)
}
