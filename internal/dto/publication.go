package dto

// ── 文章 / 新闻模块 DTO ──

// CreateArticleRequest 创建文章请求
// published_at 为真值时以当前时间发布；is_published 为其别名
type CreateArticleRequest struct {
	Title         string      `json:"title"          binding:"required,max=255"`
	Content       string      `json:"content"        binding:"required"`
	Excerpt       *string     `json:"excerpt"        binding:"omitnil,max=1000"`
	FeaturedImage *string     `json:"featured_image" binding:"omitnil,max=255"`
	AuthorID      *uint       `json:"author_id"      binding:"omitnil,min=1"`
	DivisionID    *uint       `json:"division_id"    binding:"omitnil,min=1"`
	PublishedAt   PublishFlag `json:"published_at"`
	IsPublished   PublishFlag `json:"is_published"`
}

// UpdateArticleRequest 更新文章请求（部分更新）
type UpdateArticleRequest struct {
	Title         *string        `json:"title"          binding:"omitnil,min=1,max=255"`
	Content       *string        `json:"content"        binding:"omitnil,min=1"`
	Excerpt       *string        `json:"excerpt"        binding:"omitnil,max=1000"`
	FeaturedImage *string        `json:"featured_image" binding:"omitnil,max=255"`
	AuthorID      *uint          `json:"author_id"      binding:"omitnil,min=1"`
	DivisionID    Nullable[uint] `json:"division_id"` // null 解除分部
	PublishedAt   PublishFlag    `json:"published_at"`
	IsPublished   PublishFlag    `json:"is_published"`
}

// CreateNewsRequest 创建新闻请求
type CreateNewsRequest struct {
	Title         string      `json:"title"          binding:"required,max=255"`
	Content       string      `json:"content"        binding:"required"`
	Excerpt       *string     `json:"excerpt"        binding:"omitnil,max=1000"`
	FeaturedImage *string     `json:"featured_image" binding:"omitnil,max=255"`
	DivisionID    *uint       `json:"division_id"    binding:"omitnil,min=1"`
	PublishedAt   PublishFlag `json:"published_at"`
	IsPublished   PublishFlag `json:"is_published"`
}

// UpdateNewsRequest 更新新闻请求（部分更新）
type UpdateNewsRequest struct {
	Title         *string        `json:"title"          binding:"omitnil,min=1,max=255"`
	Content       *string        `json:"content"        binding:"omitnil,min=1"`
	Excerpt       *string        `json:"excerpt"        binding:"omitnil,max=1000"`
	FeaturedImage *string        `json:"featured_image" binding:"omitnil,max=255"`
	DivisionID    Nullable[uint] `json:"division_id"` // null 解除分部
	PublishedAt   PublishFlag    `json:"published_at"`
	IsPublished   PublishFlag    `json:"is_published"`
}

// PublishChange 合并 published_at 与 is_published，返回 (是否修改, 是否发布)
func PublishChange(publishedAt, isPublished PublishFlag) (bool, bool) {
	if publishedAt.Set {
		return true, publishedAt.Value
	}
	if isPublished.Set {
		return true, isPublished.Value
	}
	return false, false
}

// ArticleListQuery 文章列表查询参数
type ArticleListQuery struct {
	PageQuery
	DivisionID uint   `form:"division_id"`
	AuthorID   uint   `form:"author_id"`
	Published  bool   `form:"published"`
	Search     string `form:"search"`
}

// NewsListQuery 新闻列表查询参数
type NewsListQuery struct {
	PageQuery
	DivisionID uint   `form:"division_id"`
	Published  bool   `form:"published"`
	Search     string `form:"search"`
}

// ArticleResponse 文章信息；content_html 仅在详情中返回
type ArticleResponse struct {
	ID            uint           `json:"id"`
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	ContentHTML   string         `json:"content_html,omitempty"`
	Excerpt       *string        `json:"excerpt"`
	FeaturedImage *string        `json:"featured_image"`
	AuthorID      *uint          `json:"author_id"`
	Author        *UserBrief     `json:"author,omitempty"`
	DivisionID    *uint          `json:"division_id"`
	Division      *DivisionBrief `json:"division,omitempty"`
	IsPublished   bool           `json:"is_published"`
	PublishedAt   *string        `json:"published_at"`
	CreatedAt     string         `json:"created_at"`
	UpdatedAt     string         `json:"updated_at"`
}

// NewsResponse 新闻信息；content_html 仅在详情中返回
type NewsResponse struct {
	ID            uint           `json:"id"`
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	ContentHTML   string         `json:"content_html,omitempty"`
	Excerpt       *string        `json:"excerpt"`
	FeaturedImage *string        `json:"featured_image"`
	DivisionID    *uint          `json:"division_id"`
	Division      *DivisionBrief `json:"division,omitempty"`
	IsPublished   bool           `json:"is_published"`
	PublishedAt   *string        `json:"published_at"`
	CreatedAt     string         `json:"created_at"`
	UpdatedAt     string         `json:"updated_at"`
}
