package dto

// ── 书籍模块 DTO ──

// CreateBookRequest 新增书籍请求
type CreateBookRequest struct {
	Title               string  `json:"title"                  binding:"required,max=255"`
	Author              string  `json:"author"                 binding:"required,max=255"`
	Description         string  `json:"description"            binding:"required"`
	CoverImage          *string `json:"cover_image"            binding:"omitnil,max=255"`
	PDFFile             *string `json:"pdf_file"               binding:"omitnil,max=255"`
	RecommendedByUserID *uint   `json:"recommended_by_user_id" binding:"omitnil,min=1"`
}

// UpdateBookRequest 更新书籍请求（部分更新）
type UpdateBookRequest struct {
	Title               *string        `json:"title"                  binding:"omitnil,min=1,max=255"`
	Author              *string        `json:"author"                 binding:"omitnil,min=1,max=255"`
	Description         *string        `json:"description"            binding:"omitnil,min=1"`
	CoverImage          *string        `json:"cover_image"            binding:"omitnil,max=255"`
	PDFFile             *string        `json:"pdf_file"               binding:"omitnil,max=255"`
	RecommendedByUserID Nullable[uint] `json:"recommended_by_user_id"` // null 清除推荐人
}

// BookListQuery 书籍列表查询参数
type BookListQuery struct {
	PageQuery
	Search  string `form:"search"`
	Author  string `form:"author"`
	SortBy  string `form:"sort_by"  binding:"omitempty,oneof=created_at title author popular reviewed"`
	SortDir string `form:"sort_dir" binding:"omitempty,oneof=asc desc"`
}

// BookResponse 书籍信息，带聚合计数与当前用户标记
type BookResponse struct {
	ID                  uint       `json:"id"`
	Title               string     `json:"title"`
	Author              string     `json:"author"`
	Description         string     `json:"description"`
	CoverImage          *string    `json:"cover_image"`
	PDFFile             *string    `json:"pdf_file"`
	RecommendedByUserID *uint      `json:"recommended_by_user_id"`
	RecommendedBy       *UserBrief `json:"recommended_by"`
	LikesCount          int64      `json:"likes_count"`
	ReviewsCount        int64      `json:"reviews_count"`
	UserHasLiked        *bool      `json:"user_has_liked,omitempty"`
	UserHasReviewed     *bool      `json:"user_has_reviewed,omitempty"`
	CreatedAt           string     `json:"created_at"`
	UpdatedAt           string     `json:"updated_at"`
}

// LikeResponse 点赞切换结果
type LikeResponse struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

// ── 书评 ──

// CreateReviewRequest 提交书评请求
type CreateReviewRequest struct {
	Rating  int     `json:"rating"  binding:"required,min=1,max=5"`
	Comment *string `json:"comment" binding:"omitnil,max=2000"`
}

// ReviewResponse 书评信息
type ReviewResponse struct {
	ID        uint       `json:"id"`
	UserID    uint       `json:"user_id"`
	BookID    uint       `json:"book_id"`
	Rating    int        `json:"rating"`
	Comment   *string    `json:"comment"`
	User      *UserBrief `json:"user,omitempty"`
	CreatedAt string     `json:"created_at"`
	UpdatedAt string     `json:"updated_at"`
}
