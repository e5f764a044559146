package dto

// ── 分部模块 DTO ──

// CreateDivisionRequest 创建分部请求
type CreateDivisionRequest struct {
	Name        string `json:"name"        binding:"required,max=255"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// UpdateDivisionRequest 更新分部请求
type UpdateDivisionRequest struct {
	Name        *string `json:"name"        binding:"omitnil,min=1,max=255"`
	Description *string `json:"description" binding:"omitnil,max=2000"`
}

// DivisionResponse 分部信息；计数仅在列表中返回
type DivisionResponse struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	UsersCount    *int64 `json:"users_count,omitempty"`
	EventsCount   *int64 `json:"events_count,omitempty"`
	ArticlesCount *int64 `json:"articles_count,omitempty"`
	NewsCount     *int64 `json:"news_count,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// DivisionDetailResponse 分部详情，附带成员与内容
type DivisionDetailResponse struct {
	DivisionResponse
	Users    []UserResponse    `json:"users"`
	Events   []EventResponse   `json:"events"`
	Articles []ArticleResponse `json:"articles"`
	News     []NewsResponse    `json:"news"`
}
