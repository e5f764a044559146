package dto

// ── 活动模块 DTO ──

// CreateEventRequest 创建活动请求；日期接受 RFC 3339 或 "2006-01-02 15:04:05"
type CreateEventRequest struct {
	Title           string  `json:"title"            binding:"required,max=255"`
	Description     string  `json:"description"      binding:"required"`
	StartDate       string  `json:"start_date"       binding:"required,datetime_any"`
	EndDate         *string `json:"end_date"         binding:"omitnil,datetime_any"`
	Location        *string `json:"location"         binding:"omitnil,max=255"`
	MaxParticipants *int    `json:"max_participants" binding:"omitnil,min=1"`
	DivisionID      *uint   `json:"division_id"      binding:"omitnil,min=1"`
}

// UpdateEventRequest 更新活动请求（部分更新）
type UpdateEventRequest struct {
	Title           *string          `json:"title"            binding:"omitnil,min=1,max=255"`
	Description     *string          `json:"description"      binding:"omitnil,min=1"`
	StartDate       *string          `json:"start_date"       binding:"omitnil,datetime_any"`
	EndDate         Nullable[string] `json:"end_date"` // null 清除结束时间
	Location        *string          `json:"location"         binding:"omitnil,max=255"`
	MaxParticipants *int             `json:"max_participants" binding:"omitnil,min=1"`
	DivisionID      Nullable[uint]   `json:"division_id"` // null 解除分部
}

// EventListQuery 活动列表查询参数
type EventListQuery struct {
	PageQuery
	DivisionID uint   `form:"division_id"`
	Upcoming   bool   `form:"upcoming"`
	Search     string `form:"search"`
}

// EventResponse 活动信息
type EventResponse struct {
	ID              uint           `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	StartDate       string         `json:"start_date"`
	EndDate         *string        `json:"end_date"`
	Location        *string        `json:"location"`
	MaxParticipants *int           `json:"max_participants"`
	DivisionID      *uint          `json:"division_id"`
	Division        *DivisionBrief `json:"division,omitempty"`
	CreatedAt       string         `json:"created_at"`
	UpdatedAt       string         `json:"updated_at"`
}
