package dto

// ── 用户模块 DTO ──

// UpdateUserRequest 更新用户请求（部分更新）
// role 仅管理员可改，其余调用者提交时被忽略
type UpdateUserRequest struct {
	Name                 *string `json:"name"                  binding:"omitnil,min=1,max=255"`
	Email                *string `json:"email"                 binding:"omitnil,email,max=255"`
	Password             *string `json:"password"              binding:"omitnil,min=8"`
	PasswordConfirmation *string `json:"password_confirmation"`
	CurrentPassword      *string `json:"current_password"`
	DivisionID           *uint   `json:"division_id"           binding:"omitnil,min=1"`
	Role                 *string `json:"role"`
}

// UserListQuery 用户列表查询参数
type UserListQuery struct {
	PageQuery
	DivisionID uint   `form:"division_id"`
	Role       string `form:"role" binding:"omitempty,oneof=admin moderator user"`
}

// UserResponse 用户信息（脱敏）
type UserResponse struct {
	ID               uint              `json:"id"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	Role             string            `json:"role"`
	DivisionID       uint              `json:"division_id"`
	Division         *DivisionBrief    `json:"division,omitempty"`
	RecommendedBooks []BookResponse    `json:"recommended_books,omitempty"`
	Articles         []ArticleResponse `json:"articles,omitempty"`
	CreatedAt        string            `json:"created_at"`
	UpdatedAt        string            `json:"updated_at"`
}
