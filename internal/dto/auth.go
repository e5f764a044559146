package dto

// ── 认证模块 DTO ──

// RegisterRequest 注册请求；role 字段会被忽略
type RegisterRequest struct {
	Name                 string `json:"name"                  binding:"required,max=255"`
	Email                string `json:"email"                 binding:"required,email,max=255"`
	Password             string `json:"password"              binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation"`
	DivisionID           uint   `json:"division_id"           binding:"required"`
	Role                 string `json:"role"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse 注册 / 登录结果
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}
