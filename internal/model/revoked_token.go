package model

import "time"

// RevokedToken 已吊销的 Token（revoked_tokens）
// 未启用 Redis 时作为登出黑名单，过期记录可随时清理
type RevokedToken struct {
	JTI       string    `gorm:"column:jti;type:varchar(64);primaryKey" json:"jti"`
	ExpiresAt time.Time `gorm:"not null;index"                         json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (RevokedToken) TableName() string { return "revoked_tokens" }
