package model

import "time"

// BaseModel 通用主键与审计字段（所有业务模型嵌入）
type BaseModel struct {
	ID        uint      `gorm:"primaryKey"                         json:"id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// All 返回需要建表的全部模型（sqlite 驱动下用于 AutoMigrate）
func All() []interface{} {
	return []interface{}{
		&Division{},
		&User{},
		&Book{},
		&BookLike{},
		&BookReview{},
		&Event{},
		&Article{},
		&News{},
		&RevokedToken{},
	}
}
