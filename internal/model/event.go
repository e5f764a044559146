package model

import "time"

// Event 活动表（events）
type Event struct {
	BaseModel
	Title           string     `gorm:"type:varchar(255);not null" json:"title"`
	Description     string     `gorm:"type:text;not null"         json:"description"`
	StartDate       time.Time  `gorm:"not null;index"             json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
	Location        *string    `gorm:"type:varchar(255)"          json:"location"`
	MaxParticipants *int       `json:"max_participants"`
	DivisionID      *uint      `gorm:"index"                      json:"division_id"`

	Division *Division `gorm:"foreignKey:DivisionID;constraint:OnDelete:SET NULL" json:"division,omitempty"`
}

// TableName 指定表名
func (Event) TableName() string { return "events" }
