package model

import "time"

// Article 文章表（articles）
// 仅当 published_at 非空时视为已发布
type Article struct {
	BaseModel
	Title         string     `gorm:"type:varchar(255);not null" json:"title"`
	Content       string     `gorm:"type:text;not null"         json:"content"`
	Excerpt       *string    `gorm:"type:text"                  json:"excerpt"`
	FeaturedImage *string    `gorm:"type:varchar(255)"          json:"featured_image"`
	AuthorID      *uint      `gorm:"index"                      json:"author_id"`
	DivisionID    *uint      `gorm:"index"                      json:"division_id"`
	PublishedAt   *time.Time `gorm:"index"                      json:"published_at"`

	Author   *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL"   json:"author,omitempty"`
	Division *Division `gorm:"foreignKey:DivisionID;constraint:OnDelete:SET NULL" json:"division,omitempty"`
}

// TableName 指定表名
func (Article) TableName() string { return "articles" }

// IsPublished 是否已发布
func (a *Article) IsPublished() bool { return a.PublishedAt != nil }

// News 新闻表（news），发布规则同 Article
type News struct {
	BaseModel
	Title         string     `gorm:"type:varchar(255);not null" json:"title"`
	Content       string     `gorm:"type:text;not null"         json:"content"`
	Excerpt       *string    `gorm:"type:text"                  json:"excerpt"`
	FeaturedImage *string    `gorm:"type:varchar(255)"          json:"featured_image"`
	DivisionID    *uint      `gorm:"index"                      json:"division_id"`
	PublishedAt   *time.Time `gorm:"index"                      json:"published_at"`

	Division *Division `gorm:"foreignKey:DivisionID;constraint:OnDelete:SET NULL" json:"division,omitempty"`
}

// TableName 指定表名
func (News) TableName() string { return "news" }

// IsPublished 是否已发布
func (n *News) IsPublished() bool { return n.PublishedAt != nil }
