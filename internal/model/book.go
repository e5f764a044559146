package model

import "gorm.io/gorm"

// Book 书籍表（books），软删除
type Book struct {
	BaseModel
	Title               string         `gorm:"type:varchar(255);not null" json:"title"`
	Author              string         `gorm:"type:varchar(255);not null" json:"author"`
	Description         string         `gorm:"type:text;not null"         json:"description"`
	CoverImage          *string        `gorm:"type:varchar(255)"          json:"cover_image"`
	PDFFile             *string        `gorm:"column:pdf_file;type:varchar(255)" json:"pdf_file"`
	RecommendedByUserID *uint          `gorm:"index"                      json:"recommended_by_user_id"`
	DeletedAt           gorm.DeletedAt `gorm:"index"                      json:"-"`

	// 关联
	RecommendedBy *User        `gorm:"foreignKey:RecommendedByUserID;constraint:OnDelete:SET NULL" json:"recommended_by,omitempty"`
	Likes         []BookLike   `gorm:"foreignKey:BookID"                                           json:"-"`
	Reviews       []BookReview `gorm:"foreignKey:BookID"                                           json:"-"`

	// 聚合计数，由子查询填充
	LikesCount   int64 `gorm:"->;-:migration" json:"-"`
	ReviewsCount int64 `gorm:"->;-:migration" json:"-"`
}

// TableName 指定表名
func (Book) TableName() string { return "books" }

// BookLike 点赞表（book_likes），(user_id, book_id) 唯一
type BookLike struct {
	BaseModel
	UserID uint `gorm:"not null;uniqueIndex:idx_book_likes_user_book" json:"user_id"`
	BookID uint `gorm:"not null;uniqueIndex:idx_book_likes_user_book;index" json:"book_id"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Book *Book `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (BookLike) TableName() string { return "book_likes" }

// BookReview 书评表（book_reviews），(user_id, book_id) 唯一，rating ∈ [1,5]
type BookReview struct {
	BaseModel
	UserID  uint    `gorm:"not null;uniqueIndex:idx_book_reviews_user_book" json:"user_id"`
	BookID  uint    `gorm:"not null;uniqueIndex:idx_book_reviews_user_book;index" json:"book_id"`
	Rating  int     `gorm:"not null;check:chk_book_reviews_rating,rating >= 1 AND rating <= 5" json:"rating"`
	Comment *string `gorm:"type:text" json:"comment"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Book *Book `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (BookReview) TableName() string { return "book_reviews" }
