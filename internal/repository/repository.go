package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User         UserRepository
	Division     DivisionRepository
	Book         BookRepository
	Like         LikeRepository
	Review       ReviewRepository
	Event        EventRepository
	Article      ArticleRepository
	News         NewsRepository
	RevokedToken RevokedTokenRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		Division:     NewDivisionRepo(db),
		Book:         NewBookRepo(db),
		Like:         NewLikeRepo(db),
		Review:       NewReviewRepo(db),
		Event:        NewEventRepo(db),
		Article:      NewArticleRepo(db),
		News:         NewNewsRepo(db),
		RevokedToken: NewRevokedTokenRepo(db),
	}
}
