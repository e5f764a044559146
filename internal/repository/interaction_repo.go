package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eyesmystery/bookclub-api/internal/model"
)

// ────────────────────── 点赞 ──────────────────────

// LikeRepository 点赞数据访问接口
type LikeRepository interface {
	Create(ctx context.Context, like *model.BookLike) error
	Remove(ctx context.Context, userID, bookID uint) (bool, error)
	CountByBook(ctx context.Context, bookID uint) (int64, error)
}

type likeRepo struct {
	db *gorm.DB
}

// NewLikeRepo 创建 LikeRepository 实例
func NewLikeRepo(db *gorm.DB) LikeRepository {
	return &likeRepo{db: db}
}

func (r *likeRepo) Create(ctx context.Context, like *model.BookLike) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(like).Error
}

// Remove 删除 (user, book) 的点赞，返回是否确实删除了记录
func (r *likeRepo) Remove(ctx context.Context, userID, bookID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&model.BookLike{})
	return res.RowsAffected > 0, res.Error
}

func (r *likeRepo) CountByBook(ctx context.Context, bookID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.BookLike{}).Where("book_id = ?", bookID).Count(&count).Error
	return count, err
}

// ────────────────────── 书评 ──────────────────────

// ReviewRepository 书评数据访问接口
type ReviewRepository interface {
	Create(ctx context.Context, review *model.BookReview) error
	GetByID(ctx context.Context, id uint) (*model.BookReview, error)
	Exists(ctx context.Context, userID, bookID uint) (bool, error)
	ListByBook(ctx context.Context, bookID uint, page Page) ([]model.BookReview, int64, error)
	Delete(ctx context.Context, id uint) error
}

type reviewRepo struct {
	db *gorm.DB
}

// NewReviewRepo 创建 ReviewRepository 实例
func NewReviewRepo(db *gorm.DB) ReviewRepository {
	return &reviewRepo{db: db}
}

// 书评只附带评论者的公开字段
func reviewer(db *gorm.DB) *gorm.DB {
	return db.Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email") })
}

func (r *reviewRepo) Create(ctx context.Context, review *model.BookReview) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error
}

func (r *reviewRepo) GetByID(ctx context.Context, id uint) (*model.BookReview, error) {
	var review model.BookReview
	if err := r.db.WithContext(ctx).Scopes(reviewer).First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepo) Exists(ctx context.Context, userID, bookID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.BookReview{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error
	return count > 0, err
}

// ListByBook 某本书的书评，最新在前
func (r *reviewRepo) ListByBook(ctx context.Context, bookID uint, page Page) ([]model.BookReview, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&model.BookReview{}).Where("book_id = ?", bookID)
	}
	return listPage[model.BookReview](base, page, func(db *gorm.DB) *gorm.DB {
		return db.Scopes(reviewer).Order("created_at DESC").Order("id DESC")
	})
}

func (r *reviewRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.BookReview{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
