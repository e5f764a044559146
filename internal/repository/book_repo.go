package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eyesmystery/bookclub-api/internal/model"
)

// 书籍排序键 → SQL 表达式
var bookSorts = map[string]string{
	"created_at": "books.created_at",
	"title":      "books.title",
	"author":     "books.author",
	"popular":    "likes_count",
	"reviewed":   "reviews_count",
}

const bookCountsSelect = `books.*,
	(SELECT COUNT(*) FROM book_likes WHERE book_likes.book_id = books.id) AS likes_count,
	(SELECT COUNT(*) FROM book_reviews WHERE book_reviews.book_id = books.id) AS reviews_count`

// BookFilter 书籍列表筛选条件
type BookFilter struct {
	Search       string
	Author       string
	SortBy       string
	SortDir      string
	OnlyReviewed bool
}

// BookFlags 当前用户对某本书的点赞 / 评论状态
type BookFlags struct {
	Liked    bool
	Reviewed bool
}

// BookRepository 书籍数据访问接口
type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	GetByID(ctx context.Context, id uint) (*model.Book, error)
	List(ctx context.Context, filter BookFilter, page Page) ([]model.Book, int64, error)
	Top(ctx context.Context, sortBy string, limit int) ([]model.Book, error)
	Update(ctx context.Context, book *model.Book) error
	Delete(ctx context.Context, id uint) error
	Exists(ctx context.Context, id uint) (bool, error)
	FlagsForUser(ctx context.Context, userID uint, bookIDs []uint) (map[uint]BookFlags, error)
}

// bookRepo BookRepository 的 GORM 实现
type bookRepo struct {
	db *gorm.DB
}

// NewBookRepo 创建 BookRepository 实例
func NewBookRepo(db *gorm.DB) BookRepository {
	return &bookRepo{db: db}
}

// withCounts 附带点赞数、书评数与推荐人
func withCounts(db *gorm.DB) *gorm.DB {
	return db.Select(bookCountsSelect).Preload("RecommendedBy")
}

func (r *bookRepo) Create(ctx context.Context, book *model.Book) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(book).Error
}

// GetByID 查询书籍；软删除的书籍视为不存在
func (r *bookRepo) GetByID(ctx context.Context, id uint) (*model.Book, error) {
	var book model.Book
	err := r.db.WithContext(ctx).
		Model(&model.Book{}).
		Scopes(withCounts).
		Where("books.id = ?", id).
		First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepo) List(ctx context.Context, filter BookFilter, page Page) ([]model.Book, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Model(&model.Book{}).
			Scopes(search(filter.Search, "books.title", "books.author", "books.description"))
		if filter.Author != "" {
			q = q.Scopes(search(filter.Author, "books.author"))
		}
		if filter.OnlyReviewed {
			q = q.Where("EXISTS (SELECT 1 FROM book_reviews WHERE book_reviews.book_id = books.id)")
		}
		return q
	}

	dir := filter.SortDir
	if filter.SortBy == "popular" || filter.SortBy == "reviewed" {
		dir = "desc"
	}

	return listPage[model.Book](base, page, func(db *gorm.DB) *gorm.DB {
		return db.Scopes(withCounts, orderBy(filter.SortBy, dir, bookSorts, "books.created_at", "books.id DESC"))
	})
}

// Top 按排序键取前 limit 本（popular / recent）
func (r *bookRepo) Top(ctx context.Context, sortBy string, limit int) ([]model.Book, error) {
	books := make([]model.Book, 0)
	err := r.db.WithContext(ctx).
		Model(&model.Book{}).
		Scopes(withCounts, orderBy(sortBy, "desc", bookSorts, "books.created_at", "books.id DESC")).
		Limit(limit).
		Find(&books).Error
	return books, err
}

func (r *bookRepo) Update(ctx context.Context, book *model.Book) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(book).Error
}

// Delete 软删除
func (r *bookRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Book{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *bookRepo) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Book{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// FlagsForUser 批量查询用户对一组书籍的点赞 / 评论状态（每种关系一次查询）
func (r *bookRepo) FlagsForUser(ctx context.Context, userID uint, bookIDs []uint) (map[uint]BookFlags, error) {
	flags := make(map[uint]BookFlags, len(bookIDs))
	if userID == 0 || len(bookIDs) == 0 {
		return flags, nil
	}

	var liked []uint
	if err := r.db.WithContext(ctx).
		Model(&model.BookLike{}).
		Where("user_id = ? AND book_id IN ?", userID, bookIDs).
		Pluck("book_id", &liked).Error; err != nil {
		return nil, err
	}

	var reviewed []uint
	if err := r.db.WithContext(ctx).
		Model(&model.BookReview{}).
		Where("user_id = ? AND book_id IN ?", userID, bookIDs).
		Pluck("book_id", &reviewed).Error; err != nil {
		return nil, err
	}

	for _, id := range liked {
		f := flags[id]
		f.Liked = true
		flags[id] = f
	}
	for _, id := range reviewed {
		f := flags[id]
		f.Reviewed = true
		flags[id] = f
	}
	return flags, nil
}
