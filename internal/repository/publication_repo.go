package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eyesmystery/bookclub-api/internal/model"
)

// PublicationFilter 文章 / 新闻列表筛选条件
type PublicationFilter struct {
	DivisionID    uint
	AuthorID      uint // 仅文章
	PublishedOnly bool
	Search        string
}

// 最新发布在前；未发布的按创建时间排
func publicationOrder(table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Order("COALESCE(" + table + ".published_at, " + table + ".created_at) DESC").
			Order(table + ".id DESC")
	}
}

func publicationFilter(table string, filter PublicationFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Scopes(search(filter.Search, table+".title", table+".content", table+".excerpt"))
		if filter.DivisionID != 0 {
			db = db.Where(table+".division_id = ?", filter.DivisionID)
		}
		if filter.PublishedOnly {
			db = db.Where(table + ".published_at IS NOT NULL")
		}
		return db
	}
}

// ────────────────────── 文章 ──────────────────────

// ArticleRepository 文章数据访问接口
type ArticleRepository interface {
	Create(ctx context.Context, article *model.Article) error
	GetByID(ctx context.Context, id uint) (*model.Article, error)
	List(ctx context.Context, filter PublicationFilter, page Page) ([]model.Article, int64, error)
	Update(ctx context.Context, article *model.Article) error
	Delete(ctx context.Context, id uint) error
}

type articleRepo struct {
	db *gorm.DB
}

// NewArticleRepo 创建 ArticleRepository 实例
func NewArticleRepo(db *gorm.DB) ArticleRepository {
	return &articleRepo{db: db}
}

func articleRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email") }).
		Preload("Division")
}

func (r *articleRepo) Create(ctx context.Context, article *model.Article) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(article).Error
}

func (r *articleRepo) GetByID(ctx context.Context, id uint) (*model.Article, error) {
	var article model.Article
	if err := r.db.WithContext(ctx).Scopes(articleRelations).First(&article, id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepo) List(ctx context.Context, filter PublicationFilter, page Page) ([]model.Article, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&model.Article{}).Scopes(publicationFilter("articles", filter))
		if filter.AuthorID != 0 {
			q = q.Where("articles.author_id = ?", filter.AuthorID)
		}
		return q
	}
	return listPage[model.Article](base, page, func(db *gorm.DB) *gorm.DB {
		return db.Scopes(articleRelations, publicationOrder("articles"))
	})
}

func (r *articleRepo) Update(ctx context.Context, article *model.Article) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(article).Error
}

func (r *articleRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Article{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ────────────────────── 新闻 ──────────────────────

// NewsRepository 新闻数据访问接口
type NewsRepository interface {
	Create(ctx context.Context, news *model.News) error
	GetByID(ctx context.Context, id uint) (*model.News, error)
	List(ctx context.Context, filter PublicationFilter, page Page) ([]model.News, int64, error)
	Update(ctx context.Context, news *model.News) error
	Delete(ctx context.Context, id uint) error
}

type newsRepo struct {
	db *gorm.DB
}

// NewNewsRepo 创建 NewsRepository 实例
func NewNewsRepo(db *gorm.DB) NewsRepository {
	return &newsRepo{db: db}
}

func (r *newsRepo) Create(ctx context.Context, news *model.News) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(news).Error
}

func (r *newsRepo) GetByID(ctx context.Context, id uint) (*model.News, error) {
	var news model.News
	if err := r.db.WithContext(ctx).Preload("Division").First(&news, id).Error; err != nil {
		return nil, err
	}
	return &news, nil
}

func (r *newsRepo) List(ctx context.Context, filter PublicationFilter, page Page) ([]model.News, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&model.News{}).Scopes(publicationFilter("news", filter))
	}
	return listPage[model.News](base, page, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Division").Scopes(publicationOrder("news"))
	})
}

func (r *newsRepo) Update(ctx context.Context, news *model.News) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(news).Error
}

func (r *newsRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.News{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
