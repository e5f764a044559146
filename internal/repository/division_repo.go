package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eyesmystery/bookclub-api/internal/model"
)

// DivisionRepository 分部数据访问接口
type DivisionRepository interface {
	Create(ctx context.Context, division *model.Division) error
	GetByID(ctx context.Context, id uint) (*model.Division, error)
	GetDetail(ctx context.Context, id uint) (*model.Division, error)
	ListWithCounts(ctx context.Context) ([]model.Division, error)
	Update(ctx context.Context, division *model.Division) error
	Delete(ctx context.Context, id uint) error
	Exists(ctx context.Context, id uint) (bool, error)
	NameTaken(ctx context.Context, name string, exceptID uint) (bool, error)
	CountMembers(ctx context.Context, id uint) (int64, error)
	SeedDefaults(ctx context.Context, names []string) error
}

// divisionRepo DivisionRepository 的 GORM 实现
type divisionRepo struct {
	db *gorm.DB
}

// NewDivisionRepo 创建 DivisionRepository 实例
func NewDivisionRepo(db *gorm.DB) DivisionRepository {
	return &divisionRepo{db: db}
}

const divisionCountsSelect = `divisions.*,
	(SELECT COUNT(*) FROM users WHERE users.division_id = divisions.id) AS users_count,
	(SELECT COUNT(*) FROM events WHERE events.division_id = divisions.id) AS events_count,
	(SELECT COUNT(*) FROM articles WHERE articles.division_id = divisions.id) AS articles_count,
	(SELECT COUNT(*) FROM news WHERE news.division_id = divisions.id) AS news_count`

func (r *divisionRepo) Create(ctx context.Context, division *model.Division) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(division).Error
}

func (r *divisionRepo) GetByID(ctx context.Context, id uint) (*model.Division, error) {
	var division model.Division
	if err := r.db.WithContext(ctx).First(&division, id).Error; err != nil {
		return nil, err
	}
	return &division, nil
}

// GetDetail 加载成员、活动、文章与新闻
func (r *divisionRepo) GetDetail(ctx context.Context, id uint) (*model.Division, error) {
	var division model.Division
	err := r.db.WithContext(ctx).
		Preload("Users", func(db *gorm.DB) *gorm.DB { return db.Order("users.name ASC") }).
		Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("events.start_date ASC") }).
		Preload("Articles", func(db *gorm.DB) *gorm.DB { return db.Order("articles.created_at DESC") }).
		Preload("News", func(db *gorm.DB) *gorm.DB { return db.Order("news.created_at DESC") }).
		First(&division, id).Error
	if err != nil {
		return nil, err
	}
	return &division, nil
}

func (r *divisionRepo) ListWithCounts(ctx context.Context) ([]model.Division, error) {
	var divisions []model.Division
	err := r.db.WithContext(ctx).
		Model(&model.Division{}).
		Select(divisionCountsSelect).
		Order("divisions.id ASC").
		Find(&divisions).Error
	return divisions, err
}

func (r *divisionRepo) Update(ctx context.Context, division *model.Division) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(division).Error
}

// Delete 删除分部；其活动、文章、新闻保留并解除关联
func (r *divisionRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{&model.Event{}, &model.Article{}, &model.News{}} {
			if err := tx.Model(m).Where("division_id = ?", id).Update("division_id", nil).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&model.Division{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *divisionRepo) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Division{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *divisionRepo) NameTaken(ctx context.Context, name string, exceptID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Division{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *divisionRepo) CountMembers(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("division_id = ?", id).Count(&count).Error
	return count, err
}

// SeedDefaults 写入缺失的初始分部（已存在的按名称跳过）
func (r *divisionRepo) SeedDefaults(ctx context.Context, names []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range names {
			d := model.Division{Name: name}
			if err := tx.Where(model.Division{Name: name}).FirstOrCreate(&d).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
