package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eyesmystery/bookclub-api/internal/model"
)

// EventFilter 活动列表筛选条件
type EventFilter struct {
	DivisionID uint
	Search     string
	From       *time.Time // 仅 start_date >= From
}

// EventRepository 活动数据访问接口
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id uint) (*model.Event, error)
	List(ctx context.Context, filter EventFilter, page Page) ([]model.Event, int64, error)
	ListAll(ctx context.Context, filter EventFilter) ([]model.Event, error)
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id uint) error
}

type eventRepo struct {
	db *gorm.DB
}

// NewEventRepo 创建 EventRepository 实例
func NewEventRepo(db *gorm.DB) EventRepository {
	return &eventRepo{db: db}
}

func (r *eventRepo) filtered(ctx context.Context, filter EventFilter) *gorm.DB {
	q := r.db.WithContext(ctx).
		Model(&model.Event{}).
		Scopes(search(filter.Search, "events.title", "events.description", "events.location"))
	if filter.DivisionID != 0 {
		q = q.Where("events.division_id = ?", filter.DivisionID)
	}
	if filter.From != nil {
		q = q.Where("events.start_date >= ?", *filter.From)
	}
	return q
}

func (r *eventRepo) Create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(event).Error
}

func (r *eventRepo) GetByID(ctx context.Context, id uint) (*model.Event, error) {
	var event model.Event
	if err := r.db.WithContext(ctx).Preload("Division").First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// List 按开始时间升序
func (r *eventRepo) List(ctx context.Context, filter EventFilter, page Page) ([]model.Event, int64, error) {
	base := func() *gorm.DB { return r.filtered(ctx, filter) }
	return listPage[model.Event](base, page, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Division").Order("events.start_date ASC").Order("events.id ASC")
	})
}

// ListAll 不分页（日历订阅使用）
func (r *eventRepo) ListAll(ctx context.Context, filter EventFilter) ([]model.Event, error) {
	events := make([]model.Event, 0)
	err := r.filtered(ctx, filter).
		Preload("Division").
		Order("events.start_date ASC").
		Order("events.id ASC").
		Find(&events).Error
	return events, err
}

func (r *eventRepo) Update(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(event).Error
}

func (r *eventRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Event{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
