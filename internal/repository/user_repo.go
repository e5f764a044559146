package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eyesmystery/bookclub-api/internal/model"
)

// UserFilter 用户列表筛选条件
type UserFilter struct {
	DivisionID uint
	Role       string
}

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetDetail(ctx context.Context, id uint) (*model.User, error)
	List(ctx context.Context, filter UserFilter, page Page) ([]model.User, int64, error)
	ListAll(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uint) error
	Exists(ctx context.Context, id uint) (bool, error)
	EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error)
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Division").
		First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Division").
		Where("LOWER(email) = LOWER(?)", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetDetail 加载分部、推荐书籍与文章
func (r *userRepo) GetDetail(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Division").
		Preload("RecommendedBooks", func(db *gorm.DB) *gorm.DB { return db.Order("books.created_at DESC") }).
		Preload("Articles", func(db *gorm.DB) *gorm.DB { return db.Order("articles.created_at DESC") }).
		First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) List(ctx context.Context, filter UserFilter, page Page) ([]model.User, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&model.User{})
		if filter.DivisionID != 0 {
			q = q.Where("division_id = ?", filter.DivisionID)
		}
		if filter.Role != "" {
			q = q.Where("role = ?", filter.Role)
		}
		return q
	}
	return listPage[model.User](base, page, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Division").Order("created_at DESC").Order("id DESC")
	})
}

// ListAll 全部用户（导出名册使用）
func (r *userRepo) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Preload("Division").
		Order("division_id ASC").
		Order("name ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

// Delete 在同一事务中清理点赞、书评，解除推荐与作者关联后删除用户
func (r *userRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.BookLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.BookReview{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Model(&model.Book{}).
			Where("recommended_by_user_id = ?", id).
			Update("recommended_by_user_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Article{}).
			Where("author_id = ?", id).
			Update("author_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *userRepo) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// EmailTaken 邮箱是否已被其他用户占用（exceptID 为 0 时不排除）
func (r *userRepo) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.User{}).Where("LOWER(email) = LOWER(?)", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}
