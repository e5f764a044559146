package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eyesmystery/bookclub-api/internal/model"
)

// RevokedTokenRepository 数据库版 Token 黑名单（未启用 Redis 时使用）
type RevokedTokenRepository interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type revokedTokenRepo struct {
	db *gorm.DB
}

// NewRevokedTokenRepo 创建 RevokedTokenRepository 实例
func NewRevokedTokenRepo(db *gorm.DB) RevokedTokenRepository {
	return &revokedTokenRepo{db: db}
}

// BlacklistToken 记录 JTI 直到 Token 自然过期；重复吊销不报错
func (r *revokedTokenRepo) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	token := model.RevokedToken{JTI: jti, ExpiresAt: time.Now().Add(ttl).UTC()}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&token).Error
}

func (r *revokedTokenRepo) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.RevokedToken{}).
		Where("jti = ? AND expires_at > ?", jti, time.Now().UTC()).
		Count(&count).Error
	return count > 0, err
}

// PurgeExpired 清理已过期的记录
func (r *revokedTokenRepo) PurgeExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now().UTC()).
		Delete(&model.RevokedToken{})
	return res.RowsAffected, res.Error
}
