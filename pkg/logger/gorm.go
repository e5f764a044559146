package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// GormLogger 将 GORM 日志转发到 zap
type GormLogger struct {
	zl    *zap.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

// NewGormLogger 创建 GORM 日志适配器，appLevel 为应用日志级别
func NewGormLogger(zl *zap.Logger, appLevel string) *GormLogger {
	return &GormLogger{
		zl:    zl.Named("gorm").WithOptions(zap.AddCallerSkip(3)),
		level: GormLevel(appLevel),
		slow:  slowQueryThreshold,
	}
}

// GormLevel 应用日志级别映射为 GORM 日志级别
func GormLevel(appLevel string) gormlogger.LogLevel {
	switch appLevel {
	case "debug":
		return gormlogger.Info
	case "error", "dpanic", "panic", "fatal":
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}

// LogMode 实现 gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.zl.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.zl.Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.zl.Error(fmt.Sprintf(msg, args...))
	}
}

// Trace 记录 SQL；记录不存在不视为错误
func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.zl.Error("SQL 执行失败",
			zap.Error(err),
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows", rows),
			zap.String("sql", sql),
		)
	case elapsed > l.slow && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.zl.Warn("慢查询",
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows", rows),
			zap.String("sql", sql),
		)
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.zl.Debug("SQL",
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows", rows),
			zap.String("sql", sql),
		)
	}
}
