package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newObserved(level string) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level), logs
}

func TestGormLevel(t *testing.T) {
	cases := map[string]gormlogger.LogLevel{
		"debug": gormlogger.Info,
		"info":  gormlogger.Warn,
		"warn":  gormlogger.Warn,
		"error": gormlogger.Error,
	}
	for in, want := range cases {
		if got := GormLevel(in); got != want {
			t.Errorf("GormLevel(%q): 期望 %v，实际 %v", in, want, got)
		}
	}
}

func TestTrace_RecordNotFoundIgnored(t *testing.T) {
	l, logs := newObserved("info")
	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, gorm.ErrRecordNotFound)
	if logs.Len() != 0 {
		t.Errorf("记录不存在不应输出日志，实际 %d 条", logs.Len())
	}
}

func TestTrace_ErrorLogged(t *testing.T) {
	l, logs := newObserved("info")
	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "INSERT", 0 }, errors.New("boom"))
	if logs.FilterMessage("SQL 执行失败").Len() != 1 {
		t.Error("期望输出一条 SQL 失败日志")
	}
}

func TestTrace_SlowQuery(t *testing.T) {
	l, logs := newObserved("info")
	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) { return "SELECT", 1 }, nil)
	if logs.FilterMessage("慢查询").Len() != 1 {
		t.Error("期望输出一条慢查询日志")
	}
}

func TestLogMode_Silent(t *testing.T) {
	l, logs := newObserved("debug")
	silent := l.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT", 1 }, errors.New("boom"))
	if logs.Len() != 0 {
		t.Error("Silent 模式不应输出日志")
	}
}
