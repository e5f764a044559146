// Package testutil 测试辅助：内存 sqlite 数据库与基础数据构造。
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/eyesmystery/bookclub-api/internal/model"
)

var dbSeq atomic.Int64

// NewDB 创建独立的内存数据库并完成建表，测试结束时关闭
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared&_foreign_keys=on", dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(model.All()...))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// Division 创建分部
func Division(t testing.TB, db *gorm.DB, name string) *model.Division {
	t.Helper()
	d := &model.Division{Name: name}
	require.NoError(t, db.Create(d).Error)
	return d
}

// User 创建用户，密码为 password
func User(t testing.TB, db *gorm.DB, email, role string, divisionID uint) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{
		Name:         strings.Split(email, "@")[0],
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		DivisionID:   divisionID,
	}
	require.NoError(t, db.Omit("Division").Create(u).Error)
	return u
}

// Book 创建书籍
func Book(t testing.TB, db *gorm.DB, title, author string) *model.Book {
	t.Helper()
	b := &model.Book{Title: title, Author: author, Description: title + " by " + author}
	require.NoError(t, db.Create(b).Error)
	return b
}
