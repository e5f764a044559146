package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/eyesmystery/bookclub-api/config"
)

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "bookclub.db?_foreign_keys=on", SQLiteDSN("bookclub.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=on", SQLiteDSN("file:x?mode=memory"))
}

func TestMigrationFiles_Paired(t *testing.T) {
	files, err := MigrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)

	ups, downs := 0, 0
	for _, f := range files {
		switch {
		case strings.HasSuffix(f, ".up.sql"):
			ups++
		case strings.HasSuffix(f, ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, ups, downs, "每个 up 迁移都应有对应的 down 迁移")
}

type sample struct {
	ID   uint
	Name string `gorm:"uniqueIndex"`
}

func TestNewDB_SQLiteAutoMigrate(t *testing.T) {
	cfg := &config.DatabaseConfig{Driver: DriverSQLite, Path: "file:database_test?mode=memory&cache=shared"}
	db, err := NewDB(cfg, gormlogger.Discard, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, Migrate(db, DriverSQLite, zap.NewNop(), &sample{}))
	require.NoError(t, db.Create(&sample{Name: "a"}).Error)

	err = db.Create(&sample{Name: "a"}).Error
	assert.Error(t, err, "唯一索引冲突应返回错误")
}

func TestNewDB_UnknownDriver(t *testing.T) {
	_, err := NewDB(&config.DatabaseConfig{Driver: "oracle"}, gormlogger.Discard, zap.NewNop())
	assert.Error(t, err)
}
