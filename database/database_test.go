package database

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/AyoubFaradi/emotion-ai/config"
	"github.com/AyoubFaradi/emotion-ai/database/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// sqliteConfig 指向临时目录的 SQLite 配置
func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DBType:     "sqlite",
		DBFilePath: filepath.Join(t.TempDir(), "test.db"),
	}
}

// --- 测试连接建立 ---

// TestNewDB_Sqlite 建连、迁移、探活、关闭的完整生命周期
func TestNewDB_Sqlite(t *testing.T) {
	db, err := NewDB(sqliteConfig(t))
	assert.NoError(t, err)

	assert.NoError(t, AutoMigrate(db))
	assert.NoError(t, Ping(db))
	assert.NoError(t, WaitForDB(db, 3, 10*time.Millisecond))
	assert.NoError(t, Close(db))
}

// TestNewDB_UnsupportedType 未知引擎直接报错
func TestNewDB_UnsupportedType(t *testing.T) {
	_, err := NewDB(&config.Config{DBType: "oracle"})
	assert.Error(t, err)
}

// TestNewDB_PostgresNotReadyDefersToWaitLoop 数据库未就绪时建连不失败，
// 等待交给 WaitForDB 的重试循环
func TestNewDB_PostgresNotReadyDefersToWaitLoop(t *testing.T) {
	cfg := &config.Config{
		DBType:     "postgres",
		DBHost:     "127.0.0.1",
		DBPort:     1, // 无服务监听的端口
		DBUsername: "u",
		DBPassword: "p",
		DBName:     "d",
	}

	db, err := NewDB(cfg)
	assert.NoError(t, err)
	assert.NotNil(t, db)

	err = WaitForDB(db, 2, 10*time.Millisecond)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")

	_ = Close(db)
}

// --- 测试错误翻译 ---

// TestNewDB_TranslatesDuplicateKey 唯一约束冲突翻译为 gorm.ErrDuplicatedKey
func TestNewDB_TranslatesDuplicateKey(t *testing.T) {
	db, err := NewDB(sqliteConfig(t))
	assert.NoError(t, err)
	defer Close(db)

	assert.NoError(t, AutoMigrate(db))

	first := &models.User{Username: "alice", Email: "alice@example.com", Password: "x"}
	assert.NoError(t, db.Create(first).Error)

	dup := &models.User{Username: "alice2", Email: "alice@example.com", Password: "x"}
	err = db.Create(dup).Error
	assert.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}
