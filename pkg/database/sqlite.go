package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLiteConfig SQLite 配置，用于本地开发和测试
type SQLiteConfig struct {
	ServiceName string
	Path        string // 文件路径或 file::memory: 形式的 DSN
	LogLevel    string
}

// InitSQLite 打开 SQLite
// 只允许一个连接，写事务因此串行执行
func InitSQLite(config *SQLiteConfig) (*gorm.DB, error) {
	if config == nil {
		return nil, fmt.Errorf("sqlite config is nil")
	}
	if config.Path == "" {
		config.Path = "akademi.db"
	}

	db, err := gorm.Open(sqlite.Open(config.Path), gormConfig(config.ServiceName, config.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", config.Path, err)
	}
	if err := (Pool{MaxOpenConns: 1}).apply(db); err != nil {
		return nil, err
	}
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	log.Printf("[%s] sqlite opened: %s", serviceName(config.ServiceName), config.Path)
	return db, nil
}
