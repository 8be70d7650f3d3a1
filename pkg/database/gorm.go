// Package database 打开 PostgreSQL、SQLite 和 Redis 连接
package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

var logLevels = map[string]logger.LogLevel{
	"silent": logger.Silent,
	"error":  logger.Error,
	"warn":   logger.Warn,
	"info":   logger.Info,
}

// Pool 连接池参数，零值表示使用驱动默认
type Pool struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

func (p Pool) apply(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	if p.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(p.MaxIdleConns)
	}
	if p.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(p.MaxOpenConns)
	}
	if p.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(p.ConnMaxLifetime)
	}
	return nil
}

// gormConfig 唯一键冲突统一翻译为 gorm.ErrDuplicatedKey
func gormConfig(service, level string) *gorm.Config {
	lvl, ok := logLevels[level]
	if !ok {
		lvl = logger.Warn
	}
	return &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "["+serviceName(service)+"] ", log.LstdFlags),
			logger.Config{
				SlowThreshold:             slowQueryThreshold,
				LogLevel:                  lvl,
				IgnoreRecordNotFoundError: true,
			},
		),
		TranslateError: true,
	}
}

func serviceName(name string) string {
	if name == "" {
		return "akademi"
	}
	return name
}
