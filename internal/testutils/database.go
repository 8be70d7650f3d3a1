package testutils

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"akademi/internal/model"
	dbPkg "akademi/pkg/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SetupTestDB 为每个测试创建独立的内存 SQLite 数据库并完成迁移
// 用真实事务而不是外层事务回滚，并发选课测试依赖这一点
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := dbPkg.InitSQLite(&dbPkg.SQLiteConfig{
		ServiceName: "akademi-test",
		Path:        dsn,
		LogLevel:    "silent",
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := model.InitTable(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return db
}

// SetupPostgresTestDB 在 POSTGRES_TEST_DATABASE 指定的库中为每个测试建独立 schema 并迁移
// 未设置该变量或连接失败时返回 nil，调用方自行 Skip
func SetupPostgresTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database := os.Getenv("POSTGRES_TEST_DATABASE")
	if database == "" {
		return nil
	}
	port, err := strconv.Atoi(getEnvOrDefault("POSTGRES_PORT", "5432"))
	if err != nil {
		port = 5432
	}
	conf := dbPkg.PostgresConfig{
		ServiceName: "akademi-test",
		Host:        getEnvOrDefault("POSTGRES_HOST", "localhost"),
		Port:        port,
		Username:    getEnvOrDefault("POSTGRES_USER", "akademi"),
		Password:    getEnvOrDefault("POSTGRES_PASSWORD", "akademi"),
		Database:    database,
		LogLevel:    "silent",
	}

	admin, err := dbPkg.InitPostgres(&conf)
	if err != nil {
		t.Logf("postgres unavailable: %v", err)
		return nil
	}
	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := admin.Exec("CREATE SCHEMA " + schema).Error; err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	conf.Schema = schema
	db, err := dbPkg.InitPostgres(&conf)
	if err != nil {
		t.Fatalf("Failed to open schema %s: %v", schema, err)
	}
	if err := model.InitTable(db); err != nil {
		t.Fatalf("Failed to migrate test schema: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
		admin.Exec("DROP SCHEMA " + schema + " CASCADE")
		if sqlDB, err := admin.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// SetupTestRedis 连接测试用 Redis，不可用时返回 nil，调用方自行 Skip
func SetupTestRedis(t *testing.T) *dbPkg.RedisClient {
	t.Helper()

	redisHost := getEnvOrDefault("REDIS_HOST", "localhost")
	redisPort, err := strconv.Atoi(getEnvOrDefault("REDIS_PORT", "6380"))
	if err != nil || redisPort == 0 {
		redisPort = 6380
	}

	redisClient, err := dbPkg.InitRedis(&dbPkg.RedisConfig{
		ServiceName: "akademi-test",
		Host:        redisHost,
		Port:        redisPort,
		DB:          0,
		DialTimeout: 500 * time.Millisecond,
	})
	if err == nil && redisClient != nil {
		t.Cleanup(func() {
			redisClient.FlushDB(context.Background())
			redisClient.Close()
		})
		return redisClient
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
