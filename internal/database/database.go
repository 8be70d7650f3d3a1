package database

import (
	"fmt"
	"time"

	"akademi/config"
	"akademi/internal/model"
	"akademi/pkg/database"

	"gorm.io/gorm"
)

const serviceName = "akademi"

// Store 应用持有的存储连接，由 main 创建后注入各模块
type Store struct {
	DB *gorm.DB
	// Redis 未启用时为 nil，依赖它的功能（刷新令牌、密码重置）会降级
	Redis *database.RedisClient
}

// New 按配置打开数据库和 Redis
func New(conf *config.AppConfig) (*Store, error) {
	db, err := openDB(conf.Database)
	if err != nil {
		return nil, err
	}

	if conf.Database.AutoMigrate {
		if err := model.InitTable(db); err != nil {
			return nil, err
		}
	}

	store := &Store{DB: db}
	if !conf.Redis.Enabled {
		return store, nil
	}

	store.Redis, err = database.InitRedis(&database.RedisConfig{
		ServiceName: serviceName,
		Host:        conf.Redis.Host,
		Port:        conf.Redis.Port,
		Password:    conf.Redis.Password,
		DB:          conf.Redis.DB,
		PoolSize:    conf.Redis.PoolSize,
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

func openDB(conf config.DatabaseConfig) (*gorm.DB, error) {
	switch conf.Driver {
	case "sqlite":
		return database.InitSQLite(&database.SQLiteConfig{
			ServiceName: serviceName,
			Path:        conf.Database,
			LogLevel:    conf.LogLevel,
		})
	case "postgres", "":
		return database.InitPostgres(&database.PostgresConfig{
			ServiceName: serviceName,
			Username:    conf.Username,
			Password:    conf.Password,
			Host:        conf.Host,
			Port:        conf.Port,
			Database:    conf.Database,
			SSLMode:     conf.SSLMode,
			LogLevel:    conf.LogLevel,
			Pool: database.Pool{
				MaxIdleConns:    conf.MaxIdleConns,
				MaxOpenConns:    conf.MaxOpenConns,
				ConnMaxLifetime: time.Duration(conf.MaxLifetime) * time.Second,
			},
		})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", conf.Driver)
	}
}

// Close 关闭所有连接
func (s *Store) Close() error {
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
