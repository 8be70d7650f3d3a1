package database

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"strconv"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PostgresConfig PostgreSQL 配置
type PostgresConfig struct {
	ServiceName string
	Username    string
	Password    string
	Host        string
	Port        int
	Database    string
	SSLMode     bool
	Schema      string // 非空时设置 search_path
	LogLevel    string // silent, error, warn, info
	Pool        Pool
}

// InitPostgres 连接 PostgreSQL
func InitPostgres(config *PostgresConfig) (*gorm.DB, error) {
	if config == nil {
		return nil, fmt.Errorf("postgres config is nil")
	}
	setDefaults(config)

	db, err := gorm.Open(postgres.Open(buildDSN(config)), gormConfig(config.ServiceName, config.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("connect postgres %s: %w", net.JoinHostPort(config.Host, strconv.Itoa(config.Port)), err)
	}
	if err := config.Pool.apply(db); err != nil {
		return nil, err
	}

	log.Printf("[%s] postgres connected to %s", serviceName(config.ServiceName), config.Database)
	return db, nil
}

func setDefaults(c *PostgresConfig) {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if c.Pool.MaxIdleConns == 0 {
		c.Pool.MaxIdleConns = 10
	}
	if c.Pool.MaxOpenConns == 0 {
		c.Pool.MaxOpenConns = 50
	}
	if c.Pool.ConnMaxLifetime == 0 {
		c.Pool.ConnMaxLifetime = time.Hour
	}
}

// buildDSN URL 形式的连接串，用户名和密码中的特殊字符会被转义
func buildDSN(c *PostgresConfig) string {
	sslmode := "disable"
	if c.SSLMode {
		sslmode = "require"
	}
	params := url.Values{"sslmode": {sslmode}}
	if c.Schema != "" {
		params.Set("search_path", c.Schema)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: params.Encode(),
	}
	return u.String()
}
