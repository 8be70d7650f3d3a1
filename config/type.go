package config

import (
	"time"

	"akademi/pkg/email"
)

// AppConfig 应用配置结构
type AppConfig struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Redis      RedisConfig      `koanf:"redis"`
	Log        LogConfig        `koanf:"log"`
	JWT        JWTConfig        `koanf:"jwt"`
	Email      EmailConfig      `koanf:"email"`
	Rollbar    RollbarConfig    `koanf:"rollbar"`
	Superadmin SuperadminConfig `koanf:"superadmin"`
	CORS       CORSConfig       `koanf:"cors"`
}

type ServerConfig struct {
	Name         string        `koanf:"name"`
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	Mode         string        `koanf:"mode"` // debug, release, test
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// Addr 监听地址
func (s ServerConfig) Addr() string {
	return s.Host + ":" + itoa(s.Port)
}

type DatabaseConfig struct {
	Driver       string `koanf:"driver"` // postgres, sqlite
	Host         string `koanf:"host"`
	Port         int    `koanf:"port"`
	Username     string `koanf:"username"`
	Password     string `koanf:"password"`
	Database     string `koanf:"database"` // sqlite 时为文件路径
	SSLMode      bool   `koanf:"sslmode"`
	LogLevel     string `koanf:"log_level"` // 数据库日志级别
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	MaxLifetime  int    `koanf:"max_lifetime"` // 秒
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

type RedisConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	PoolSize int    `koanf:"pool_size"`
}

type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Output string `koanf:"output"` // stdout, file
	Path   string `koanf:"path"`   // 日志文件路径
}

type JWTConfig struct {
	Secret             string `koanf:"secret"`
	ExpireTime         int    `koanf:"expire_time"`          // 小时
	RefreshExpireTime  int    `koanf:"refresh_expire_time"`  // 小时
	ResetExpireMinutes int    `koanf:"reset_expire_minutes"` // 密码重置链接有效期
}

type EmailConfig struct {
	Provider    string               `koanf:"provider"` // smtp, sendgrid, console
	From        string               `koanf:"from"`
	FrontendURL string               `koanf:"frontend_url"`
	Smtp        email.Config         `koanf:"smtp"`
	SendGrid    email.SendGridConfig `koanf:"sendgrid"`
}

type RollbarConfig struct {
	Token       string `koanf:"token"`
	Environment string `koanf:"environment"`
}

type SuperadminConfig struct {
	Secret string `koanf:"secret"` // X-Superadmin-Key，为空时禁用接口
}

type CORSConfig struct {
	AllowOrigins []string `koanf:"allow_origins"`
}
