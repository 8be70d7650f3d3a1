// config/config.go - 配置管理
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix 环境变量前缀，层级用双下划线分隔：AKADEMI_JWT__SECRET -> jwt.secret
const EnvPrefix = "AKADEMI_"

// Load 加载配置：.env -> yaml 文件 -> 环境变量（后者覆盖前者）
func Load(configPath string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: cannot load .env: %v", err)
	}

	k := koanf.New(".")

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	conf := &AppConfig{}
	if err := k.Unmarshal("", conf); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	setDefaults(conf)
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// MustLoad 加载配置，失败则退出
func MustLoad(configPath string) *AppConfig {
	conf, err := Load(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return conf
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

// Validate 检查必填项
func (c *AppConfig) Validate() error {
	if len(c.JWT.Secret) < 16 {
		return fmt.Errorf("jwt.secret must be at least 16 characters")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	switch c.Email.Provider {
	case "smtp", "sendgrid", "console":
	default:
		return fmt.Errorf("unsupported email.provider %q", c.Email.Provider)
	}
	if c.Email.Provider == "sendgrid" && c.Email.SendGrid.APIKey == "" {
		return fmt.Errorf("email.sendgrid.api_key is required")
	}
	return nil
}

func setDefaults(c *AppConfig) {
	if c.Server.Name == "" {
		c.Server.Name = "akademi"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 7000
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "debug"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.JWT.ExpireTime == 0 {
		c.JWT.ExpireTime = 24
	}
	if c.JWT.RefreshExpireTime == 0 {
		c.JWT.RefreshExpireTime = 24 * 7
	}
	if c.JWT.ResetExpireMinutes == 0 {
		c.JWT.ResetExpireMinutes = 60
	}
	if c.Email.Provider == "" {
		c.Email.Provider = "console"
	}
	if c.Email.From == "" {
		c.Email.From = "Akademi <noreply@akademi.dev>"
	}
	if c.Email.FrontendURL == "" {
		c.Email.FrontendURL = "http://localhost:" + itoa(c.Server.Port)
	}
	if c.Rollbar.Environment == "" {
		c.Rollbar.Environment = c.Server.Mode
	}
	if len(c.CORS.AllowOrigins) == 0 {
		c.CORS.AllowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
