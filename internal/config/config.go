package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Redis    RedisConfig    `yaml:"redis"`
	DingTalk DingTalkConfig `yaml:"dingtalk"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test

	// Per-IP budget for the public auth endpoints.
	AuthRateLimit float64 `yaml:"auth_rate_limit"`
	AuthRateBurst int     `yaml:"auth_rate_burst"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

type JWTConfig struct {
	Secret               string `yaml:"secret"`
	ExpireSeconds        int64  `yaml:"expire_seconds"`
	RefreshExpireSeconds int64  `yaml:"refresh_expire_seconds"`
}

// RedisConfig selects the backing store for the token blacklist and the
// one-time login state. When disabled an in-memory TTL store is used.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type DingTalkConfig struct {
	AppID       string `yaml:"app_id"`
	AppSecret   string `yaml:"app_secret"`
	RedirectURI string `yaml:"redirect_uri"`
}

type LogConfig struct {
	Level          string `yaml:"level"`
	RetentionDays  int    `yaml:"retention_days"`
	CleanupCron    string `yaml:"cleanup_cron"`
	StatisticsCron string `yaml:"statistics_cron"`

	// Pointer so a config file that omits the key keeps cleanup on.
	AutoCleanupEnabled *bool `yaml:"auto_cleanup_enabled"`
}

// CleanupEnabled reports whether scheduled retention cleanup runs.
// Unset means enabled.
func (c *LogConfig) CleanupEnabled() bool {
	return c.AutoCleanupEnabled == nil || *c.AutoCleanupEnabled
}

var GlobalConfig *Config

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, err
		}
		cfg = &fileCfg
	}

	cfg.applyDefaults()
	cfg.overrideFromEnv()
	GlobalConfig = cfg
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:          "0.0.0.0",
			Port:          "8080",
			Mode:          "debug",
			AuthRateLimit: 5,
			AuthRateBurst: 10,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "admin-console.db",
		},
		JWT: JWTConfig{
			Secret:               "admin-console-secret-change-in-production",
			ExpireSeconds:        86400,
			RefreshExpireSeconds: 604800,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
		},
		Log: LogConfig{
			Level:          "info",
			RetentionDays:  90,
			CleanupCron:    "0 2 * * *",
			StatisticsCron: "0 * * * *",
		},
	}
}

// applyDefaults fills zero values left by a partial config file.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Server.Port == "" {
		c.Server.Port = def.Server.Port
	}
	if c.Server.Host == "" {
		c.Server.Host = def.Server.Host
	}
	if c.Server.Mode == "" {
		c.Server.Mode = def.Server.Mode
	}
	if c.Server.AuthRateLimit <= 0 {
		c.Server.AuthRateLimit = def.Server.AuthRateLimit
	}
	if c.Server.AuthRateBurst <= 0 {
		c.Server.AuthRateBurst = def.Server.AuthRateBurst
	}
	if c.Database.Driver == "" {
		c.Database = def.Database
	}
	if c.JWT.Secret == "" {
		c.JWT.Secret = def.JWT.Secret
	}
	if c.JWT.ExpireSeconds <= 0 {
		c.JWT.ExpireSeconds = def.JWT.ExpireSeconds
	}
	if c.JWT.RefreshExpireSeconds <= 0 {
		c.JWT.RefreshExpireSeconds = def.JWT.RefreshExpireSeconds
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.RetentionDays <= 0 {
		c.Log.RetentionDays = def.Log.RetentionDays
	}
	if c.Log.CleanupCron == "" {
		c.Log.CleanupCron = def.Log.CleanupCron
	}
	if c.Log.StatisticsCron == "" {
		c.Log.StatisticsCron = def.Log.StatisticsCron
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = def.Redis.Addr
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
	if v := os.Getenv("JWT_EXPIRE_SECONDS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.JWT.ExpireSeconds = n
		}
	}
	if v := os.Getenv("JWT_REFRESH_EXPIRE_SECONDS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.JWT.RefreshExpireSeconds = n
		}
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Redis.Enabled = true
		c.Redis.Addr = addr
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		c.Redis.Password = pw
	}
	if appID := os.Getenv("DINGTALK_APP_ID"); appID != "" {
		c.DingTalk.AppID = appID
	}
	if secret := os.Getenv("DINGTALK_APP_SECRET"); secret != "" {
		c.DingTalk.AppSecret = secret
	}
	if uri := os.Getenv("DINGTALK_REDIRECT_URI"); uri != "" {
		c.DingTalk.RedirectURI = uri
	}
	if v := os.Getenv("LOG_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Log.RetentionDays = n
		}
	}
	if v := os.Getenv("LOG_AUTO_CLEANUP_ENABLED"); v != "" {
		enabled := v == "true" || v == "1"
		c.Log.AutoCleanupEnabled = &enabled
	}
}
