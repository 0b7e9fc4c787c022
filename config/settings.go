package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultBaseURL 是构建时注入的后端地址：
//
//	go build -ldflags "-X github.com/lgc202/apikit/config.DefaultBaseURL=https://admin.example.com/prod-api"
//
// 运行时可被配置文件或 APIKIT_BASE_URL 覆盖。
var DefaultBaseURL = "http://localhost:8989"

// EnvPrefix 环境变量前缀
const EnvPrefix = "APIKIT"

// 会话存储后端
const (
	BackendMemory  = "memory"
	BackendFile    = "file"
	BackendKeyring = "keyring"
	BackendRedis   = "redis"
)

// Settings 是 apikit 的完整配置
type Settings struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`

	Session SessionSettings `mapstructure:"session"`
	Log     LogSettings     `mapstructure:"log"`
	Metrics MetricsSettings `mapstructure:"metrics"`
}

type SessionSettings struct {
	// Backend 取值 memory | file | keyring | redis
	Backend string          `mapstructure:"backend"`
	File    string          `mapstructure:"file"`
	Keyring KeyringSettings `mapstructure:"keyring"`
	Redis   RedisSettings   `mapstructure:"redis"`
}

type KeyringSettings struct {
	Service string `mapstructure:"service"`
	User    string `mapstructure:"user"`
}

type RedisSettings struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Key      string        `mapstructure:"key"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type LogSettings struct {
	Level string `mapstructure:"level"`
}

type MetricsSettings struct {
	// Addr 非空时在该地址暴露 /metrics
	Addr string `mapstructure:"addr"`
}

// Defaults 返回所有 key 的默认值
func Defaults() map[string]any {
	return map[string]any{
		"base_url":                DefaultBaseURL,
		"timeout":                 "50s",
		"session.backend":         BackendFile,
		"session.file":            defaultSessionFile(),
		"session.keyring.service": "apikit",
		"session.keyring.user":    "session-token",
		"session.redis.addr":      "127.0.0.1:6379",
		"session.redis.password":  "",
		"session.redis.db":        0,
		"session.redis.key":       "apikit:session:token",
		"session.redis.ttl":       "0s",
		"log.level":               "warn",
		"metrics.addr":            "",
	}
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", ".apikit-session.json")
	}
	return filepath.Join(dir, "apikit", "session.json")
}

// DefaultPath 返回 <用户配置目录>/apikit/config.yaml
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "apikit", "config.yaml")
}

// LoadSettings 加载配置：默认值 < 配置文件 < 环境变量 < overrides。
// path 指向的文件不存在时，若 optional 为 true 则忽略。
func LoadSettings(path string, optional bool, overrides map[string]any) (*Config[Settings], error) {
	opts := []Option[Settings]{
		WithDefaults[Settings](Defaults()),
		WithEnv[Settings](EnvPrefix),
	}
	for k, v := range overrides {
		opts = append(opts, WithOverride[Settings](k, v))
	}

	cfg, err := Load(path, opts...)
	if err != nil && optional && IsNotFound(err) {
		cfg, err = Load("", opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := cfg.Get().Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查配置是否可用
func (s Settings) Validate() error {
	var errs []error
	if s.BaseURL == "" {
		errs = append(errs, errors.New("base_url is required"))
	}
	if s.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", s.Timeout))
	}
	switch s.Session.Backend {
	case BackendMemory, BackendKeyring:
	case BackendFile:
		if s.Session.File == "" {
			errs = append(errs, errors.New("session.file is required for the file backend"))
		}
	case BackendRedis:
		if s.Session.Redis.Addr == "" {
			errs = append(errs, errors.New("session.redis.addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown session.backend %q", s.Session.Backend))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
