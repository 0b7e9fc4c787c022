package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadSettings_Defaults(t *testing.T) {
	cfg, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"), true, nil)
	require.NoError(t, err)

	s := cfg.Get()
	assert.Equal(t, DefaultBaseURL, s.BaseURL)
	assert.Equal(t, 50*time.Second, s.Timeout)
	assert.Equal(t, BackendFile, s.Session.Backend)
	assert.NotEmpty(t, s.Session.File)
	assert.Equal(t, "warn", s.Log.Level)
}

func TestLoadSettings_MissingFileRequired(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"), false, nil)
	require.Error(t, err)
}

func TestLoadSettings_FileEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
base_url: https://admin.example.com/prod-api
timeout: 10s
session:
  backend: redis
  redis:
    addr: redis:6379
    ttl: 2h
log:
  level: debug
`)
	t.Setenv("APIKIT_LOG_LEVEL", "info")

	cfg, err := LoadSettings(path, false, map[string]any{"session.redis.key": "cli:token"})
	require.NoError(t, err)

	s := cfg.Get()
	assert.Equal(t, "https://admin.example.com/prod-api", s.BaseURL)
	assert.Equal(t, 10*time.Second, s.Timeout)
	assert.Equal(t, BackendRedis, s.Session.Backend)
	assert.Equal(t, "redis:6379", s.Session.Redis.Addr)
	assert.Equal(t, 2*time.Hour, s.Session.Redis.TTL)
	assert.Equal(t, "cli:token", s.Session.Redis.Key)
	assert.Equal(t, "info", s.Log.Level)
}

func TestLoadSettings_EnvBaseURL(t *testing.T) {
	t.Setenv("APIKIT_BASE_URL", "https://staging.example.com")
	cfg, err := LoadSettings("", true, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com", cfg.Get().BaseURL)
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{name: "ok", mutate: func(*Settings) {}},
		{name: "no base url", mutate: func(s *Settings) { s.BaseURL = "" }, wantErr: true},
		{name: "zero timeout", mutate: func(s *Settings) { s.Timeout = 0 }, wantErr: true},
		{name: "unknown backend", mutate: func(s *Settings) { s.Session.Backend = "sqlite" }, wantErr: true},
		{name: "redis without addr", mutate: func(s *Settings) {
			s.Session.Backend = BackendRedis
			s.Session.Redis.Addr = ""
		}, wantErr: true},
		{name: "memory", mutate: func(s *Settings) { s.Session.Backend = BackendMemory }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Settings{
				BaseURL: "http://localhost",
				Timeout: time.Second,
				Session: SessionSettings{Backend: BackendFile, File: "/tmp/s.json", Redis: RedisSettings{Addr: "x:1"}},
			}
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ReloadNotifiesOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "base_url: http://a.example.com\n")

	cfg, err := LoadSettings(path, false, nil)
	require.NoError(t, err)

	var got []string
	cfg.OnChange(func(old, new Settings) {
		if Changed(old.BaseURL, new.BaseURL) {
			got = append(got, old.BaseURL+" -> "+new.BaseURL)
		}
	})

	// Unchanged content does not fire callbacks.
	require.NoError(t, cfg.Reload())
	assert.Empty(t, got)

	writeFile(t, path, "base_url: http://b.example.com\n")
	require.NoError(t, cfg.Reload())
	require.NotEmpty(t, got)
	assert.Equal(t, "http://a.example.com -> http://b.example.com", got[len(got)-1])
	assert.Equal(t, "http://b.example.com", cfg.Get().BaseURL)
}
