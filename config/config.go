// Package config 提供基于 viper 的泛型配置加载，支持默认值、环境变量覆盖与文件热更新。
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// reloadDelay 合并编辑器保存时产生的连续事件
const reloadDelay = 100 * time.Millisecond

// Config 配置管理器
type Config[T any] struct {
	v     *viper.Viper
	path  string
	value atomic.Pointer[T]

	// mu 串行化重新加载，并保护 watchers 与 timer
	mu       sync.Mutex
	watchers []func(old, new T)
	timer    *time.Timer
}

// Option 配置选项
type Option[T any] func(*Config[T])

// WithDefaults 设置默认值（同时让 AutomaticEnv 能识别这些 key）
func WithDefaults[T any](defaults map[string]any) Option[T] {
	return func(c *Config[T]) {
		for k, v := range defaults {
			c.v.SetDefault(k, v)
		}
	}
}

// WithEnv 绑定环境变量，例如 prefix=APIKIT 时 base_url 对应 APIKIT_BASE_URL
func WithEnv[T any](prefix string) Option[T] {
	return func(c *Config[T]) {
		c.v.SetEnvPrefix(prefix)
		c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		c.v.AutomaticEnv()
	}
}

// WithOverride 以最高优先级设置某个 key（命令行参数等）
func WithOverride[T any](key string, value any) Option[T] {
	return func(c *Config[T]) { c.v.Set(key, value) }
}

// Load 加载配置。path 为空时只使用默认值与环境变量；
// path 非空时读取文件并监控变更。
func Load[T any](path string, opts ...Option[T]) (*Config[T], error) {
	c := &Config[T]{v: viper.New(), path: path}
	for _, opt := range opts {
		opt(c)
	}
	if path != "" {
		c.v.SetConfigFile(path)
	}

	val, err := c.read()
	if err != nil {
		return nil, err
	}
	c.value.Store(&val)

	if path != "" {
		c.v.OnConfigChange(func(fsnotify.Event) { c.scheduleReload() })
		c.v.WatchConfig()
	}
	return c, nil
}

// IsNotFound 判断 Load 的错误是否为配置文件不存在
func IsNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
}

// Get 获取当前配置（并发安全，返回深拷贝）
func (c *Config[T]) Get() T {
	return deepCopy(*c.value.Load())
}

// Path 返回配置文件路径（可能为空）
func (c *Config[T]) Path() string { return c.path }

// OnChange 注册配置变更回调，回调中的 panic 会被忽略
func (c *Config[T]) OnChange(callback func(old, new T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watchers = append(c.watchers, callback)
}

// Changed 比较两个值是否不同
func Changed[T any](old, new T) bool {
	return !reflect.DeepEqual(old, new)
}

// deepCopy 通过 JSON 序列化实现深拷贝
func deepCopy[T any](src T) T {
	var dst T
	data, _ := json.Marshal(src)
	_ = json.Unmarshal(data, &dst)
	return dst
}

func (c *Config[T]) read() (T, error) {
	var val T
	if c.path != "" {
		if err := c.v.ReadInConfig(); err != nil {
			return val, err
		}
	}
	if err := c.v.Unmarshal(&val); err != nil {
		return val, fmt.Errorf("decode %s: %w", c.path, err)
	}
	return val, nil
}

func (c *Config[T]) scheduleReload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(reloadDelay, func() { _ = c.Reload() })
}

// Reload 重新读取配置文件，内容有变化时依次触发回调。
// 文件监控会自动调用它，也可以手动调用；读取失败时保留旧配置。
func (c *Config[T]) Reload() error {
	c.mu.Lock()
	old := *c.value.Load()
	val, err := c.read()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.value.Store(&val)
	watchers := append(([]func(old, new T))(nil), c.watchers...)
	c.mu.Unlock()

	if !Changed(old, val) {
		return nil
	}
	for _, cb := range watchers {
		func() {
			defer func() { _ = recover() }()
			cb(deepCopy(old), deepCopy(val))
		}()
	}
	return nil
}
