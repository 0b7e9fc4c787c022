package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/lgc202/apikit/config"
	"github.com/lgc202/apikit/httpx"
	"github.com/lgc202/apikit/metrics"
	"github.com/lgc202/apikit/request"
	"github.com/lgc202/apikit/session"
	"github.com/lgc202/apikit/terminal"
	"github.com/lgc202/apikit/tracing"
	"github.com/lgc202/apikit/version"
)

// app is everything a command needs to talk to the backend.
type app struct {
	settings  config.Settings
	logger    *slog.Logger
	session   *session.Manager
	navigator *terminal.Navigator
	client    *request.Client

	closers []func(context.Context) error
}

// open loads the configuration and wires the session, the client and its
// observability around it. The caller must Close the app.
func (g *globals) open(cmd *cobra.Command) (_ *app, err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	path, optional := g.configPath, false
	if path == "" {
		path, optional = config.DefaultPath(), true
	}
	cfg, err := config.LoadSettings(path, optional, g.overrides())
	if err != nil {
		return nil, err
	}
	s := cfg.Get()

	logger, err := newLogger(cmd, s.Log.Level)
	if err != nil {
		return nil, err
	}
	if cfg.Path() != "" {
		cfg.OnChange(func(_, _ config.Settings) {
			logger.Info("config file changed, changes apply to the next command", "path", cfg.Path())
		})
	}

	a := &app{settings: s, logger: logger}
	defer func() {
		if err != nil {
			_ = a.Close(ctx)
		}
	}()

	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	a.session = session.NewManager(store, session.WithLogger(logger))
	if err := a.session.Open(ctx); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	a.navigator = terminal.NewNavigator(a.session, cmd.ErrOrStderr())

	opts := []request.Option{
		request.WithBaseURL(s.BaseURL),
		request.WithTimeout(s.Timeout),
		request.WithTokenProvider(a.session.Token),
		request.WithNotifier(terminal.NewNotifier(terminal.WithOutput(cmd.ErrOrStderr()))),
		request.WithNavigator(a.navigator),
		request.WithLogger(logger),
		request.WithHTTPOptions(httpx.WithUserAgent(version.UserAgent())),
		request.WithMiddleware(tracing.Middleware(tracing.WithPropagator(tracing.W3CPropagator()))),
	}
	if s.Metrics.Addr != "" {
		col := a.serveMetrics(s.Metrics.Addr)
		opts = append(opts,
			request.WithHooks(nil, []httpx.AfterHook{col.AfterHook()}),
			request.WithObserver(col.Observer()),
		)
	}
	a.client, err = request.New(opts...)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (g *globals) overrides() map[string]any {
	o := map[string]any{}
	if g.baseURL != "" {
		o["base_url"] = g.baseURL
	}
	if g.logLevel != "" {
		o["log.level"] = g.logLevel
	}
	if g.backend != "" {
		o["session.backend"] = g.backend
	}
	return o
}

func newLogger(cmd *cobra.Command, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl})), nil
}

func (a *app) openStore() (session.Store, error) {
	ss := a.settings.Session
	switch ss.Backend {
	case config.BackendMemory:
		return session.NewMemoryStore(), nil
	case config.BackendFile:
		return session.NewFileStore(ss.File), nil
	case config.BackendKeyring:
		return session.NewKeyringStore(ss.Keyring.Service, ss.Keyring.User), nil
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     ss.Redis.Addr,
			Password: ss.Redis.Password,
			DB:       ss.Redis.DB,
		})
		a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
		return session.NewRedisStore(rdb, ss.Redis.Key, ss.Redis.TTL), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", ss.Backend)
	}
}

// serveMetrics exposes /metrics on addr for the lifetime of the command.
func (a *app) serveMetrics(addr string) *metrics.Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	col := metrics.New(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn("metrics server stopped", "addr", addr, "error", err)
		}
	}()
	a.closers = append(a.closers, srv.Shutdown)
	return col
}

// Close releases the Redis client and the metrics server.
func (a *app) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}

// run opens the app, calls fn and closes the app again.
func (g *globals) run(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := g.open(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	defer func() {
		if cerr := a.Close(ctx); cerr != nil {
			a.logger.Warn("shutdown", "error", cerr)
		}
	}()
	return fn(ctx, a)
}
