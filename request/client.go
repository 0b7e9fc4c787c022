package request

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lgc202/apikit/httpx"
)

const (
	DefaultTimeout     = 50 * time.Second
	DefaultContentType = "application/json;charset=utf-8"

	// DefaultErrorMessage is shown when the backend gives no msg.
	DefaultErrorMessage = "系统出错"

	// RootPath is where the user lands after the session expired.
	RootPath = "/"
)

// SessionExpiredDialog is the prompt shown when the backend reports CodeSessionExpired.
var SessionExpiredDialog = Dialog{
	Title:       "提示",
	Message:     "当前页面已失效，请重新登录",
	ConfirmText: "确定",
	Level:       LevelWarning,
}

// TokenProvider returns the current session token, or "" when signed out.
// It is called once per request and must be safe for concurrent use.
type TokenProvider func() string

// Observer is told the outcome of every call.
type Observer func(method string, kind Kind)

type config struct {
	baseURL     string
	timeout     time.Duration
	contentType string

	token     TokenProvider
	notifier  Notifier
	navigator Navigator
	observer  Observer
	logger    *slog.Logger

	httpOptions []httpx.Option
	middleware  []httpx.Middleware
	before      []httpx.BeforeHook
	after       []httpx.AfterHook
}

// Option configures New.
type Option func(*config)

// WithBaseURL sets the backend root; request paths are resolved under its path.
func WithBaseURL(u string) Option { return func(c *config) { c.baseURL = u } }

// WithTimeout replaces DefaultTimeout for every call.
func WithTimeout(d time.Duration) Option { return func(c *config) { c.timeout = d } }

// WithContentType replaces DefaultContentType; "" sends no default Content-Type.
func WithContentType(ct string) Option { return func(c *config) { c.contentType = ct } }

// WithTokenProvider sets where the request hook reads the session token from.
func WithTokenProvider(p TokenProvider) Option { return func(c *config) { c.token = p } }

// WithNotifier sets who shows business errors and the re-login dialog.
func WithNotifier(n Notifier) Option { return func(c *config) { c.notifier = n } }

// WithNavigator sets who clears local data and redirects after the session expired.
func WithNavigator(n Navigator) Option { return func(c *config) { c.navigator = n } }

// WithObserver registers a callback told the Kind of every call.
func WithObserver(o Observer) Option { return func(c *config) { c.observer = o } }

// WithLogger sets the logger shared with the underlying httpx.Client. Nil means discard.
func WithLogger(l *slog.Logger) Option { return func(c *config) { c.logger = l } }

// WithHTTPOptions passes extra options to the underlying httpx.Client
// (transport, user agent, request id header, ...).
func WithHTTPOptions(opts ...httpx.Option) Option {
	return func(c *config) { c.httpOptions = append(c.httpOptions, opts...) }
}

// WithMiddleware wraps the underlying transport, outermost first.
func WithMiddleware(mws ...httpx.Middleware) Option {
	return func(c *config) { c.middleware = append(c.middleware, mws...) }
}

// WithHooks adds httpx hooks. Before hooks run after the token has been set.
func WithHooks(before []httpx.BeforeHook, after []httpx.AfterHook) Option {
	return func(c *config) {
		c.before = append(c.before, before...)
		c.after = append(c.after, after...)
	}
}

// Client talks to the admin backend. It is safe for concurrent use.
type Client struct {
	http *httpx.Client

	token     TokenProvider
	notifier  Notifier
	navigator Navigator
	observer  Observer
	logger    *slog.Logger
}

// New builds a Client with DefaultTimeout and DefaultContentType.
func New(opts ...Option) (*Client, error) {
	cfg := config{
		timeout:     DefaultTimeout,
		contentType: DefaultContentType,
	}
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.notifier == nil {
		cfg.notifier = logNotifier{logger: cfg.logger}
	}
	if cfg.navigator == nil {
		cfg.navigator = nopNavigator{}
	}

	hopts := []httpx.Option{
		httpx.WithBaseURL(cfg.baseURL),
		httpx.WithTimeout(cfg.timeout),
		httpx.WithLogger(cfg.logger),
	}
	if cfg.contentType != "" {
		hopts = append(hopts, httpx.WithDefaultHeader("Content-Type", cfg.contentType))
	}
	hc, err := httpx.New(append(hopts, cfg.httpOptions...)...)
	if err != nil {
		return nil, err
	}

	c := &Client{
		http:      hc,
		token:     cfg.token,
		notifier:  cfg.notifier,
		navigator: cfg.navigator,
		observer:  cfg.observer,
		logger:    cfg.logger,
	}
	hc.WithMiddleware(cfg.middleware...)
	hc.WithHooks(append([]httpx.BeforeHook{c.authorize}, cfg.before...), cfg.after)
	return c, nil
}

// HTTP exposes the underlying client for callers that need raw access.
// Calls made through it bypass the response hook.
func (c *Client) HTTP() *httpx.Client { return c.http }

// authorize is the request hook.
func (c *Client) authorize(req *http.Request) error {
	if c.token == nil {
		return nil
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", tok)
	}
	return nil
}

func (c *Client) observe(method string, kind Kind) {
	if c.observer != nil {
		c.observer(method, kind)
	}
}
