// Package ginpresenter selects the presenter version and context per request
// and renders decorated JSON from gin handlers.
package ginpresenter

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/goliatone/go-presenter/pkg/decorator"
	"github.com/goliatone/go-presenter/pkg/helpers"
	"github.com/goliatone/go-presenter/pkg/model"
)

const (
	// DefaultHeader carries the requested presenter version.
	DefaultHeader = "X-Presenter-Version"
	// RequestIDHeader is read for the request id and echoed back.
	RequestIDHeader = "X-Request-ID"

	stateKey = "presenter.state"
)

// Option configures Middleware.
type Option func(*config)

type config struct {
	registry       *decorator.Registry
	header         string
	param          string
	defaultVersion string
	helpers        *helpers.Helpers
	contextFunc    func(*gin.Context) decorator.Context
	logger         *slog.Logger
}

// WithRegistry decorates through r instead of decorator.Default().
func WithRegistry(r *decorator.Registry) Option {
	return func(c *config) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithHeader changes the version header.
func WithHeader(name string) Option {
	return func(c *config) {
		c.header = strings.TrimSpace(name)
	}
}

// WithParam reads the version from a route parameter when the header is
// absent.
func WithParam(name string) Option {
	return func(c *config) {
		c.param = strings.TrimSpace(name)
	}
}

// WithDefaultVersion is used when the request names no version.
func WithDefaultVersion(version string) Option {
	return func(c *config) {
		c.defaultVersion = strings.TrimSpace(version)
	}
}

// WithHelpers installs a per-request helper context.
func WithHelpers(h *helpers.Helpers) Option {
	return func(c *config) {
		c.helpers = h
	}
}

// WithContextFunc adds values to the presenter context of every request.
// They are merged over the request id, method and path.
func WithContextFunc(fn func(*gin.Context) decorator.Context) Option {
	return func(c *config) {
		c.contextFunc = fn
	}
}

// WithLogger logs version selection at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type state struct {
	registry *decorator.Registry
	options  decorator.Options
}

// Middleware stores the presenter options for the request.
func Middleware(opts ...Option) gin.HandlerFunc {
	cfg := config{
		registry:       decorator.Default(),
		header:         DefaultHeader,
		defaultVersion: decorator.DefaultVersion,
		logger:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return func(c *gin.Context) {
		version := ""
		if cfg.header != "" {
			version = strings.TrimSpace(c.GetHeader(cfg.header))
		}
		if version == "" && cfg.param != "" {
			version = strings.TrimSpace(c.Param(cfg.param))
		}
		if version == "" {
			version = cfg.defaultVersion
		}

		requestID := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		ctx := decorator.Context{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       path,
		}
		if cfg.contextFunc != nil {
			for key, value := range cfg.contextFunc(c) {
				ctx[key] = value
			}
		}

		cfg.logger.Debug("presenter version selected", "version", version, "path", path, "request_id", requestID)
		c.Set(stateKey, &state{
			registry: cfg.registry,
			options: decorator.Options{
				Version: version,
				Context: ctx,
				Helpers: cfg.helpers,
			},
		})
		c.Next()
	}
}

func stateOf(c *gin.Context) *state {
	if value, ok := c.Get(stateKey); ok {
		if st, ok := value.(*state); ok {
			return st
		}
	}
	return &state{
		registry: decorator.Default(),
		options:  decorator.Options{Version: decorator.DefaultVersion, Context: decorator.Context{}},
	}
}

// Version returns the presenter version selected for the request.
func Version(c *gin.Context) string {
	return stateOf(c).options.Version
}

// Context returns a copy of the request's presenter context.
func Context(c *gin.Context) decorator.Context {
	return stateOf(c).options.Context.Clone()
}

// Options returns the decoration options of the request, for handlers that
// decorate themselves.
func Options(c *gin.Context) []decorator.Option {
	return []decorator.Option{decorator.WithOptions(stateOf(c).options)}
}

// Decorate decorates m with the request's registry and options.
func Decorate(c *gin.Context, m any) (*decorator.Decorator, error) {
	st := stateOf(c)
	return st.registry.Decorate(m, decorator.WithOptions(st.options))
}

// Render decorates m (a model or a collection of models), composes it with
// opts and writes the JSON with status. Failures abort the request with a
// JSON error body and are returned.
func Render(c *gin.Context, status int, m any, opts decorator.JSONOptions) error {
	st := stateOf(c)
	decorateOpts := decorator.WithOptions(st.options)

	var (
		data []byte
		err  error
	)
	if isCollection(m) {
		var collection *decorator.Collection
		if collection, err = st.registry.DecorateCollection(m, decorateOpts); err == nil {
			data, err = collection.ToJSON(opts)
		}
	} else {
		var dec *decorator.Decorator
		if dec, err = st.registry.Decorate(m, decorateOpts); err == nil {
			data, err = dec.ToJSON(opts)
		}
	}
	if err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
		return err
	}

	c.Data(status, "application/json; charset=utf-8", data)
	return nil
}

func statusFor(err error) int {
	var resolution *decorator.ResolutionError
	if errors.As(err, &resolution) {
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func isCollection(m any) bool {
	if _, ok := m.(model.Sequence); ok {
		return true
	}
	t := reflect.TypeOf(m)
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return t.Elem().Kind() != reflect.Uint8
	default:
		return false
	}
}
