package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// DefaultServiceName is the instrumentation scope of OTel log records.
const DefaultServiceName = "buoyplanner"

var (
	osStdout = os.Stdout
	osPipe   = os.Pipe
)

// SlogManager manages slog-based logging with optional OTel integration.
type SlogManager struct {
	logger *slog.Logger

	// OTel provider for flushing
	logProvider *sdklog.LoggerProvider
}

// Option adds an output or decoration to Setup.
type Option func(*setupConfig)

type setupConfig struct {
	serviceName  string
	graylog      io.Writer
	graylogLevel string
	otelLevel    string
	context      ContextProvider
}

// WithGraylog also sends JSON records to w, usually a GELF writer. An empty
// level uses the console level.
func WithGraylog(w io.Writer, level string) Option {
	return func(c *setupConfig) {
		c.graylog = w
		c.graylogLevel = level
	}
}

// WithOTelLevel sets the minimum level exported to the OTel provider. By
// default it matches the console level.
func WithOTelLevel(level string) Option {
	return func(c *setupConfig) {
		c.otelLevel = level
	}
}

// WithContext appends the attributes returned by p to every record.
func WithContext(p ContextProvider) Option {
	return func(c *setupConfig) {
		c.context = p
	}
}

// WithServiceName overrides the OTel instrumentation scope.
func WithServiceName(name string) Option {
	return func(c *setupConfig) {
		if name != "" {
			c.serviceName = name
		}
	}
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// sinkLevel returns the level for a secondary sink, falling back to the
// console level when none is set.
func sinkLevel(level string, fallback slog.Level) slog.Level {
	if strings.TrimSpace(level) == "" {
		return fallback
	}
	return parseLevel(level)
}

// Setup initializes the logging system. Records go to file when one is given
// and to stdout otherwise. If provider is nil, OTel logging is disabled.
func (m *SlogManager) Setup(file io.Writer, level string, provider *sdklog.LoggerProvider, opts ...Option) {
	cfg := setupConfig{serviceName: DefaultServiceName}
	for _, o := range opts {
		o(&cfg)
	}

	lvl := parseLevel(level)
	m.logProvider = provider

	replaceTime := func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			if t, ok := a.Value.Any().(time.Time); ok {
				a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
			}
		}
		return a
	}
	handlerOpts := &slog.HandlerOptions{Level: lvl, ReplaceAttr: replaceTime}

	var handlers []slog.Handler
	if file != nil {
		handlers = append(handlers, slog.NewTextHandler(file, handlerOpts))
	} else {
		handlers = append(handlers, slog.NewTextHandler(osStdout, handlerOpts))
	}

	if cfg.graylog != nil {
		handlers = append(handlers, slog.NewJSONHandler(cfg.graylog, &slog.HandlerOptions{
			Level:       sinkLevel(cfg.graylogLevel, lvl),
			ReplaceAttr: replaceTime,
		}))
	}

	if provider != nil {
		otelHandler := otelslog.NewHandler(cfg.serviceName, otelslog.WithLoggerProvider(provider))
		handlers = append(handlers, slogmulti.Pipe(minLevel(sinkLevel(cfg.otelLevel, lvl))).Handler(otelHandler))
	}

	h := slogmulti.Pipe(contextMiddleware(cfg.context)).Handler(slogmulti.Fanout(handlers...))

	m.logger = slog.New(h)
	m.logger.Info("Logging initialized", "level", level)
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Flush forces a flush of OTel logs if available.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider != nil {
		return m.logProvider.ForceFlush(ctx)
	}
	return nil
}
