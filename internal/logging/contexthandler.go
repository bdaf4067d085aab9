package logging

import (
	"context"
	"log/slog"

	slogmulti "github.com/samber/slog-multi"
)

// ContextProvider returns attributes evaluated at log time, such as uptime.
type ContextProvider func() []slog.Attr

type sessionKey struct{}

// Session names the route run a record belongs to.
type Session struct {
	Route string
	ID    string
}

// WithSession attaches s to ctx. Records logged with the returned context
// carry the route and session ID.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session attached to ctx.
func SessionFrom(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

func (s Session) attrs() []slog.Attr {
	var out []slog.Attr
	if s.Route != "" {
		out = append(out, slog.String("route", s.Route))
	}
	if s.ID != "" {
		out = append(out, slog.String("session", s.ID))
	}
	return out
}

// contextMiddleware adds the record's session and the provider's attributes
// before the record reaches any sink.
func contextMiddleware(p ContextProvider) slogmulti.Middleware {
	return slogmulti.NewHandleInlineMiddleware(func(ctx context.Context, r slog.Record, next func(context.Context, slog.Record) error) error {
		r = r.Clone()
		if s, ok := SessionFrom(ctx); ok {
			r.AddAttrs(s.attrs()...)
		}
		if p != nil {
			r.AddAttrs(p()...)
		}
		return next(ctx, r)
	})
}

// minLevel drops records below l for handlers that take no level option.
func minLevel(l slog.Leveler) slogmulti.Middleware {
	return slogmulti.NewEnabledInlineMiddleware(func(ctx context.Context, level slog.Level, next func(context.Context, slog.Level) bool) bool {
		return level >= l.Level() && next(ctx, level)
	})
}
