package logging

import (
	"context"
	"log/slog"
	"strings"
)

// teeHandler hands each record to every handler whose level admits it. The
// monitor mirrors its console output into the run log through one.
type teeHandler []slog.Handler

// TeeLogger returns a logger writing to base's handler and to extra. Nil
// handlers are ignored.
func TeeLogger(base *slog.Logger, extra ...slog.Handler) *slog.Logger {
	var handlers teeHandler
	if base != nil {
		handlers = append(handlers, base.Handler())
	}
	for _, h := range extra {
		if h != nil {
			handlers = append(handlers, h)
		}
	}
	switch len(handlers) {
	case 0:
		return NewNop()
	case 1:
		return slog.New(handlers[0])
	default:
		return slog.New(handlers)
	}
}

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, h := range t {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t teeHandler) each(fn func(slog.Handler) slog.Handler) teeHandler {
	next := make(teeHandler, len(t))
	for i, h := range t {
		next[i] = fn(h)
	}
	return next
}

// sessionHandler stamps records with the run's session id unless the record
// already names one, as review records do.
type sessionHandler struct {
	next      slog.Handler
	sessionID string
	// stamped is set once a WithAttrs call supplied session_id.
	stamped bool
}

// WithSessionID wraps handler so every record carries session_id. An empty
// id returns handler unchanged.
func WithSessionID(handler slog.Handler, sessionID string) slog.Handler {
	sessionID = strings.TrimSpace(sessionID)
	if handler == nil || sessionID == "" {
		return handler
	}
	return &sessionHandler{next: handler, sessionID: sessionID}
}

func (h *sessionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *sessionHandler) Handle(ctx context.Context, record slog.Record) error {
	if !h.stamped && !recordHas(record, FieldSessionID) {
		record.AddAttrs(slog.String(FieldSessionID, h.sessionID))
	}
	return h.next.Handle(ctx, record)
}

func (h *sessionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	stamped := h.stamped
	for _, attr := range attrs {
		if attr.Key == FieldSessionID {
			stamped = true
		}
	}
	return &sessionHandler{next: h.next.WithAttrs(attrs), sessionID: h.sessionID, stamped: stamped}
}

func (h *sessionHandler) WithGroup(name string) slog.Handler {
	return &sessionHandler{next: h.next.WithGroup(name), sessionID: h.sessionID, stamped: h.stamped}
}

func recordHas(record slog.Record, key string) bool {
	found := false
	record.Attrs(func(attr slog.Attr) bool {
		found = attr.Key == key
		return !found
	})
	return found
}
