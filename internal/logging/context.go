package logging

import (
	"context"
	"log/slog"

	"nimbus/internal/services"
)

// Record keys shared by every nimbus component.
const (
	FieldComponent = "component"
	// FieldEventPath is the downloaded file a record is about.
	FieldEventPath = "event_path"
	// FieldStage is one of watch, classify, journal or review.
	FieldStage     = "stage"
	FieldSessionID = "session_id"
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to do next.
	FieldErrorHint = "error_hint"
	FieldImpact    = "impact"
	FieldCourse    = "course"
	// FieldReason names the classifier behind a command.
	FieldReason = "reason"
)

// WithContext adds the event path, stage and session id carried by ctx to
// logger. A nil logger becomes a no-op logger.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	var attrs []Attr
	if path, ok := services.EventPathFromContext(ctx); ok {
		attrs = append(attrs, String(FieldEventPath, path))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		attrs = append(attrs, String(FieldStage, stage))
	}
	if id, ok := services.SessionIDFromContext(ctx); ok {
		attrs = append(attrs, String(FieldSessionID, id))
	}
	if len(attrs) == 0 {
		return logger
	}
	return logger.With(Args(attrs...)...)
}
