package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Handlers and the relink worker set the room once; the pipeline adds group and
// comment IDs as they become known, so every downstream log line carries them.
type LogFields struct {
	RoomID    *int64  // Debate room ID
	GroupID   *int64  // Opinion group being mutated
	CommentID *int64  // Comment being ingested
	Stance    *string // "for" or "against"
	MessageID *string // Redis stream message ID
	Component string  // Component name (OTel semantic convention style, e.g., "opinion.clustering.counterlink")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.RoomID != nil {
		result.RoomID = next.RoomID
	}
	if next.GroupID != nil {
		result.GroupID = next.GroupID
	}
	if next.CommentID != nil {
		result.CommentID = next.CommentID
	}
	if next.Stance != nil {
		result.Stance = next.Stance
	}
	if next.MessageID != nil {
		result.MessageID = next.MessageID
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{RoomID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
// Comment texts and oracle prompts are logged through it.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
