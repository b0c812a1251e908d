package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes flow events to an slog.Logger.
// Useful for development when you want to see flow events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("flow_id", event.FlowID),
		slog.String("source", event.Source.String()),
		slog.String("category", event.Category.String()),
	}

	// Add optional identifiers
	if event.SharerID != "" {
		attrs = append(attrs, slog.String("sharer_id", event.SharerID))
	}
	if event.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", event.SessionID))
	}

	// Add type-specific attributes
	switch {
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Tag != nil:
		attrs = append(attrs, slog.Int("payload_size", event.Tag.Size))
		if event.Tag.MemberID != "" {
			attrs = append(attrs, slog.String("member_id", event.Tag.MemberID))
		}
		if event.Tag.Write {
			attrs = append(attrs, slog.Bool("write", true))
		}
	case event.Collaborator != nil:
		attrs = append(attrs,
			slog.String("op", event.Collaborator.Op.String()),
			slog.String("status", event.Collaborator.Status),
		)
		if event.Collaborator.Latency != nil {
			attrs = append(attrs, slog.Duration("latency", *event.Collaborator.Latency))
		}
	case event.Feedback != nil:
		attrs = append(attrs, slog.String("feedback", event.Feedback.Name))
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_source", event.Error.Source.String()),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "tapmeet", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
