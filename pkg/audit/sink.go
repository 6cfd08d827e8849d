package audit

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Sink receives audit events. Implementations must not block the request
// path for long; emission is synchronous.
type Sink interface {
	Emit(ctx context.Context, event *Event) error
}

// LogrusSink writes audit events as structured log lines. Denials log at
// warn, errors at error, everything else at info.
type LogrusSink struct {
	entry *logrus.Entry
}

// NewLogrusSink creates a sink over the given logger.
func NewLogrusSink(logger *logrus.Logger) *LogrusSink {
	return &LogrusSink{entry: logger.WithField("component", "audit")}
}

// Emit implements Sink.
func (s *LogrusSink) Emit(_ context.Context, event *Event) error {
	entry := s.entry.WithFields(logrus.Fields{
		"event_id":      event.ID,
		"workspace":     event.Workspace,
		"namespace":     event.Namespace,
		"actor":         event.Actor,
		"role":          event.Role,
		"resource_kind": event.ResourceKind,
		"resource_name": event.ResourceName,
		"action":        event.Action,
		"outcome":       event.Outcome,
	})
	if event.StatusCode != 0 {
		entry = entry.WithField("status_code", event.StatusCode)
	}
	if event.Detail != "" {
		entry = entry.WithField("detail", event.Detail)
	}
	if event.Error != "" {
		entry = entry.WithField("error", event.Error)
	}

	switch event.Outcome {
	case OutcomeDenied:
		entry.Warn("audit event")
	case OutcomeError:
		entry.Error("audit event")
	default:
		entry.Info("audit event")
	}
	return nil
}

// NopSink discards every event.
type NopSink struct{}

// Emit implements Sink.
func (NopSink) Emit(context.Context, *Event) error { return nil }
