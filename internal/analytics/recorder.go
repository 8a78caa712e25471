package analytics

import (
	"context"

	"go.uber.org/zap"
)

// LogRecorder is a Sink that reports events through the structured log.
type LogRecorder struct {
	logger *zap.Logger
}

// NewLogRecorder creates a new log-backed event recorder.
func NewLogRecorder(logger *zap.Logger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

func (r *LogRecorder) EntryCreated(_ context.Context, event *EntryCreatedEvent) error {
	r.logger.Info("entry created",
		zap.String("code", event.Code),
		zap.String("longUrl", event.LongURL),
		zap.String("author", event.Author),
		zap.String("strategy", event.Strategy),
		zap.Time("createdAt", event.CreatedAt),
	)

	return nil
}

func (r *LogRecorder) EntryViewed(_ context.Context, event *EntryViewedEvent) error {
	r.logger.Info("entry viewed",
		zap.String("code", event.Code),
		zap.Time("viewedAt", event.ViewedAt),
	)

	return nil
}

// Compile-time check.
var _ Sink = (*LogRecorder)(nil)
