// Package analytics records product events. Tracking never fails the caller.
package analytics

import (
	"context"
	"time"

	"ai-meetnotes/internal/pkg/logger"
	"ai-meetnotes/pkg/events"
)

type Event struct {
	Name       string
	DistinctID string
	SessionID  string
}

type Tracker interface {
	Track(ctx context.Context, e Event)
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// BusTracker publishes to the event bus. With a nil publisher it only logs.
type BusTracker struct {
	publisher Publisher
	logger    logger.ILogger
	now       func() time.Time
}

func NewBusTracker(publisher Publisher, logger logger.ILogger) *BusTracker {
	return &BusTracker{publisher: publisher, logger: logger, now: time.Now}
}

func (t *BusTracker) Track(ctx context.Context, e Event) {
	if e.DistinctID == "" {
		return
	}
	ev := events.NewAnalyticsEvent(e.Name, e.DistinctID, e.SessionID, t.now())

	if t.publisher == nil {
		t.logger.Info("ANALYTICS", e.Name, ev.Payload())
		return
	}
	if err := t.publisher.Publish(ctx, ev); err != nil {
		t.logger.Warn("ANALYTICS", "Failed to publish analytics event", map[string]interface{}{
			"event": e.Name,
			"error": err.Error(),
		})
	}
}

// LogSink is a bus handler that writes analytics events to the log.
func LogSink(log logger.ILogger) func(ctx context.Context, event events.Event) error {
	return func(_ context.Context, event events.Event) error {
		log.Info("ANALYTICS", event.EventType(), event.Payload())
		return nil
	}
}
