package analytics

import (
	"context"
	"errors"
	"testing"

	"ai-meetnotes/internal/pkg/logger"
	"ai-meetnotes/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	got []events.Event
	err error
}

func (c *capturePublisher) Publish(_ context.Context, e events.Event) error {
	c.got = append(c.got, e)
	return c.err
}

func TestTrackPublishes(t *testing.T) {
	p := &capturePublisher{}
	NewBusTracker(p, logger.NewNopLogger()).Track(context.Background(), Event{
		Name: "enhance_note_clicked", DistinctID: "u1", SessionID: "s1",
	})

	require.Len(t, p.got, 1)
	assert.Equal(t, "analytics.enhance_note_clicked", p.got[0].EventType())
	assert.Equal(t, "u1", p.got[0].Payload()["distinct_id"])
	assert.Equal(t, "s1", p.got[0].Payload()["session_id"])
}

func TestTrackOmitsEmptySession(t *testing.T) {
	p := &capturePublisher{}
	NewBusTracker(p, logger.NewNopLogger()).Track(context.Background(), Event{Name: "chat_message_sent", DistinctID: "u1"})
	require.Len(t, p.got, 1)
	_, ok := p.got[0].Payload()["session_id"]
	assert.False(t, ok)
}

func TestTrackSwallowsErrorsAndAnonymous(t *testing.T) {
	p := &capturePublisher{err: errors.New("nats down")}
	tr := NewBusTracker(p, logger.NewNopLogger())

	tr.Track(context.Background(), Event{Name: "x"})
	assert.Empty(t, p.got)

	assert.NotPanics(t, func() { tr.Track(context.Background(), Event{Name: "x", DistinctID: "u1"}) })
	assert.Len(t, p.got, 1)

	assert.NotPanics(t, func() {
		NewBusTracker(nil, logger.NewNopLogger()).Track(context.Background(), Event{Name: "x", DistinctID: "u1"})
	})
}
