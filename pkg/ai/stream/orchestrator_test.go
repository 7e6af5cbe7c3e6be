package stream

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-meetnotes/internal/pkg/logger"
	"ai-meetnotes/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// scriptedStream replays chunks, then returns err (io.EOF when nil).
type scriptedStream struct {
	chunks []string
	err    error
	// gate, when set, is read before every chunk after the first
	gate   chan struct{}
	pos    int
	mu     sync.Mutex
	closed bool
}

func (s *scriptedStream) Recv() (string, error) {
	if s.gate != nil && s.pos > 0 {
		<-s.gate
	}
	if s.pos < len(s.chunks) {
		c := s.chunks[s.pos]
		s.pos++
		return c, nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

func (s *scriptedStream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

type fakeProvider struct {
	stream   *scriptedStream
	startErr error
	turns    []llm.Message
}

func (f *fakeProvider) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeProvider) Generate(context.Context, string, ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeProvider) Stream(_ context.Context, turns []llm.Message, _ ...llm.Option) (llm.TextStream, error) {
	f.turns = turns
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.stream, nil
}

func TestRunAccumulatesInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	tests := []struct {
		name   string
		chunks []string
	}{
		{name: "single", chunks: []string{"Hello"}},
		{name: "split", chunks: []string{"Hel", "lo", " ", "world\n"}},
		{name: "empty", chunks: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &scriptedStream{chunks: tt.chunks}
			o := NewOrchestrator(&fakeProvider{stream: s}, 0, logger.NewNopLogger())

			var seen []string
			res, err := o.Run(context.Background(), Request{
				OnChunk: func(acc string) { seen = append(seen, acc) },
			})
			require.NoError(t, err)

			want := strings.Join(tt.chunks, "")
			assert.Equal(t, want, res.Text)
			assert.Equal(t, want, res.Final)
			assert.Equal(t, len(tt.chunks), res.Chunks)
			require.Len(t, seen, len(tt.chunks))
			if len(seen) > 0 {
				assert.Equal(t, want, seen[len(seen)-1])
			}
			assert.True(t, s.closed)
		})
	}
}

func TestRunAppliesTransform(t *testing.T) {
	o := NewOrchestrator(&fakeProvider{stream: &scriptedStream{chunks: []string{"# a"}}}, 0, logger.NewNopLogger())
	res, err := o.Run(context.Background(), Request{
		Transform: func(s string) (string, error) { return "<h1>" + strings.TrimPrefix(s, "# ") + "</h1>", nil },
	})
	require.NoError(t, err)
	assert.Equal(t, "# a", res.Text)
	assert.Equal(t, "<h1>a</h1>", res.Final)
}

func TestRunSurfacesStreamError(t *testing.T) {
	boom := errors.New("connection reset")
	s := &scriptedStream{chunks: []string{"Hel", "lo"}, err: boom}
	o := NewOrchestrator(&fakeProvider{stream: s}, 0, logger.NewNopLogger())

	res, err := o.Run(context.Background(), Request{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "Hello", res.Text)
	assert.Empty(t, res.Final)
}

func TestRunStartError(t *testing.T) {
	o := NewOrchestrator(&fakeProvider{startErr: errors.New("401")}, 0, logger.NewNopLogger())
	_, err := o.Run(context.Background(), Request{})
	assert.ErrorContains(t, err, "401")
}

func TestRunCancelledBetweenChunks(t *testing.T) {
	gate := make(chan struct{}, 1)
	s := &scriptedStream{chunks: []string{"Hel", "lo"}, gate: gate}
	o := NewOrchestrator(&fakeProvider{stream: s}, 0, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	var last string
	res, err := o.Run(ctx, Request{
		OnChunk: func(acc string) {
			last = acc
			cancel()
			gate <- struct{}{}
		},
	})

	assert.ErrorIs(t, err, ErrStreamCancelled)
	assert.Equal(t, "Hel", res.Text)
	assert.Equal(t, "Hel", last)
	assert.True(t, s.closed)
}

func TestRunTimeout(t *testing.T) {
	gate := make(chan struct{})
	s := &scriptedStream{chunks: []string{"a", "b"}, gate: gate}
	o := NewOrchestrator(&fakeProvider{stream: s}, 20*time.Millisecond, logger.NewNopLogger())

	go func() {
		time.Sleep(60 * time.Millisecond)
		close(gate)
	}()

	_, err := o.Run(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrStreamTimeout)
	assert.NotErrorIs(t, err, ErrStreamCancelled)
}
