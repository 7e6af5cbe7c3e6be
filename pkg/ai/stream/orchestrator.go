// Package stream drives one model invocation and publishes the accumulated
// text after every chunk.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"ai-meetnotes/internal/pkg/logger"
	"ai-meetnotes/pkg/llm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	ErrStreamCancelled = errors.New("stream cancelled")
	ErrStreamTimeout   = errors.New("stream timed out")
)

var tracer = otel.Tracer("ai-meetnotes/stream")

type Request struct {
	Turns []llm.Message
	// OnChunk receives the full accumulated text. Calls are sequential and in
	// arrival order.
	OnChunk func(accumulated string)
	// Transform produces Result.Final from the complete text. Nil means identity.
	Transform func(text string) (string, error)
	Options   []llm.Option
}

type Result struct {
	Text   string
	Final  string
	Chunks int
}

type Orchestrator struct {
	provider llm.LLMProvider
	timeout  time.Duration
	logger   logger.ILogger
}

// NewOrchestrator bounds every run by timeout unless it is 0.
func NewOrchestrator(provider llm.LLMProvider, timeout time.Duration, logger logger.ILogger) *Orchestrator {
	return &Orchestrator{provider: provider, timeout: timeout, logger: logger}
}

// Run streams the model reply. On cancellation it returns ErrStreamCancelled
// together with the partial Result; the caller must not persist it.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	ctx, span := tracer.Start(ctx, "stream.Run")
	defer span.End()

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	res, err := o.run(ctx, req)
	span.SetAttributes(attribute.Int("stream.chunks", res.Chunks), attribute.Int("stream.length", len(res.Text)))
	if err != nil && !errors.Is(err, ErrStreamCancelled) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stream failed")
	}
	return res, err
}

func (o *Orchestrator) run(ctx context.Context, req Request) (Result, error) {
	var res Result

	stream, err := o.provider.Stream(ctx, req.Turns, req.Options...)
	if err != nil {
		return res, o.classify(ctx, fmt.Errorf("start stream: %w", err))
	}
	defer stream.Close()

	var acc strings.Builder
	for {
		// Cancellation is only observed between chunks.
		if ctx.Err() != nil {
			res.Text = acc.String()
			return res, o.classify(ctx, ctx.Err())
		}

		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.Text = acc.String()
			return res, o.classify(ctx, err)
		}

		acc.WriteString(chunk)
		res.Chunks++
		if req.OnChunk != nil {
			req.OnChunk(acc.String())
		}
	}

	res.Text = acc.String()
	res.Final = res.Text
	if req.Transform != nil {
		final, err := req.Transform(res.Text)
		if err != nil {
			return res, fmt.Errorf("transform: %w", err)
		}
		res.Final = final
	}

	o.logger.Debug("STREAM", "Stream completed", map[string]interface{}{
		"chunks": res.Chunks,
		"length": len(res.Text),
	})
	return res, nil
}

// classify maps context termination onto the package sentinels.
func (o *Orchestrator) classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrStreamTimeout, err)
	case errors.Is(ctx.Err(), context.Canceled):
		return ErrStreamCancelled
	}
	return err
}
