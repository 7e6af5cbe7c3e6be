// Package langchain adapts any langchaingo model (OpenAI-compatible APIs,
// Ollama through langchaingo) to llm.LLMProvider.
package langchain

import (
	"context"
	"fmt"
	"io"
	"sync"

	"ai-meetnotes/pkg/llm"

	"github.com/tmc/langchaingo/llms"
	lcollama "github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

type Provider struct {
	model        llms.Model
	defaultModel string
}

var _ llm.LLMProvider = &Provider{}

func New(model llms.Model, defaultModel string) *Provider {
	return &Provider{model: model, defaultModel: defaultModel}
}

// NewOpenAI targets any OpenAI-compatible endpoint. An empty baseURL uses api.openai.com.
func NewOpenAI(apiKey, baseURL, model string) (*Provider, error) {
	opts := []openai.Option{openai.WithModel(model)}
	if apiKey != "" {
		opts = append(opts, openai.WithToken(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	m, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("init openai client: %w", err)
	}
	return New(m, model), nil
}

func NewOllama(baseURL, model string) (*Provider, error) {
	m, err := lcollama.New(lcollama.WithServerURL(baseURL), lcollama.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("init ollama client: %w", err)
	}
	return New(m, model), nil
}

func toMessageContent(history []llm.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(history))
	for _, msg := range history {
		role := llms.ChatMessageTypeHuman
		switch msg.Role {
		case llm.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case llm.RoleAssistant, "model":
			role = llms.ChatMessageTypeAI
		}
		out = append(out, llms.TextParts(role, msg.Content))
	}
	return out
}

func (p *Provider) callOptions(opts ...llm.Option) []llms.CallOption {
	o := llm.ApplyOptions(llm.Options{Model: p.defaultModel}, opts...)
	var callOpts []llms.CallOption
	if o.Model != "" {
		callOpts = append(callOpts, llms.WithModel(o.Model))
	}
	if o.Temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(o.Temperature))
	}
	if o.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(o.MaxTokens))
	}
	return callOpts
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	resp, err := p.model.GenerateContent(ctx, toMessageContent(history), p.callOptions(opts...)...)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return resp.Choices[0].Content, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

// Stream bridges langchaingo's push-style streaming callback to a pull-style TextStream.
// The producer goroutine exits once GenerateContent returns; Close cancels and waits for it.
func (p *Provider) Stream(ctx context.Context, history []llm.Message, opts ...llm.Option) (llm.TextStream, error) {
	streamCtx, cancel := context.WithCancel(ctx)
	s := &chanStream{
		chunks: make(chan string),
		cancel: cancel,
	}

	callOpts := append(p.callOptions(opts...), llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
		if len(chunk) == 0 {
			return nil
		}
		select {
		case s.chunks <- string(chunk):
			return nil
		case <-streamCtx.Done():
			return streamCtx.Err()
		}
	}))

	go func() {
		defer close(s.chunks)
		_, err := p.model.GenerateContent(streamCtx, toMessageContent(history), callOpts...)
		s.err = err
	}()

	return s, nil
}

type chanStream struct {
	chunks    chan string
	err       error // written before chunks is closed
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func (s *chanStream) Recv() (string, error) {
	chunk, ok := <-s.chunks
	if ok {
		return chunk, nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

func (s *chanStream) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		for range s.chunks {
		}
	})
	return nil
}
