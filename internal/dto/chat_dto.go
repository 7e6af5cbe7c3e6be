package dto

import "errors"

type MentionDTO struct {
	Id    string `json:"id" validate:"required,uuid"`
	Type  string `json:"type" validate:"required,oneof=note human"`
	Label string `json:"label"`
}

type SendChatRequest struct {
	Content  string       `json:"content" validate:"required"`
	Mentions []MentionDTO `json:"mentions" validate:"max=10,dive"`
}

type SendChatResponse struct {
	MessageId string `json:"message_id"`
	Content   string `json:"content"`
	Fallback  bool   `json:"fallback"`
	Persisted bool   `json:"persisted"`
}

type ApplyMarkdownRequest struct {
	Markdown string `json:"markdown" validate:"required"`
}

const (
	ChatStreamChunk = "chunk"
	ChatStreamDone  = "done"
	ChatStreamError = "error"
)

// ChatStreamEvent is one SSE frame of a streamed reply.
type ChatStreamEvent struct {
	Type      string `json:"type"`
	MessageId string `json:"message_id,omitempty"`
	Content   string `json:"content,omitempty"`
	Fallback  bool   `json:"fallback,omitempty"`
}

type EnhanceResponse struct {
	SessionId string `json:"session_id"`
	Status    string `json:"status"`
}

type CancelEnhanceResponse struct {
	Cancelled bool `json:"cancelled"`
}

// LimitExceededError carries the free-tier ceiling to the HTTP layer.
type LimitExceededError struct {
	Limit int   `json:"limit"`
	Used  int   `json:"used"`
	Cause error `json:"-"`
}

func (e *LimitExceededError) Error() string {
	return "chat message limit reached"
}

func (e *LimitExceededError) Unwrap() error {
	return e.Cause
}

func AsLimitExceeded(err error) (*LimitExceededError, bool) {
	var target *LimitExceededError
	ok := errors.As(err, &target)
	return target, ok
}

// LimitExceededData is the data payload for 429 responses
type LimitExceededData struct {
	Limit            int  `json:"limit"`
	Used             int  `json:"used"`
	ShowModalPricing bool `json:"show_modal_pricing"`
}

// LimitExceededResponse is the full 429 response structure
type LimitExceededResponse struct {
	Success   bool              `json:"success"`
	Code      int               `json:"code"`
	Message   string            `json:"message"`
	ErrorType string            `json:"error_type"`
	Data      LimitExceededData `json:"data"`
}
