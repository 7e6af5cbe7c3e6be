// Package assembler builds the prompt turns for a chat request from the
// durable session, its calendar metadata and any mentioned notes or people.
package assembler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-meetnotes/internal/constant"
	"ai-meetnotes/internal/entity"
	"ai-meetnotes/internal/pkg/logger"
	"ai-meetnotes/pkg/ai/mention"
	"ai-meetnotes/pkg/llm"
	"ai-meetnotes/pkg/llm/tokens"
	"ai-meetnotes/pkg/store"
)

// ErrAssembly wraps every failure that aborts a turn before the model is called.
var ErrAssembly = errors.New("prompt assembly failed")

const (
	DateLayout = "January 2, 2006, 3:04 PM"

	// JSON keys and punctuation around each serialized word.
	wordOverheadTokens = 12
)

type Source interface {
	GetSession(ctx context.Context, id string) (*entity.Session, error)
	GetConnection(ctx context.Context) (*entity.Connection, error)
	ListParticipants(ctx context.Context, sessionID string) ([]*entity.Human, error)
	GetEvent(ctx context.Context, sessionID string) (*entity.CalendarEvent, error)
}

type Renderer interface {
	Render(key string, vars map[string]any) (string, error)
}

type MentionResolver interface {
	Resolve(ctx context.Context, userID string, mentions []mention.Mention) []string
}

type Input struct {
	SessionID   string
	UserID      string
	History     []store.Message
	UserMessage string
	Mentions    []mention.Mention
}

// ChatContext is everything the chat system template can reference.
type ChatContext struct {
	Session           *entity.Session
	Words             string
	Title             string
	EnhancedContent   string
	RawContent        string
	PreMeetingContent string
	ConnectionType    string
	Date              string
	Participants      []string
	Event             string
}

func (c ChatContext) Vars() map[string]any {
	return map[string]any{
		"session":           c.Session,
		"words":             c.Words,
		"title":             c.Title,
		"enhancedContent":   c.EnhancedContent,
		"rawContent":        c.RawContent,
		"preMeetingContent": c.PreMeetingContent,
		"type":              c.ConnectionType,
		"date":              c.Date,
		"participants":      c.Participants,
		"event":             c.Event,
	}
}

type Assembler struct {
	source   Source
	renderer Renderer
	mentions MentionResolver
	logger   logger.ILogger

	counter     tokens.Counter
	wordsBudget int
	now         func() time.Time
}

type Option func(*Assembler)

func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// WithWordsBudget keeps only the newest transcript words that fit in budget tokens.
func WithWordsBudget(counter tokens.Counter, budget int) Option {
	return func(a *Assembler) {
		a.counter = counter
		a.wordsBudget = budget
	}
}

func New(source Source, renderer Renderer, mentions MentionResolver, logger logger.ILogger, opts ...Option) *Assembler {
	a := &Assembler{
		source:   source,
		renderer: renderer,
		mentions: mentions,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Assembler) Assemble(ctx context.Context, in Input) ([]llm.Message, error) {
	chatCtx, err := a.BuildContext(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	system, err := a.renderer.Render(constant.TemplateChatSystem, chatCtx.Vars())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssembly, err)
	}

	turns := make([]llm.Message, 0, len(in.History)+2)
	turns = append(turns, llm.Message{Role: llm.RoleSystem, Content: system})
	for _, m := range in.History {
		role := llm.RoleAssistant
		if m.IsUser {
			role = llm.RoleUser
		}
		turns = append(turns, llm.Message{Role: role, Content: m.Content})
	}

	userMessage := in.UserMessage
	if len(in.Mentions) > 0 {
		userMessage += constant.MentionDisclaimer + "\n\n"
		for _, block := range a.mentions.Resolve(ctx, in.UserID, in.Mentions) {
			userMessage += block
		}
	}
	if userMessage != "" {
		turns = append(turns, llm.Message{Role: llm.RoleUser, Content: userMessage})
	}

	return turns, nil
}

// BuildContext reads fresh state from the durable store. Participants and
// the calendar event are optional; the session and connection are not.
func (a *Assembler) BuildContext(ctx context.Context, sessionID string) (*ChatContext, error) {
	sess, err := a.source.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: refresh session: %v", ErrAssembly, err)
	}
	if sess == nil {
		return nil, fmt.Errorf("%w: session %s not found", ErrAssembly, sessionID)
	}

	conn, err := a.source.GetConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: connection: %v", ErrAssembly, err)
	}

	words, err := json.Marshal(a.trimWords(sess.Words))
	if err != nil {
		return nil, fmt.Errorf("%w: encode words: %v", ErrAssembly, err)
	}

	chatCtx := &ChatContext{
		Session:           sess,
		Words:             string(words),
		Title:             sess.Title,
		EnhancedContent:   sess.EnhancedMemoHtml,
		RawContent:        sess.RawMemoHtml,
		PreMeetingContent: sess.PreMeetingMemoHtml,
		Date:              a.now().Format(DateLayout),
		Participants:      []string{},
	}
	if conn != nil {
		chatCtx.ConnectionType = conn.Type
	}

	participants, err := a.source.ListParticipants(ctx, sessionID)
	if err != nil {
		a.logger.Warn("ASSEMBLER", "Failed to list participants", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
	for _, p := range participants {
		chatCtx.Participants = append(chatCtx.Participants, p.FullName)
	}

	event, err := a.source.GetEvent(ctx, sessionID)
	if err != nil {
		a.logger.Warn("ASSEMBLER", "Failed to load calendar event", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
	chatCtx.Event = FormatEvent(event)

	return chatCtx, nil
}

// FormatEvent renders "<name> (<start> - <end>) - <note>"; the note clause is
// dropped when empty and a nil event renders as "".
func FormatEvent(ev *entity.CalendarEvent) string {
	if ev == nil {
		return ""
	}
	s := fmt.Sprintf("%s (%s - %s)", ev.Name, ev.StartDate.Format(DateLayout), ev.EndDate.Format(DateLayout))
	if ev.Note != "" {
		s += " - " + ev.Note
	}
	return s
}

func (a *Assembler) trimWords(words []entity.Word) []entity.Word {
	if words == nil {
		return []entity.Word{}
	}
	if a.counter == nil || a.wordsBudget <= 0 {
		return words
	}

	used := 0
	start := len(words)
	for i := len(words) - 1; i >= 0; i-- {
		cost := a.counter.Count(words[i].Text) + wordOverheadTokens
		if used+cost > a.wordsBudget {
			break
		}
		used += cost
		start = i
	}
	return words[start:]
}
