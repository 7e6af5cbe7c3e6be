package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-meetnotes/internal/constant"
	"ai-meetnotes/internal/entity"
	"ai-meetnotes/internal/pkg/logger"
	"ai-meetnotes/internal/repository/memory"
	"ai-meetnotes/pkg/ai/assembler"
	"ai-meetnotes/pkg/ai/commit"
	"ai-meetnotes/pkg/ai/mention"
	"ai-meetnotes/pkg/ai/prompt"
	"ai-meetnotes/pkg/ai/quota"
	"ai-meetnotes/pkg/ai/stream"
	"ai-meetnotes/pkg/analytics"
	"ai-meetnotes/pkg/llm"
	"ai-meetnotes/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// world is the durable store seen by every component under test.
type world struct {
	mu        sync.Mutex
	sessions  map[string]*entity.Session
	humans    map[string]*entity.Human
	licensed  bool
	groupID   uuid.UUID
	messages  []*entity.ChatMessage
	notes     map[string]string
	events    []analytics.Event
	notified  []store.Notification
	dropWrite bool
}

func newWorld() *world {
	return &world{
		sessions: map[string]*entity.Session{},
		humans:   map[string]*entity.Human{},
		groupID:  uuid.New(),
		notes:    map[string]string{},
	}
}

func (w *world) GetSession(_ context.Context, id string) (*entity.Session, error) {
	return w.sessions[id].Clone(), nil
}

func (w *world) GetConnection(context.Context) (*entity.Connection, error) {
	return &entity.Connection{Type: "Local"}, nil
}

func (w *world) ListParticipants(context.Context, string) ([]*entity.Human, error) { return nil, nil }

func (w *world) GetEvent(context.Context, string) (*entity.CalendarEvent, error) { return nil, nil }

func (w *world) GetUserSession(_ context.Context, userID, id string) (*entity.Session, error) {
	sess := w.sessions[id]
	if sess == nil || sess.UserId.String() != userID {
		return nil, nil
	}
	return sess.Clone(), nil
}

func (w *world) GetUserHuman(_ context.Context, userID, id string) (*entity.Human, error) {
	human := w.humans[id]
	if human == nil || human.UserId.String() != userID {
		return nil, nil
	}
	return human, nil
}

func (w *world) SearchSessions(context.Context, string, string, int) ([]*entity.Session, error) {
	return nil, nil
}

func (w *world) GetUserConfig(context.Context, string) (*entity.UserConfig, error) {
	return &entity.UserConfig{DisplayLanguage: "en"}, nil
}

func (w *world) GetOrCreateChatGroup(context.Context, string, string) (uuid.UUID, error) {
	return w.groupID, nil
}

func (w *world) UpsertChatMessage(_ context.Context, msg *entity.ChatMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dropWrite {
		return errors.New("write failed")
	}
	for i, m := range w.messages {
		if m.Id == msg.Id {
			w.messages[i] = msg
			return nil
		}
	}
	w.messages = append(w.messages, msg)
	return nil
}

func (w *world) SaveEnhancedNote(_ context.Context, sessionID, html string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notes[sessionID] = html
	return nil
}

func (w *world) HasValidLicense(context.Context, string) (bool, error) { return w.licensed, nil }

func (w *world) Track(_ context.Context, e analytics.Event) { w.events = append(w.events, e) }

func (w *world) Notify(_ string, n store.Notification) { w.notified = append(w.notified, n) }

func (w *world) assistantMessages() []*entity.ChatMessage {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []*entity.ChatMessage
	for _, m := range w.messages {
		if m.Role == entity.ChatRoleAssistant {
			out = append(out, m)
		}
	}
	return out
}

// scriptProvider streams chunks and then fails with err, or ends cleanly.
// With gate set, every chunk after the first waits for the gate or ctx.
type scriptProvider struct {
	chunks []string
	err    error
	gate   chan struct{}
	calls  int
	turns  []llm.Message
}

func (s *scriptProvider) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return "", errors.New("unused")
}

func (s *scriptProvider) Generate(context.Context, string, ...llm.Option) (string, error) {
	return "", errors.New("unused")
}

func (s *scriptProvider) Stream(ctx context.Context, turns []llm.Message, _ ...llm.Option) (llm.TextStream, error) {
	s.calls++
	s.turns = turns
	return &scriptStream{ctx: ctx, p: s}, nil
}

type scriptStream struct {
	ctx context.Context
	p   *scriptProvider
	pos int
}

func (s *scriptStream) Recv() (string, error) {
	if s.p.gate != nil && s.pos > 0 {
		select {
		case <-s.p.gate:
		case <-s.ctx.Done():
			return "", s.ctx.Err()
		}
	}
	if s.pos < len(s.p.chunks) {
		s.pos++
		return s.p.chunks[s.pos-1], nil
	}
	if s.p.err != nil {
		return "", s.p.err
	}
	return "", io.EOF
}

func (s *scriptStream) Close() error { return nil }

type harness struct {
	w        *world
	provider *scriptProvider
	broker   *memory.Broker
	messages *memory.MessageStore
	sessions *memory.SessionStore
	streams  *memory.StreamStates
	chat     *ChatPipeline
	enhance  *EnhancePipeline
	session  *entity.Session
	userID   string
}

func newHarness(t *testing.T, provider *scriptProvider) *harness {
	t.Helper()
	log := logger.NewNopLogger()
	w := newWorld()

	h := &harness{
		w:        w,
		provider: provider,
		broker:   memory.NewBroker(),
		userID:   uuid.NewString(),
	}
	h.messages = memory.NewMessageStore(h.broker)
	h.sessions = memory.NewSessionStore(h.broker)
	h.streams = memory.NewStreamStates(h.broker)

	h.session = &entity.Session{
		Id:          uuid.New(),
		UserId:      uuid.MustParse(h.userID),
		Title:       "Kickoff",
		RawMemoHtml: "<p>stored raw</p>",
		Words:       []entity.Word{{Text: "hi", Speaker: "Jane", StartMs: 1000}},
	}
	w.sessions[h.session.Id.String()] = h.session
	h.sessions.Insert(h.session)

	renderer := prompt.NewRenderer(constant.PromptTemplates())
	orch := stream.NewOrchestrator(provider, 0, log)
	committer := commit.NewCommitter(w, w, h.sessions, nil, log)

	h.chat = NewChatPipeline(ChatDeps{
		Assembler:    assembler.New(w, renderer, mention.NewResolver(w, log), log),
		Orchestrator: orch,
		Committer:    committer,
		Quota:        quota.NewGuard(14, w, w, w, log),
		Tracker:      w,
		Chats:        w,
		Messages:     h.messages,
		Sessions:     h.sessions,
		Streams:      h.streams,
		Logger:       log,
	})
	h.enhance = NewEnhancePipeline(EnhanceDeps{
		Source:       w,
		Renderer:     renderer,
		Orchestrator: orch,
		Committer:    committer,
		Tracker:      w,
		Sessions:     h.sessions,
		Streams:      h.streams,
		Logger:       log,
	})
	return h
}

func (h *harness) sid() string { return h.session.Id.String() }

func (h *harness) input(content string) ChatInput {
	return ChatInput{SessionID: h.sid(), UserID: h.userID, Content: content}
}

func TestChatPersistsTrimmedConcatenation(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   string
	}{
		{name: "two chunks", chunks: []string{"Hel", "lo"}, want: "Hello"},
		{name: "surrounding whitespace", chunks: []string{"\n  Sure", ", here", " it is.  \n"}, want: "Sure, here it is."},
		{name: "code fence", chunks: []string{"```go\nx", " := 1\n```"}, want: "```go\nx := 1\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, &scriptProvider{chunks: tt.chunks})

			var mu sync.Mutex
			var snapshots []string
			unsubscribe := h.broker.Subscribe(func(c store.Change) {
				if c.Kind != store.ChangeMessagesUpdated {
					return
				}
				msgs := c.Payload.([]store.Message)
				last := msgs[len(msgs)-1]
				if !last.IsUser {
					mu.Lock()
					snapshots = append(snapshots, last.Content)
					mu.Unlock()
				}
			})
			defer unsubscribe()

			out, err := h.chat.Process(context.Background(), h.input("question"))
			require.NoError(t, err)
			require.NoError(t, out.Err)
			assert.Equal(t, tt.want, out.Content)
			assert.True(t, out.Persisted)

			persisted := h.w.assistantMessages()
			require.Len(t, persisted, 1)
			assert.Equal(t, tt.want, persisted[0].Content)
			assert.Equal(t, out.MessageID, persisted[0].Id.String())
			assert.Equal(t, h.w.groupID, persisted[0].GroupId)

			// placeholder, one update per chunk, final
			require.Len(t, snapshots, len(tt.chunks)+2)
			assert.Equal(t, constant.ChatPlaceholderContent, snapshots[0])
			assert.Equal(t, strings.Join(tt.chunks, ""), snapshots[len(tt.chunks)])
			assert.Equal(t, tt.want, snapshots[len(snapshots)-1])

			msgs := h.messages.List(h.sid())
			require.Len(t, msgs, 2)
			assert.True(t, msgs[0].IsUser)
			assert.Equal(t, out.MessageID, msgs[1].ID)
			assert.NotEmpty(t, msgs[1].Parts)

			assert.False(t, h.streams.Get(memory.ChatStreamKey(h.sid())).IsGenerating)
			assert.True(t, h.sessions.IsDirty(h.sid()))
			assert.Equal(t, []analytics.Event{{Name: constant.AnalyticsChatMessageSent, DistinctID: h.userID}}, h.w.events)
		})
	}
}

func TestChatStreamErrorPersistsFallback(t *testing.T) {
	h := newHarness(t, &scriptProvider{chunks: []string{"Hel", "lo"}, err: errors.New("socket closed")})

	out, err := h.chat.Process(context.Background(), h.input("question"))
	require.NoError(t, err)

	assert.True(t, out.Fallback)
	assert.Error(t, out.Err)
	persisted := h.w.assistantMessages()
	require.Len(t, persisted, 1)
	assert.Equal(t, constant.ChatFallbackContent, persisted[0].Content)
	assert.NotEqual(t, "Hello", persisted[0].Content)

	ui, ok := h.messages.Get(h.sid(), out.MessageID)
	require.True(t, ok)
	assert.Equal(t, constant.ChatFallbackContent, ui.Content)
	assert.Equal(t, persisted[0].Id.String(), ui.ID)

	// the guard is released so the user can retry
	h.provider.err = nil
	_, err = h.chat.Process(context.Background(), h.input("again"))
	assert.NoError(t, err)
}

func TestChatAssemblyFailureSkipsModel(t *testing.T) {
	h := newHarness(t, &scriptProvider{chunks: []string{"x"}})
	delete(h.w.sessions, h.sid())

	out, err := h.chat.Process(context.Background(), h.input("question"))
	require.NoError(t, err)
	assert.ErrorIs(t, out.Err, assembler.ErrAssembly)
	assert.True(t, out.Fallback)
	assert.Zero(t, h.provider.calls)
}

func TestChatQuotaBoundary(t *testing.T) {
	tests := []struct {
		name      string
		history   int
		licensed  bool
		wantBlock bool
	}{
		{name: "13 messages", history: 13},
		{name: "14 messages", history: 14, wantBlock: true},
		{name: "14 messages licensed", history: 14, licensed: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, &scriptProvider{chunks: []string{"ok"}})
			h.w.licensed = tt.licensed
			for i := 0; i < tt.history; i++ {
				h.messages.Append(h.sid(), h.userID, store.Message{ID: uuid.NewString(), Content: "m", IsUser: i%2 == 0})
			}

			_, err := h.chat.Process(context.Background(), h.input("one more"))
			if !tt.wantBlock {
				require.NoError(t, err)
				assert.Equal(t, 1, h.provider.calls)
				return
			}

			assert.ErrorIs(t, err, quota.ErrQuotaExceeded)
			assert.Zero(t, h.provider.calls)
			assert.Empty(t, h.w.messages)
			assert.Len(t, h.messages.List(h.sid()), tt.history)
			assert.Len(t, h.w.notified, 1)
			assert.Equal(t, []analytics.Event{{Name: constant.AnalyticsQuotaExceeded, DistinctID: h.userID}}, h.w.events)
		})
	}
}

func TestChatRejectsWhileGenerating(t *testing.T) {
	h := newHarness(t, &scriptProvider{chunks: []string{"x"}})
	require.True(t, h.streams.TryBegin(memory.ChatStreamKey(h.sid()), h.userID, "m"))

	_, err := h.chat.Process(context.Background(), h.input("hi"))
	assert.ErrorIs(t, err, ErrGenerationInProgress)
	assert.Empty(t, h.w.events)
}

func TestChatRejectsEmpty(t *testing.T) {
	h := newHarness(t, &scriptProvider{})
	_, err := h.chat.Process(context.Background(), h.input("   "))
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestChatMentionsReachPrompt(t *testing.T) {
	h := newHarness(t, &scriptProvider{chunks: []string{"ok"}})
	other := &entity.Session{Id: uuid.New(), UserId: h.session.UserId, EnhancedMemoHtml: "<p>q2 goals</p>"}
	h.w.sessions[other.Id.String()] = other
	foreign := &entity.Session{Id: uuid.New(), UserId: uuid.New(), EnhancedMemoHtml: "<p>not yours</p>"}
	h.w.sessions[foreign.Id.String()] = foreign

	in := h.input("compare")
	in.Mentions = []mention.Mention{
		{ID: other.Id.String(), Type: mention.TypeNote, Label: "Q2"},
		{ID: foreign.Id.String(), Type: mention.TypeNote, Label: "Other"},
	}
	_, err := h.chat.QuickAction(context.Background(), in)
	require.NoError(t, err)

	last := h.provider.turns[len(h.provider.turns)-1]
	assert.Equal(t, llm.RoleUser, last.Role)
	assert.True(t, strings.HasPrefix(last.Content, "compare"+constant.MentionDisclaimer))
	assert.Contains(t, last.Content, "--- Content from the note \"Q2\" ---\n<p>q2 goals</p>")
	assert.NotContains(t, last.Content, "not yours")
	assert.Equal(t, constant.AnalyticsChatQuickActionSent, h.w.events[0].Name)
}

func TestApplyMarkdown(t *testing.T) {
	h := newHarness(t, &scriptProvider{})
	require.NoError(t, h.chat.ApplyMarkdown(context.Background(), h.sid(), "**bold**"))

	s, ok := h.sessions.Get(h.sid())
	require.True(t, ok)
	assert.Equal(t, "<p><strong>bold</strong></p>", s.EnhancedMemoHtml)
	assert.True(t, h.sessions.IsDirty(h.sid()))

	assert.ErrorIs(t, h.chat.ApplyMarkdown(context.Background(), uuid.NewString(), "x"), ErrSessionNotOpen)
}

func TestEnhancePersistsHTML(t *testing.T) {
	h := newHarness(t, &scriptProvider{chunks: []string{"# Sum", "mary\n", "- one"}})
	h.sessions.Update(h.sid(), func(s *entity.Session) { s.RawMemoHtml = "<p>unsaved edit</p>" })

	out, err := h.enhance.Enhance(context.Background(), h.sid(), h.userID)
	require.NoError(t, err)
	require.NoError(t, out.Err)
	assert.True(t, out.Persisted)

	want := "<h1>Summary</h1>\n<ul>\n<li>one</li>\n</ul>"
	assert.Equal(t, want, h.w.notes[h.sid()])
	s, _ := h.sessions.Get(h.sid())
	assert.Equal(t, want, s.EnhancedMemoHtml)

	require.Len(t, h.provider.turns, 2)
	assert.Contains(t, h.provider.turns[1].Content, "<p>unsaved edit</p>")
	assert.Contains(t, h.provider.turns[1].Content, "[00:01] Jane: hi")
	assert.Equal(t, []analytics.Event{{Name: constant.AnalyticsEnhanceNoteClicked, DistinctID: h.userID, SessionID: h.sid()}}, h.w.events)
	assert.False(t, h.enhance.IsRunning(h.sid()))
}

func TestEnhanceCancelKeepsPartialWithoutWrite(t *testing.T) {
	gate := make(chan struct{})
	h := newHarness(t, &scriptProvider{chunks: []string{"Hel", "lo"}, gate: gate})

	partial := make(chan struct{}, 1)
	unsubscribe := h.broker.Subscribe(func(c store.Change) {
		if c.Kind == store.ChangeSessionUpdated && c.Payload.(*entity.Session).EnhancedMemoHtml != "" {
			select {
			case partial <- struct{}{}:
			default:
			}
		}
	})
	defer unsubscribe()

	done := make(chan commit.Outcome, 1)
	go func() {
		out, _ := h.enhance.Enhance(context.Background(), h.sid(), h.userID)
		done <- out
	}()

	select {
	case <-partial:
	case <-time.After(2 * time.Second):
		t.Fatal("no partial update")
	}
	require.True(t, h.enhance.Cancel(h.sid()))

	var out commit.Outcome
	select {
	case out = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("enhance did not stop")
	}

	assert.True(t, out.Cancelled)
	assert.False(t, out.Persisted)
	assert.Empty(t, h.w.notes)
	s, _ := h.sessions.Get(h.sid())
	assert.Equal(t, "<p>Hel</p>", s.EnhancedMemoHtml)
	assert.False(t, h.enhance.Cancel(h.sid()))
	assert.False(t, h.streams.Get(memory.EnhanceStreamKey(h.sid())).IsGenerating)
}

func TestEnhanceCancelBetweenBeginAndRun(t *testing.T) {
	h := newHarness(t, &scriptProvider{chunks: []string{"never"}})

	run, err := h.enhance.Begin(context.Background(), h.sid(), h.userID)
	require.NoError(t, err)
	assert.True(t, h.enhance.IsRunning(h.sid()))

	_, err = h.enhance.Begin(context.Background(), h.sid(), h.userID)
	assert.ErrorIs(t, err, ErrGenerationInProgress)

	require.True(t, h.enhance.Cancel(h.sid()))
	out := run.Run()

	assert.True(t, out.Cancelled)
	assert.False(t, out.Persisted)
	assert.Empty(t, h.w.notes)
	assert.False(t, h.enhance.IsRunning(h.sid()))
	assert.False(t, h.streams.Get(memory.EnhanceStreamKey(h.sid())).IsGenerating)
}

func TestEnhanceFailureWritesNothing(t *testing.T) {
	h := newHarness(t, &scriptProvider{chunks: []string{"a"}, err: errors.New("boom")})
	out, err := h.enhance.Enhance(context.Background(), h.sid(), h.userID)
	require.NoError(t, err)
	assert.Error(t, out.Err)
	assert.False(t, out.Cancelled)
	assert.Empty(t, h.w.notes)
}

func TestFormatTimeline(t *testing.T) {
	words := []entity.Word{
		{Text: "hello", Speaker: "Jane", StartMs: 65000},
		{Text: "there", Speaker: "Jane", StartMs: 65500},
		{Text: "hi", Speaker: "Bob", StartMs: 67000},
		{Text: "um", StartMs: 125000},
	}
	assert.Equal(t, "[01:05] Jane: hello there\n[01:07] Bob: hi\n[02:05] um", FormatTimeline(words))
	assert.Equal(t, "", FormatTimeline(nil))
}
