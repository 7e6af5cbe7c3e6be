package memory

import (
	"sync"
	"testing"

	"ai-meetnotes/internal/entity"
	"ai-meetnotes/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreUpdateByID(t *testing.T) {
	broker := NewBroker()
	var changes []store.Change
	unsubscribe := broker.Subscribe(func(c store.Change) { changes = append(changes, c) })
	defer unsubscribe()

	s := NewSessionStore(broker)
	sess := &entity.Session{Id: uuid.New(), UserId: uuid.New(), Title: "Standup"}
	s.Insert(sess)

	// mutating the inserted pointer must not leak into the store
	sess.Title = "changed"
	got, ok := s.Get(sess.Id.String())
	require.True(t, ok)
	assert.Equal(t, "Standup", got.Title)

	updated, ok := s.Update(sess.Id.String(), func(x *entity.Session) {
		x.EnhancedMemoHtml = "<p>done</p>"
	})
	require.True(t, ok)
	assert.Equal(t, "<p>done</p>", updated.EnhancedMemoHtml)

	_, ok = s.Update(uuid.NewString(), func(*entity.Session) {})
	assert.False(t, ok)

	s.MarkDirty(sess.Id.String())
	assert.True(t, s.IsDirty(sess.Id.String()))

	s.Delete(sess.Id.String())
	_, ok = s.Get(sess.Id.String())
	assert.False(t, ok)
	assert.False(t, s.IsDirty(sess.Id.String()))

	require.Len(t, changes, 3)
	assert.Equal(t, store.ChangeSessionUpdated, changes[0].Kind)
	assert.Equal(t, store.ChangeSessionDeleted, changes[2].Kind)
	assert.Equal(t, sess.UserId.String(), changes[1].UserID)
}

func TestMessageStoreReplaceByID(t *testing.T) {
	m := NewMessageStore(NewBroker())
	m.Append("s1", "u1", store.Message{ID: "a", Content: "hi", IsUser: true})
	m.Append("s1", "u1", store.Message{ID: "b", Content: "Generating..."})
	m.Append("s1", "u1", store.Message{ID: "c", Content: "later"})

	ok := m.Replace("s1", "b", func(msg *store.Message) { msg.Content = "Hello" })
	require.True(t, ok)
	assert.False(t, m.Replace("s1", "zzz", func(*store.Message) {}))

	list := m.List("s1")
	require.Len(t, list, 3)
	assert.Equal(t, "Hello", list[1].Content)
	assert.Equal(t, "later", list[2].Content)

	// List hands out copies
	list[0].Content = "tampered"
	got, ok := m.Get("s1", "a")
	require.True(t, ok)
	assert.Equal(t, "hi", got.Content)

	m.Reset("s1", "u1", nil)
	assert.Empty(t, m.List("s1"))
}

func TestStreamStatesGuard(t *testing.T) {
	s := NewStreamStates(NewBroker())
	key := ChatStreamKey("s1")

	require.True(t, s.TryBegin(key, "u1", "m1"))
	assert.False(t, s.TryBegin(key, "u1", "m2"))
	assert.True(t, s.TryBegin(EnhanceStreamKey("s1"), "u1", ""), "chat and enhance are guarded separately")

	s.Update(key, "Hel")
	st := s.Get(key)
	assert.True(t, st.IsGenerating)
	assert.Equal(t, "m1", st.MessageID)
	assert.Equal(t, "Hel", st.Text)

	s.Reset(key)
	assert.Equal(t, store.StreamState{}, s.Get(key))
	assert.True(t, s.TryBegin(key, "u1", "m3"))
}

func TestStreamStatesConcurrentBegin(t *testing.T) {
	s := NewStreamStates(NewBroker())
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.TryBegin("k", "u", "") {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestOngoingSession(t *testing.T) {
	o := NewOngoingSession()
	assert.False(t, o.Is("u1", ""))
	o.Set("u1", "s1")
	assert.True(t, o.Is("u1", "s1"))
	assert.False(t, o.Is("u2", "s1"))
	o.Set("u1", "")
	assert.Equal(t, "", o.Get("u1"))
}

func TestBrokerUnsubscribe(t *testing.T) {
	b := NewBroker()
	n := 0
	unsubscribe := b.Subscribe(func(store.Change) { n++ })
	b.Publish(store.Change{Kind: "x"})
	unsubscribe()
	b.Publish(store.Change{Kind: "x"})
	assert.Equal(t, 1, n)
}

func TestBrokerNotifyTargetsUser(t *testing.T) {
	b := NewBroker()
	var got []store.Change
	b.Subscribe(func(c store.Change) { got = append(got, c) })

	b.Notify("u1", store.Notification{Title: "Hi", Message: "there"})

	require.Len(t, got, 1)
	assert.Equal(t, store.ChangeNotification, got[0].Kind)
	assert.Equal(t, "u1", got[0].UserID)
	assert.Equal(t, store.Notification{Title: "Hi", Message: "there"}, got[0].Payload)
}
