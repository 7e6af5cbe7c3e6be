package memory

import (
	"sync"

	"ai-meetnotes/pkg/store"
)

func ChatStreamKey(sessionID string) string    { return "chat:" + sessionID }
func EnhanceStreamKey(sessionID string) string { return "enhance:" + sessionID }

type streamEntry struct {
	userID string
	state  store.StreamState
}

// StreamStates is the caller-side guard allowing one generation per key.
type StreamStates struct {
	mu      sync.Mutex
	entries map[string]*streamEntry
	broker  *Broker
}

func NewStreamStates(broker *Broker) *StreamStates {
	return &StreamStates{entries: make(map[string]*streamEntry), broker: broker}
}

// TryBegin flips the key to generating. It returns false if a generation is already active.
func (s *StreamStates) TryBegin(key, userID, messageID string) bool {
	s.mu.Lock()
	if e, ok := s.entries[key]; ok && e.state.IsGenerating {
		s.mu.Unlock()
		return false
	}
	e := &streamEntry{userID: userID, state: store.StreamState{IsGenerating: true, MessageID: messageID}}
	s.entries[key] = e
	state := e.state
	s.mu.Unlock()

	s.publish(key, userID, state)
	return true
}

// SetMessageID records the placeholder id once it is known.
func (s *StreamStates) SetMessageID(key, messageID string) {
	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		e.state.MessageID = messageID
	}
	s.mu.Unlock()
}

// Update stores the accumulated text. Not published: the message store already is.
func (s *StreamStates) Update(key, text string) {
	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		e.state.Text = text
	}
	s.mu.Unlock()
}

func (s *StreamStates) Reset(key string) {
	s.mu.Lock()
	e, ok := s.entries[key]
	delete(s.entries, key)
	s.mu.Unlock()

	if ok {
		s.publish(key, e.userID, store.StreamState{})
	}
}

func (s *StreamStates) Get(key string) store.StreamState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		return e.state
	}
	return store.StreamState{}
}

func (s *StreamStates) publish(key, userID string, state store.StreamState) {
	s.broker.Publish(store.Change{
		Kind:    store.ChangeStreamUpdated,
		Key:     key,
		UserID:  userID,
		Payload: state,
	})
}
