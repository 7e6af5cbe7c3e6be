package memory

import (
	"sync"
	"time"

	"ai-meetnotes/pkg/store"

	"github.com/patrickmn/go-cache"
)

type conversation struct {
	userID   string
	messages []store.Message
}

// MessageStore keeps the ordered message list of each conversation, keyed by session id.
type MessageStore struct {
	cache  *cache.Cache
	mu     sync.Mutex
	broker *Broker
}

func NewMessageStore(broker *Broker) *MessageStore {
	return &MessageStore{
		cache:  cache.New(12*time.Hour, 10*time.Minute),
		broker: broker,
	}
}

func (r *MessageStore) Append(key, userID string, msg store.Message) {
	r.mu.Lock()
	conv := r.load(key)
	if conv.userID == "" {
		conv.userID = userID
	}
	conv.messages = append(conv.messages, msg)
	r.cache.Set(key, conv, cache.DefaultExpiration)
	snapshot := copyMessages(conv.messages)
	r.mu.Unlock()

	r.publish(key, conv.userID, snapshot)
}

// Replace updates the message with the given id in place. Position is
// looked up on every call so concurrent appends cannot misdirect the write.
func (r *MessageStore) Replace(key, id string, fn func(*store.Message)) bool {
	r.mu.Lock()
	conv := r.load(key)
	idx := -1
	for i := range conv.messages {
		if conv.messages[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return false
	}
	fn(&conv.messages[idx])
	r.cache.Set(key, conv, cache.DefaultExpiration)
	snapshot := copyMessages(conv.messages)
	r.mu.Unlock()

	r.publish(key, conv.userID, snapshot)
	return true
}

func (r *MessageStore) Get(key, id string) (store.Message, bool) {
	for _, m := range r.List(key) {
		if m.ID == id {
			return m, true
		}
	}
	return store.Message{}, false
}

func (r *MessageStore) List(key string) []store.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyMessages(r.load(key).messages)
}

// Reset replaces the conversation with msgs, e.g. after loading history.
func (r *MessageStore) Reset(key, userID string, msgs []store.Message) {
	r.mu.Lock()
	conv := &conversation{userID: userID, messages: copyMessages(msgs)}
	r.cache.Set(key, conv, cache.DefaultExpiration)
	r.mu.Unlock()

	r.publish(key, userID, copyMessages(msgs))
}

func (r *MessageStore) Delete(key string) {
	r.mu.Lock()
	r.cache.Delete(key)
	r.mu.Unlock()
}

// load must be called with mu held.
func (r *MessageStore) load(key string) *conversation {
	if x, found := r.cache.Get(key); found {
		return x.(*conversation)
	}
	return &conversation{}
}

func (r *MessageStore) publish(key, userID string, msgs []store.Message) {
	r.broker.Publish(store.Change{
		Kind:    store.ChangeMessagesUpdated,
		Key:     key,
		UserID:  userID,
		Payload: msgs,
	})
}

func copyMessages(in []store.Message) []store.Message {
	out := make([]store.Message, len(in))
	copy(out, in)
	return out
}
