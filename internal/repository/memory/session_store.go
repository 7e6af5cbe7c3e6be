package memory

import (
	"sync"
	"time"

	"ai-meetnotes/internal/entity"
	"ai-meetnotes/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionStore is the in-memory copy of sessions currently open in the UI.
type SessionStore struct {
	cache  *cache.Cache
	mu     sync.Mutex
	dirty  map[string]bool
	broker *Broker
}

func NewSessionStore(broker *Broker) *SessionStore {
	// Open sessions expire after 12 hours of inactivity; purge every 10 minutes
	c := cache.New(12*time.Hour, 10*time.Minute)
	return &SessionStore{
		cache:  c,
		dirty:  make(map[string]bool),
		broker: broker,
	}
}

func (r *SessionStore) Insert(session *entity.Session) {
	r.mu.Lock()
	r.cache.Set(session.Id.String(), session.Clone(), cache.DefaultExpiration)
	r.mu.Unlock()
	r.publish(store.ChangeSessionUpdated, session)
}

// Get returns a copy; mutate through Update.
func (r *SessionStore) Get(sessionID string) (*entity.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*entity.Session).Clone(), true
	}
	return nil, false
}

// Update applies fn to the stored session and returns the updated copy.
func (r *SessionStore) Update(sessionID string, fn func(*entity.Session)) (*entity.Session, bool) {
	r.mu.Lock()
	x, found := r.cache.Get(sessionID)
	if !found {
		r.mu.Unlock()
		return nil, false
	}
	next := x.(*entity.Session).Clone()
	fn(next)
	r.cache.Set(sessionID, next, cache.DefaultExpiration)
	out := next.Clone()
	r.mu.Unlock()

	r.publish(store.ChangeSessionUpdated, out)
	return out, true
}

func (r *SessionStore) MarkDirty(sessionID string) {
	r.mu.Lock()
	r.dirty[sessionID] = true
	r.mu.Unlock()
}

func (r *SessionStore) IsDirty(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dirty[sessionID]
}

func (r *SessionStore) ClearDirty(sessionID string) {
	r.mu.Lock()
	delete(r.dirty, sessionID)
	r.mu.Unlock()
}

func (r *SessionStore) Delete(sessionID string) {
	r.mu.Lock()
	x, found := r.cache.Get(sessionID)
	r.cache.Delete(sessionID)
	delete(r.dirty, sessionID)
	r.mu.Unlock()

	if found {
		r.publish(store.ChangeSessionDeleted, x.(*entity.Session))
	}
}

func (r *SessionStore) publish(kind string, s *entity.Session) {
	r.broker.Publish(store.Change{
		Kind:    kind,
		Key:     s.Id.String(),
		UserID:  s.UserId.String(),
		Payload: s.Clone(),
	})
}
