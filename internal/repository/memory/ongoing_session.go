package memory

import "sync"

// OngoingSession tracks which session each user is currently recording.
type OngoingSession struct {
	mu  sync.RWMutex
	ids map[string]string
}

func NewOngoingSession() *OngoingSession {
	return &OngoingSession{ids: make(map[string]string)}
}

func (o *OngoingSession) Set(userID, sessionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if sessionID == "" {
		delete(o.ids, userID)
		return
	}
	o.ids[userID] = sessionID
}

func (o *OngoingSession) Get(userID string) string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.ids[userID]
}

func (o *OngoingSession) Is(userID, sessionID string) bool {
	return sessionID != "" && o.Get(userID) == sessionID
}
