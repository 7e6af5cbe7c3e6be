// Package memory holds the UI-facing state: open sessions, chat messages and
// stream flags. Every mutation goes through an update-by-id method and is
// announced on the Broker.
package memory

import (
	"sync"

	"ai-meetnotes/pkg/store"
)

type Listener func(store.Change)

type Broker struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]Listener
}

func NewBroker() *Broker {
	return &Broker{listeners: make(map[int]Listener)}
}

// Subscribe registers l and returns its unsubscribe func.
// Listeners run on the publisher's goroutine and must not block.
func (b *Broker) Subscribe(l Listener) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = l
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

func (b *Broker) Publish(c store.Change) {
	if b == nil {
		return
	}
	b.mu.RLock()
	ls := make([]Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		ls = append(ls, l)
	}
	b.mu.RUnlock()

	for _, l := range ls {
		l(c)
	}
}

// Notify pushes a one-shot dialog to a single user.
func (b *Broker) Notify(userID string, n store.Notification) {
	b.Publish(store.Change{Kind: store.ChangeNotification, Key: userID, UserID: userID, Payload: n})
}
