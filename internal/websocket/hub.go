package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"ai-meetnotes/internal/pkg/logger"
	"ai-meetnotes/internal/repository/memory"
	"ai-meetnotes/pkg/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "cluster_events"

// Frame is what a connected client receives for every store change.
type Frame struct {
	Type string `json:"type"`
	Key  string `json:"key"`
	Data any    `json:"data,omitempty"`
}

type clusterEnvelope struct {
	Origin       string          `json:"origin"`
	TargetUserID string          `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

type Hub struct {
	// user id -> connections (multi-device)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	// closed when Run returns
	done chan struct{}

	mu sync.RWMutex

	// Redis carries frames to the other instances; nil runs single-instance.
	rdb        *redis.Client
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

// Attach forwards every change published on broker to its user's connections.
// Delivery happens on a separate goroutine; the returned func stops it.
func (h *Hub) Attach(broker *memory.Broker) func() {
	queue := make(chan store.Change, 256)
	stop := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		for {
			select {
			case c := <-queue:
				h.Send(c.UserID, Frame{Type: c.Kind, Key: c.Key, Data: c.Payload})
			case <-stop:
				return
			}
		}
	}()

	unsubscribe := broker.Subscribe(func(c store.Change) {
		if c.UserID == "" {
			return
		}
		select {
		case queue <- c:
		default:
			h.logger.Warn("Hub", "Outbound queue full, dropping change", map[string]interface{}{
				"user_id": c.UserID,
				"kind":    c.Kind,
			})
		}
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			close(stop)
			<-finished
		})
	}
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for userID, clients := range h.clients {
				for _, c := range clients {
					close(c.Send)
				}
				delete(h.clients, userID)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			clients := h.clients[client.UserID]
			for i, c := range clients {
				if c == client {
					h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
					close(client.Send)
					break
				}
			}
			if len(h.clients[client.UserID]) == 0 {
				delete(h.clients, client.UserID)
				h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
			}
			h.mu.Unlock()
		}
	}
}

// Send delivers a frame to every connection of userID on every instance.
func (h *Hub) Send(userID string, frame Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("Hub", "Failed to encode frame", map[string]interface{}{
			"type":  frame.Type,
			"error": err.Error(),
		})
		return
	}

	h.deliverLocal(userID, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterEnvelope{
			Origin:       h.instanceID,
			TargetUserID: userID,
			Message:      data,
		})
		if err := h.rdb.Publish(context.Background(), clusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to publish to cluster", map[string]interface{}{"error": err.Error()})
		}
	}
}

// ClientCount is the number of local connections of userID.
func (h *Hub) ClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) deliverLocal(userID string, data []byte) {
	var slow []*Client

	h.mu.RLock()
	for _, client := range h.clients[userID] {
		select {
		case client.Send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"user_id": userID})
		h.drop(client)
	}
}

func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) drop(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env clusterEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			// Already delivered locally by Send.
			if env.Origin == h.instanceID {
				continue
			}
			h.deliverLocal(env.TargetUserID, env.Message)
		}
	}
}
