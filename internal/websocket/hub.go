package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"noet-be/internal/pkg/logger"
	"noet-be/pkg/events"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hub fans change events out to every connection of the affected user.
// With Redis configured, events are mirrored on a cluster channel so that
// clients connected to other instances see them too.
type Hub struct {
	// userId -> connections (one per tab or device)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	rdb            *redis.Client
	clusterChannel string
	// instanceId tags mirrored messages so an instance skips its own
	instanceId string

	logger logger.ILogger
}

type envelope struct {
	Type string             `json:"type"`
	Data events.ChangeEvent `json:"data"`
}

type clusterMessage struct {
	Origin       string          `json:"origin"`
	TargetUserId string          `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

func NewHub(rdb *redis.Client, clusterChannel string, log logger.ILogger) *Hub {
	return &Hub{
		clients:        make(map[string][]*Client),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		done:           make(chan struct{}),
		rdb:            rdb,
		clusterChannel: clusterChannel,
		instanceId:     uuid.NewString(),
		logger:         log,
	}
}

// Run processes registrations until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserId] = append(h.clients[client.UserId], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserId})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[client.UserId]
	for i, c := range clients {
		if c == client {
			h.clients[client.UserId] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.UserId]) == 0 {
		delete(h.clients, client.UserId)
		h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserId})
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userId, clients := range h.clients {
		for _, c := range clients {
			close(c.Send)
		}
		delete(h.clients, userId)
	}
}

// Deliver sends event to the local connections of its user and mirrors it
// to the cluster channel. Events without a user go to everyone.
func (h *Hub) Deliver(event events.ChangeEvent) {
	data, err := json.Marshal(envelope{Type: "change", Data: event})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode change event", map[string]interface{}{"error": err})
		return
	}

	h.sendLocal(event.UserId, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterMessage{
			Origin:       h.instanceId,
			TargetUserId: event.UserId,
			Message:      data,
		})
		if err := h.rdb.Publish(context.Background(), h.clusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to mirror change event", map[string]interface{}{"error": err.Error()})
		}
	}
}

// ConnectedClients returns the number of open connections for userId.
func (h *Hub) ConnectedClients(userId string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userId])
}

// sendLocal holds the read lock while sending so that no channel is closed
// underneath it; the sends never block.
func (h *Hub) sendLocal(userId string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var targets []*Client
	if userId == "" {
		for _, clients := range h.clients {
			targets = append(targets, clients...)
		}
	} else {
		targets = h.clients[userId]
	}

	for _, client := range targets {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping connection", map[string]interface{}{"user_id": client.UserId})
			go h.leave(client)
		}
	}
}

func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, h.clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload clusterMessage
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
			continue
		}
		if payload.Origin == h.instanceId {
			continue
		}
		h.sendLocal(payload.TargetUserId, payload.Message)
	}
}
