package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"mealbox-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// clusterChannel fans dashboard frames out to every API instance.
const clusterChannel = "dashboard_events"

type Hub struct {
	// Registered clients: audience -> connections
	clients map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance communication, nil on a single
	// instance
	rdb *redis.Client

	// Frames this instance published are skipped when they come back from
	// Redis
	instanceId string

	logger logger.ILogger
}

type clusterFrame struct {
	Origin    string          `json:"origin"`
	Audiences []string        `json:"audiences"`
	Frame     json.RawMessage `json:"frame"`
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]map[*Client]struct{}),
		rdb:        rdb,
		instanceId: uuid.NewString(),
		logger:     log,
	}
}

// Run serves registrations until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.Audience] == nil {
				h.clients[client.Audience] = make(map[*Client]struct{})
			}
			h.clients[client.Audience][client] = struct{}{}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{
				"user_id":  client.UserID,
				"audience": client.Audience,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[client.Audience]; ok {
				if _, ok := set[client]; ok {
					delete(set, client)
					close(client.Send)
				}
				if len(set) == 0 {
					delete(h.clients, client.Audience)
				}
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client unregistered", map[string]interface{}{
				"user_id":  client.UserID,
				"audience": client.Audience,
			})
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for audience, set := range h.clients {
		for c := range set {
			close(c.Send)
		}
		delete(h.clients, audience)
	}
}

// Deliver sends frame to local connections of the audiences and publishes
// it for the other instances.
func (h *Hub) Deliver(audiences []string, frame []byte) {
	h.deliverLocal(audiences, frame)

	if h.rdb != nil {
		payload, err := json.Marshal(clusterFrame{Origin: h.instanceId, Audiences: audiences, Frame: frame})
		if err != nil {
			return
		}
		if err := h.rdb.Publish(context.Background(), clusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Redis publish failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

// deliverLocal never blocks: a connection whose buffer is full misses the
// frame and catches up on its next refresh.
func (h *Hub) deliverLocal(audiences []string, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[*Client]struct{})
	for _, audience := range audiences {
		for client := range h.clients[audience] {
			if _, dup := seen[client]; dup {
				continue
			}
			seen[client] = struct{}{}
			select {
			case client.Send <- frame:
			default:
				h.logger.Warn("Hub", "Client send buffer full, dropping frame", map[string]interface{}{
					"user_id":  client.UserID,
					"audience": client.Audience,
				})
			}
		}
	}
}

// ConnectionCount reports the live connections of an audience.
func (h *Hub) ConnectionCount(audience string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[audience])
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
			var payload clusterFrame
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("Hub", "Redis frame parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if payload.Origin == h.instanceId {
				continue
			}
			h.deliverLocal(payload.Audiences, payload.Frame)
		}
	}
}
