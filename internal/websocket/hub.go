package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jungianjournals/journals-backend/logger"
	"github.com/jungianjournals/journals-backend/types"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// Hub tracks the dashboard connections. Every connection owns one
// subscription on the activity publisher and receives all site activity.
type Hub struct {
	log          *zap.SugaredLogger
	publisher    ActivitySubscriber
	connections  map[string]*Connection // connection id -> connection
	mu           sync.RWMutex
	shutdownOnce sync.Once
	sendBuffer   int
	pingInterval time.Duration
	writeTimeout time.Duration
}

// ActivitySubscriber is the part of types.ActivityPublisher the hub needs.
type ActivitySubscriber interface {
	Subscribe(ctx context.Context, subscriberID string, filters ...types.ActivityType) (<-chan types.Activity, error)
	Unsubscribe(ctx context.Context, subscriberID string) error
	Recent(ctx context.Context, limit int) ([]types.Activity, error)
}

// Connection is one admin browser tab.
type Connection struct {
	ID      string
	AdminID string
	Conn    *websocket.Conn
	cancel  context.CancelFunc
	sendCh  chan types.Activity
	mu      sync.Mutex
	closed  bool
}

// HubConfig contains configuration options for the Hub.
type HubConfig struct {
	PingInterval time.Duration
	WriteTimeout time.Duration
	SendBuffer   int
}

// DefaultHubConfig returns sensible defaults for Hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		PingInterval: 30 * time.Second,
		WriteTimeout: 10 * time.Second,
		SendBuffer:   64,
	}
}

// NewHub creates a new WebSocket hub.
func NewHub(publisher ActivitySubscriber, cfg ...HubConfig) *Hub {
	config := DefaultHubConfig()
	if len(cfg) > 0 {
		config = cfg[0]
	}
	if config.SendBuffer <= 0 {
		config.SendBuffer = DefaultHubConfig().SendBuffer
	}

	return &Hub{
		log:          logger.GetLogger().Named("activity_hub"),
		publisher:    publisher,
		connections:  make(map[string]*Connection),
		sendBuffer:   config.SendBuffer,
		pingInterval: config.PingInterval,
		writeTimeout: config.WriteTimeout,
	}
}

// Register subscribes a new connection to the activity stream. Activities
// are forwarded to the connection's send channel until it is unregistered.
func (h *Hub) Register(ctx context.Context, adminID string, conn *websocket.Conn) (*Connection, error) {
	subCtx, cancel := context.WithCancel(ctx)
	connection := &Connection{
		ID:      uuid.NewString(),
		AdminID: adminID,
		Conn:    conn,
		cancel:  cancel,
		sendCh:  make(chan types.Activity, h.sendBuffer),
	}

	activityCh, err := h.publisher.Subscribe(subCtx, connection.ID)
	if err != nil {
		cancel()
		h.log.Errorw("Failed to subscribe dashboard connection",
			"adminID", adminID,
			"error", err)
		return nil, err
	}

	h.mu.Lock()
	h.connections[connection.ID] = connection
	h.mu.Unlock()

	go h.forward(subCtx, connection, activityCh)

	h.log.Infow("Dashboard connection registered",
		"adminID", adminID,
		"connectionID", connection.ID)
	return connection, nil
}

func (h *Hub) forward(ctx context.Context, conn *Connection, activityCh <-chan types.Activity) {
	for {
		select {
		case <-ctx.Done():
			return
		case activity, ok := <-activityCh:
			if !ok {
				return
			}
			if !conn.offer(activity) {
				h.log.Warnw("Connection send buffer full, dropping activity",
					"connectionID", conn.ID,
					"activityType", activity.Type)
			}
		}
	}
}

// offer queues an activity without blocking. It reports false when the
// buffer is full; a closed connection silently drops it.
func (c *Connection) offer(activity types.Activity) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.sendCh <- activity:
		return true
	default:
		return false
	}
}

// Unregister removes a connection and its subscription.
func (h *Hub) Unregister(connectionID string) {
	h.mu.Lock()
	conn, ok := h.connections[connectionID]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.connections, connectionID)
	h.mu.Unlock()

	h.closeConnection(conn, "unregistered")
}

// closeConnection closes a connection and cleans up resources.
func (h *Hub) closeConnection(conn *Connection, reason string) {
	conn.mu.Lock()
	if conn.closed {
		conn.mu.Unlock()
		return
	}
	conn.closed = true
	conn.cancel()
	close(conn.sendCh)
	conn.mu.Unlock()

	_ = h.publisher.Unsubscribe(context.Background(), conn.ID)
	if conn.Conn != nil {
		_ = conn.Conn.Close(websocket.StatusNormalClosure, reason)
	}

	h.log.Infow("Dashboard connection closed",
		"connectionID", conn.ID,
		"reason", reason)
}

// Recent returns the latest activities for the connect snapshot.
func (h *Hub) Recent(ctx context.Context, limit int) []types.Activity {
	recent, err := h.publisher.Recent(ctx, limit)
	if err != nil {
		h.log.Warnw("Failed to load recent activities", "error", err)
		return []types.Activity{}
	}
	if recent == nil {
		return []types.Activity{}
	}
	return recent
}

// GetConnectionCount returns the number of active connections.
func (h *Hub) GetConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Shutdown closes every connection.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.shutdownOnce.Do(func() {
		h.mu.Lock()
		connections := make([]*Connection, 0, len(h.connections))
		for _, conn := range h.connections {
			connections = append(connections, conn)
		}
		h.connections = make(map[string]*Connection)
		h.mu.Unlock()

		for _, conn := range connections {
			h.closeConnection(conn, "server shutdown")
		}
	})

	h.log.Info("Activity hub shutdown complete")
	return nil
}

// SendChannel returns the send channel for a connection.
// This is used by the handler to write activities to the WebSocket.
func (c *Connection) SendChannel() <-chan types.Activity {
	return c.sendCh
}

// IsClosed returns whether the connection is closed.
func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
