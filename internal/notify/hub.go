package notify

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/mock-auction/internal/model"
)

// HubObserver records hub activity (metrics).
type HubObserver interface {
	ObserveNotification(delivered, dropped int)
	SetClients(n int)
}

// Hub is a WebSocket fan-out of sale events. It implements Sink and
// http.Handler.
type Hub struct {
	cfg      HubConfig
	logger   *slog.Logger
	observer HubObserver
	upgrader websocket.Upgrader
	now      func() time.Time

	mu      sync.RWMutex
	clients map[*hubClient]struct{}
	last    *Event
	closed  bool

	wg sync.WaitGroup
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *hubClient) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// NewHub creates a Hub. observer may be nil.
func NewHub(cfg HubConfig, observer HubObserver, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultHubConfig()
	if cfg.ClientBuffer < 1 {
		cfg.ClientBuffer = def.ClientBuffer
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = def.PingInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.DisplayFor <= 0 {
		cfg.DisplayFor = def.DisplayFor
	}

	return &Hub{
		cfg:      cfg,
		logger:   logger,
		observer: observer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Display screens are served from other origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		now:     time.Now,
		clients: make(map[*hubClient]struct{}),
	}
}

// Notify pushes a sale to every connected client without blocking. A client
// whose queue is full misses the event.
func (h *Hub) Notify(notice model.SaleNotice) {
	ev := NewEvent(notice, h.now(), h.cfg.DisplayFor)
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal sale event", "error", err)
		return
	}

	h.mu.Lock()
	h.last = &ev
	clients := make([]*hubClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	delivered, dropped := 0, 0
	for _, c := range clients {
		select {
		case c.send <- data:
			delivered++
		default:
			dropped++
		}
	}

	if dropped > 0 {
		h.logger.Warn("client buffer full, dropping sale event",
			"event_id", ev.ID,
			"dropped", dropped,
		)
	}
	if h.observer != nil {
		h.observer.ObserveNotification(delivered, dropped)
	}
}

// ServeHTTP upgrades the request and registers the client. A client that
// connects while the last popup is still showing receives it immediately.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &hubClient{
		conn: conn,
		send: make(chan []byte, h.cfg.ClientBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second),
		)
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	last := h.last
	h.mu.Unlock()

	if last != nil && !last.Expired(h.now()) {
		if data, err := json.Marshal(last); err == nil {
			c.send <- data
		}
	}

	if h.observer != nil {
		h.observer.SetClients(n)
	}
	h.logger.Debug("notification client connected", "remote", r.RemoteAddr, "clients", n)

	h.wg.Add(2)
	go h.writePump(c)
	go h.readPump(c)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Last returns the most recent event, if any.
func (h *Hub) Last() (Event, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.last == nil {
		return Event{}, false
	}
	return *h.last, true
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	clients := make([]*hubClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*hubClient]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second),
		)
		c.close()
	}
	h.wg.Wait()

	if h.observer != nil {
		h.observer.SetClients(0)
	}
	h.logger.Info("notification hub closed", "clients", len(clients))
	return nil
}

func (h *Hub) remove(c *hubClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	c.close()
	if ok {
		if h.observer != nil {
			h.observer.SetClients(n)
		}
		h.logger.Debug("notification client disconnected", "clients", n)
	}
}

// writePump sends queued events and periodic pings.
func (h *Hub) writePump(c *hubClient) {
	defer h.wg.Done()
	defer h.remove(c)

	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("write to notification client failed", "error", err)
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(h.cfg.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				h.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

// readPump discards client frames; it exists to process control frames
// and notice disconnects.
func (h *Hub) readPump(c *hubClient) {
	defer h.wg.Done()
	defer h.remove(c)

	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
