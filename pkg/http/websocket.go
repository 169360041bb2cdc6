package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"voicewell-server/pkg/database"
	"voicewell-server/pkg/metrics"
)

// AnalysisUpdate is the message pushed to dashboard clients when a
// recording finishes scoring.
type AnalysisUpdate struct {
	AnalysisID        string    `json:"analysis_id"`
	UserID            string    `json:"user_id"`
	StressScore       int       `json:"stress_score"`
	FatigueScore      int       `json:"fatigue_score"`
	FinalStressScore  int       `json:"final_stress_score"`
	FinalFatigueScore int       `json:"final_fatigue_score"`
	StressLevel       string    `json:"stress_level"`
	FatigueLevel      string    `json:"fatigue_level"`
	Timestamp         time.Time `json:"timestamp"`
}

// wsClient represents a connected WebSocket client
type wsClient struct {
	hub    *AnalysisHub
	conn   *websocket.Conn
	send   chan []byte
	logger *logrus.Logger
	userID string // non-empty when subscribed to a single user
}

// AnalysisHub manages WebSocket clients and broadcasts analysis updates
type AnalysisHub struct {
	logger     *logrus.Logger
	clients    map[*wsClient]bool
	broadcast  chan *AnalysisUpdate
	register   chan *wsClient
	unregister chan *wsClient
	running    bool
	mutex      sync.RWMutex
}

// wsUpgrader configures the WebSocket connection
var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewAnalysisHub creates a new analysis hub
func NewAnalysisHub(logger *logrus.Logger) *AnalysisHub {
	return &AnalysisHub{
		logger:     logger,
		clients:    make(map[*wsClient]bool),
		broadcast:  make(chan *AnalysisUpdate, 16),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
	}
}

// Run starts the hub loop and blocks until the context is canceled
func (h *AnalysisHub) Run(ctx context.Context) {
	h.mutex.Lock()
	h.running = true
	h.mutex.Unlock()
	h.logger.Info("Starting WebSocket analysis hub")

	defer func() {
		h.mutex.Lock()
		h.running = false
		h.mutex.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Shutting down WebSocket analysis hub")
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			if metrics.WSClientsActive != nil {
				metrics.WSClientsActive.Inc()
			}
			h.logger.Info("Client connected to WebSocket")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				if metrics.WSClientsActive != nil {
					metrics.WSClientsActive.Dec()
				}
				h.logger.Info("Client disconnected from WebSocket")
			}
			h.mutex.Unlock()

		case update := <-h.broadcast:
			data, err := json.Marshal(update)
			if err != nil {
				h.logger.WithError(err).Error("Failed to marshal analysis update")
				continue
			}

			h.mutex.RLock()
			for client := range h.clients {
				if client.userID != "" && client.userID != update.UserID {
					continue
				}
				select {
				case client.send <- data:
				default:
					// Slow consumer, drop the update for this client
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// IsRunning reports whether the hub loop is active
func (h *AnalysisHub) IsRunning() bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.running
}

// BroadcastAnalysis pushes one completed analysis to connected clients
func (h *AnalysisHub) BroadcastAnalysis(rec database.AnalysisRecord) {
	if !h.IsRunning() {
		return
	}
	update := &AnalysisUpdate{
		AnalysisID:        rec.ID,
		UserID:            rec.UserID,
		StressScore:       rec.Metrics.StressScore,
		FatigueScore:      rec.Metrics.FatigueScore,
		FinalStressScore:  rec.Combined.FinalStressScore,
		FinalFatigueScore: rec.Combined.FinalFatigueScore,
		StressLevel:       string(rec.Metrics.StressLevel),
		FatigueLevel:      string(rec.Metrics.FatigueLevel),
		Timestamp:         rec.Metrics.AnalyzedAt,
	}
	select {
	case h.broadcast <- update:
	default:
		h.logger.Warn("Analysis hub broadcast buffer full, dropping update")
	}
}

// ServeWS upgrades an HTTP request to a WebSocket subscription. An optional
// user query parameter narrows the stream to one user's analyses.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}

	client := &wsClient{
		hub:    s.hub,
		conn:   conn,
		send:   make(chan []byte, 16),
		logger: s.logger,
		userID: r.URL.Query().Get("user"),
	}

	s.hub.register <- client

	go client.writePump()
	go client.readPump()
}

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// writePump drains the send channel to the connection
func (c *wsClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound messages and detects disconnects
func (c *wsClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.WithError(err).Debug("WebSocket read error")
			}
			return
		}
	}
}
