package events

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/k2302/golang-order-matching/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSHub fans out tick and trade events to WebSocket clients subscribed to
// one symbol, as a second engine.EventSink registered alongside KafkaSink.
// Per-client writes are buffered and non-blocking: a message for a client
// whose buffer is full is dropped for that client rather than allowed to
// block the emitter; the client itself stays connected.
type WSHub struct {
	mu      sync.RWMutex
	clients map[string]map[*wsClient]bool // symbol -> client set
	log     *zap.Logger
}

type wsClient struct {
	conn   *websocket.Conn
	send   chan []byte
	symbol string
}

func NewWSHub(log *zap.Logger) *WSHub {
	return &WSHub{clients: make(map[string]map[*wsClient]bool), log: log}
}

// ServeSymbol upgrades the connection and registers it for the given
// symbol's events until the client disconnects.
func (h *WSHub) ServeSymbol(w http.ResponseWriter, r *http.Request, symbol string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws hub: upgrade failed", zap.Error(err))
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, 256), symbol: symbol}
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

func (h *WSHub) register(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.symbol]
	if !ok {
		set = make(map[*wsClient]bool)
		h.clients[c.symbol] = set
	}
	set[c] = true
}

func (h *WSHub) unregister(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[c.symbol]; ok {
		if _, present := set[c]; present {
			delete(set, c)
			close(c.send)
		}
	}
}

func (h *WSHub) readPump(c *wsClient) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WSHub) writePump(c *wsClient) {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *WSHub) broadcast(symbol string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[symbol] {
		select {
		case c.send <- payload:
		default:
			// slow consumer: drop rather than block the emitter
		}
	}
}

func (h *WSHub) OnTrade(t models.Trade) {
	if b, err := json.Marshal(struct {
		Type string       `json:"type"`
		Data models.Trade `json:"data"`
	}{"trade", t}); err == nil {
		h.broadcast(t.Symbol, b)
	}
}

func (h *WSHub) OnOrderUpdate(models.Order) {}

func (h *WSHub) OnTick(s models.MarketSnapshot) {
	if b, err := json.Marshal(struct {
		Type string                `json:"type"`
		Data models.MarketSnapshot `json:"data"`
	}{"tick", s}); err == nil {
		h.broadcast(s.Symbol, b)
	}
}

func (h *WSHub) OnError(models.ErrorCode, string) {}
