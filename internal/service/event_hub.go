package service

import (
	"learning_dashboard_backend/internal/model"
	"learning_dashboard_backend/pkg/logger"
	"learning_dashboard_backend/pkg/monitoring"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventClient 一个订阅者；Conn 为空时是进程内订阅
type EventClient struct {
	Hub     *EventHub
	Conn    *websocket.Conn
	Send    chan []byte
	Limiter *rate.Limiter
}

// EventHub 把"数据已变化"信号广播给所有订阅者，发送不阻塞，慢消费者会丢消息
type EventHub struct {
	mu      sync.RWMutex
	clients map[*EventClient]bool
	stopped bool
	Now     func() time.Time
}

func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[*EventClient]bool),
		Now:     time.Now,
	}
}

func (h *EventHub) add(c *EventClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return false
	}
	h.clients[c] = true
	monitoring.EventSubscribers.Set(float64(len(h.clients)))
	return true
}

func (h *EventHub) remove(c *EventClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
		monitoring.EventSubscribers.Set(float64(len(h.clients)))
	}
}

// Subscribe 进程内订阅，返回的取消函数会关闭通道
func (h *EventHub) Subscribe() (<-chan []byte, func()) {
	c := &EventClient{Hub: h, Send: make(chan []byte, sendBuffer)}
	if !h.add(c) {
		close(c.Send)
		return c.Send, func() {}
	}
	return c.Send, func() { h.remove(c) }
}

func (h *EventHub) Publish(eventType string) {
	payload, err := json.Marshal(model.Event{Type: eventType, At: h.Now().UTC()})
	if err != nil {
		logger.Log.Error("Event marshal error", zap.Error(err))
		return
	}

	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.Send <- payload:
		default:
		}
	}
	h.mu.RUnlock()
	monitoring.EventCounter.WithLabelValues(eventType).Inc()
}

func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop 关闭所有订阅
func (h *EventHub) Stop() {
	h.mu.Lock()
	h.stopped = true
	for c := range h.clients {
		close(c.Send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
	monitoring.EventSubscribers.Set(0)
	logger.Log.Info("Event hub stopped")
}

// readPump 客户端只会发心跳，消息内容丢弃
func (c *EventClient) readPump() {
	defer func() {
		c.Hub.remove(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warn("WebSocket unexpected close", zap.Error(err))
			}
			return
		}
		// 上行只允许心跳级别的流量，超出速率直接断开
		if !c.Limiter.Allow() {
			logger.Log.Warn("WebSocket client exceeded rate limit, closing", zap.String("remote", c.Conn.RemoteAddr().String()))
			c.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "rate limit exceeded"),
				time.Now().Add(writeWait))
			return
		}
	}
}

func (c *EventClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func ServeWs(hub *EventHub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}
	client := &EventClient{
		Hub:     hub,
		Conn:    conn,
		Send:    make(chan []byte, sendBuffer),
		Limiter: rate.NewLimiter(rate.Limit(5), 10), // 每秒5条，允许突发10条
	}
	if !hub.add(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
