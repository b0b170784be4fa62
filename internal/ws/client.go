package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"classconnect/internal/auth"
	"classconnect/internal/middleware"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

// Client is one websocket connection and its transient room memberships.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	claims *auth.Claims
	send   chan []byte

	mu    sync.Mutex
	rooms map[string]bool
}

func (c *Client) inRoom(roomID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms[roomID]
}

// enqueue hands a frame to the write pump without blocking the broadcaster.
// A consumer whose buffer is full loses the frame.
func (c *Client) enqueue(payload []byte) {
	select {
	case c.send <- payload:
	default:
		c.hub.log.Warn("dropping frame for slow consumer", zap.String("user", c.claims.UserID))
	}
}

func (c *Client) sendEvent(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.enqueue(payload)
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		close(c.send)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug("read error", zap.Error(err))
			}
			return
		}

		var ev inboundEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.sendEvent(errorEvent{Event: EventError, Message: "malformed event"})
			continue
		}

		ctx := context.Background()
		switch ev.Event {
		case EventJoinRoom:
			c.hub.JoinRoom(ctx, c, ev.Room)
		case EventSendMessage:
			c.hub.SendMessage(ctx, c, ev.Room, ev.Message)
		case EventDeleteMessage:
			c.hub.NotifyDeleted(c, ev.Room, ev.MessageID)
		default:
			c.sendEvent(errorEvent{Event: EventError, Message: "unknown event"})
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Handler upgrades an authenticated HTTP request to a broker connection.
// The token travels in the Authorization header, the access_token cookie,
// or a token query parameter (browser WebSocket API cannot set headers).
func Handler(hub *Hub, secret string, clientURL string) http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == clientURL
		},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := middleware.BearerToken(r)
		if raw == "" {
			raw = r.URL.Query().Get("token")
		}
		claims, err := auth.ParseToken(raw, secret)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.log.Debug("upgrade failed", zap.Error(err))
			return
		}

		c := &Client{
			hub:    hub,
			conn:   conn,
			claims: claims,
			send:   make(chan []byte, sendBufferSize),
			rooms:  make(map[string]bool),
		}
		hub.log.Info("client connected", zap.String("user", claims.UserID))

		go c.writePump()
		go c.readPump()
	})
}
