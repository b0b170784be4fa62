// Package ws is the realtime room broker: ephemeral room membership keyed by
// appointment id, persist-then-broadcast fan-out, and nothing durable of its
// own.
package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"classconnect/internal/model"
)

// Store is the persistence the broker needs: appointment lookup for the join
// gate, message persistence, and sender name resolution.
type Store interface {
	AppointmentByID(ctx context.Context, id string) (*model.Appointment, error)
	CreateMessage(ctx context.Context, m *model.Message) error
	UserByID(ctx context.Context, id string) (*model.User, error)
}

type room struct {
	// mu serializes persist+broadcast, so per-room delivery order equals
	// persistence-completion order
	mu      sync.Mutex
	clients map[*Client]bool
}

// Hub is the connection registry. Created at server start and injected;
// all membership state lives here, guarded by mu.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]*room
	store Store
	log   *zap.Logger
}

func NewHub(store Store, log *zap.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]*room),
		store: store,
		log:   log,
	}
}

func (h *Hub) getRoom(id string) *room {
	h.mu.Lock()
	defer h.mu.Unlock()
	rm, ok := h.rooms[id]
	if !ok {
		rm = &room{clients: make(map[*Client]bool)}
		h.rooms[id] = rm
	}
	return rm
}

// JoinRoom admits a connection after verifying the principal belongs to the
// appointment. Joining another room does not leave the current one.
func (h *Hub) JoinRoom(ctx context.Context, c *Client, roomID string) {
	a, err := h.store.AppointmentByID(ctx, roomID)
	if err != nil {
		c.sendEvent(errorEvent{Event: EventError, Message: "Appointment not found"})
		return
	}
	if c.claims.UserID != a.StudentID && c.claims.UserID != a.TeacherID {
		c.sendEvent(errorEvent{Event: EventError, Message: "You do not have permission to join this room"})
		return
	}

	rm := h.getRoom(roomID)
	rm.mu.Lock()
	rm.clients[c] = true
	rm.mu.Unlock()

	c.mu.Lock()
	c.rooms[roomID] = true
	c.mu.Unlock()

	h.log.Info("joined room", zap.String("room", roomID), zap.String("user", c.claims.UserID))
}

// SendMessage persists the utterance, then fans it out to every member of
// the room, the sender included. If persistence fails the message is logged
// and dropped; nothing is broadcast.
func (h *Hub) SendMessage(ctx context.Context, c *Client, roomID, text string) {
	if text == "" {
		c.sendEvent(errorEvent{Event: EventError, Message: "message text is required"})
		return
	}
	if !c.inRoom(roomID) {
		c.sendEvent(errorEvent{Event: EventError, Message: "join the room first"})
		return
	}

	rm := h.getRoom(roomID)
	rm.mu.Lock()
	defer rm.mu.Unlock()

	m := &model.Message{
		ID:            uuid.New().String(),
		AppointmentID: roomID,
		SenderID:      c.claims.UserID,
		Text:          text,
	}
	if err := h.store.CreateMessage(ctx, m); err != nil {
		h.log.Error("message persist failed", zap.String("room", roomID), zap.Error(err))
		return
	}

	author := ""
	if u, err := h.store.UserByID(ctx, c.claims.UserID); err == nil {
		author = u.Name
	}

	payload, err := json.Marshal(receiveMessageEvent{
		Event:    EventReceiveMessage,
		ID:       m.ID,
		Room:     roomID,
		Author:   author,
		SenderID: m.SenderID,
		Message:  m.Text,
		Time:     m.CreatedAt,
	})
	if err != nil {
		h.log.Error("marshal broadcast", zap.Error(err))
		return
	}
	for member := range rm.clients {
		member.enqueue(payload)
	}
}

// NotifyDeleted tells the other room members to drop a message. The
// requester already removed it locally and is excluded.
func (h *Hub) NotifyDeleted(c *Client, roomID, messageID string) {
	if !c.inRoom(roomID) {
		c.sendEvent(errorEvent{Event: EventError, Message: "join the room first"})
		return
	}

	payload, err := json.Marshal(messageDeletedEvent{
		Event:     EventMessageDeleted,
		Room:      roomID,
		MessageID: messageID,
	})
	if err != nil {
		h.log.Error("marshal broadcast", zap.Error(err))
		return
	}

	rm := h.getRoom(roomID)
	rm.mu.Lock()
	defer rm.mu.Unlock()
	for member := range rm.clients {
		if member == c {
			continue
		}
		member.enqueue(payload)
	}
}

// unregister drops the connection from every room it joined.
func (h *Hub) unregister(c *Client) {
	c.mu.Lock()
	joined := make([]string, 0, len(c.rooms))
	for id := range c.rooms {
		joined = append(joined, id)
	}
	c.mu.Unlock()

	for _, id := range joined {
		rm := h.getRoom(id)
		rm.mu.Lock()
		delete(rm.clients, c)
		rm.mu.Unlock()
	}
}
