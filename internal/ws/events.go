package ws

import "time"

// Wire protocol. Every frame is a JSON object with an "event" discriminator,
// mirroring the socket.io event names the client already speaks.
const (
	EventJoinRoom       = "join_room"
	EventSendMessage    = "send_message"
	EventReceiveMessage = "receive_message"
	EventDeleteMessage  = "delete_message"
	EventMessageDeleted = "message_deleted"
	EventError          = "error"
)

type inboundEvent struct {
	Event     string `json:"event"`
	Room      string `json:"room,omitempty"`
	Message   string `json:"message,omitempty"`
	MessageID string `json:"messageId,omitempty"`
	// accepted for compatibility with the client payload; the server
	// always uses the authenticated identity instead
	SenderID string `json:"senderId,omitempty"`
}

type receiveMessageEvent struct {
	Event    string    `json:"event"`
	ID       string    `json:"_id"`
	Room     string    `json:"room"`
	Author   string    `json:"author"`
	SenderID string    `json:"senderId"`
	Message  string    `json:"message"`
	Time     time.Time `json:"time"`
}

type messageDeletedEvent struct {
	Event     string `json:"event"`
	Room      string `json:"room"`
	MessageID string `json:"messageId"`
}

type errorEvent struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}
