package domain

import (
	"encoding/json"
	"time"
)

// Role identifies who authored a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry in a session's message list. ID is stable across
// streaming updates.
type ChatMessage struct {
	ID        string
	Role      Role
	Content   Content
	Timestamp time.Time
}

// EnvelopeType is the outer frame type on the chat socket.
type EnvelopeType string

const (
	EnvelopeUserMessage  EnvelopeType = "user_message"
	EnvelopeAgentMessage EnvelopeType = "agent_message"
	EnvelopeSystem       EnvelopeType = "system"
)

// Envelope is one WebSocket frame in either direction.
type Envelope struct {
	Type      EnvelopeType    `json:"type"`
	Content   json.RawMessage `json:"content,omitempty"`
	MessageID string          `json:"message_id,omitempty"`
	UserID    string          `json:"user_id,omitempty"`
}

// Event is one server-sent event on the session-list stream.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Event types published on the session-list stream.
const (
	EventPing               = "ping"
	EventSessionCreated     = "session_created"
	EventSessionUpdated     = "session_updated"
	EventSessionNameUpdated = "session_name_updated"
	EventSessionDeleted     = "session_deleted"
)
