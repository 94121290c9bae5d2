package network

import (
	"errors"
	"fmt"
)

const (
	// CategoryPlainText is a plain UTF-8 text message.
	CategoryPlainText = "PLAIN_TEXT"
	// CategorySystemConversation carries group/conversation metadata changes.
	CategorySystemConversation = "SYSTEM_CONVERSATION"
	// CategorySystemAccountSnapshot carries transfer notifications.
	CategorySystemAccountSnapshot = "SYSTEM_ACCOUNT_SNAPSHOT"
	// CategoryMessageRecall asks the receiver to hide a prior message.
	CategoryMessageRecall = "MESSAGE_RECALL"
)

// AckStatusRead acknowledges delivery-and-display of an inbound message.
const AckStatusRead = "READ"

// ErrStreamRunning is returned by StartStream when a stream loop is already
// active. The supervisor converts it into a stop+restart; it is not a failure.
var ErrStreamRunning = errors.New("network: blaze stream already running")

/// MessageEvent is one inbound push-stream event. Data is left loosely typed:
// the network delivers payloads as plain strings, numeric byte arrays or
// wrapper objects, and the payload package normalizes them at the ingress
// boundary.
type MessageEvent struct {
	MessageID      string `json:"message_id"`
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	Category       string `json:"category"`
	Data           any    `json:"data"`
	CreatedAt      string `json:"created_at"`
}

// Handler receives inbound stream events. SYSTEM_CONVERSATION events go to
// OnConversation, everything else to OnMessage. Nil callbacks are skipped.
type Handler struct {
	OnMessage      func(MessageEvent)
	OnConversation func(MessageEvent)
}

// MessageRequest is one outbound message.
type MessageRequest struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
	Category       string `json:"category"`
	DataBase64     string `json:"data_base64"`
}

// Acknowledgement reports receipt of an inbound message. Best effort.
type Acknowledgement struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

// ParticipantSession identifies one member of a conversation.
type ParticipantSession struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id,omitempty"`
}

// ConversationView is the remote network's full conversation metadata.
type ConversationView struct {
	ConversationID      string               `json:"conversation_id"`
	Name                string               `json:"name"`
	Category            string               `json:"category"`
	CreatedAt           string               `json:"created_at"`
	ParticipantSessions []ParticipantSession `json:"participant_sessions"`
}

// UserView is the remote network's user profile, used by read-side callers to
// resolve display names.
type UserView struct {
	UserID         string `json:"user_id"`
	IdentityNumber string `json:"identity_number"`
	FullName       string `json:"full_name"`
}

// GroupRequest creates a new group conversation.
type GroupRequest struct {
	ConversationID string               `json:"conversation_id"`
	Name           string               `json:"name"`
	Category       string               `json:"category"`
	Participants   []ParticipantSession `json:"participants"`
}

// RemoteError is a structured error response from the remote API.
type RemoteError struct {
	Status      int    `json:"status"`
	Code        int    `json:"code"`
	Description string `json:"description"`
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("network: remote error %d: %s", e.Code, e.Description)
}
