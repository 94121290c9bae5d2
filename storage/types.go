package storage

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound indicates a requested row does not exist.
	ErrNotFound = errors.New("storage: record not found")
)

const (
	// DirectionIncoming marks messages delivered by the push stream.
	DirectionIncoming = "incoming"
	// DirectionOutgoing marks messages sent from this client.
	DirectionOutgoing = "outgoing"
)

const (
	// StatusReceived is the initial status of an inbound message.
	StatusReceived = "received"
	// StatusSent is the status of a locally echoed outbound message.
	StatusSent = "sent"
	// StatusWithdrawn marks a recalled message; content stays verbatim.
	StatusWithdrawn = "withdrawn"
)

const (
	// CategoryGroup is the conversation category for group chats.
	CategoryGroup = "GROUP"
	// CategoryContact is the conversation category for direct chats.
	CategoryContact = "CONTACT"
)

// WithdrawnPlaceholder is substituted on the read path for withdrawn rows.
const WithdrawnPlaceholder = "[recalled]"

// isoLayout is a fixed-width UTC layout so lexicographic order in SQLite
// matches chronological order.
const isoLayout = "2006-01-02T15:04:05.000Z"

// Conversation is the SQLite representation of a local conversation mirror row.
type Conversation struct {
	ConversationID string
	Name           string
	Category       string
	Participants   []string
	CreatedAt      string
	UpdatedAt      string
}

// Message is the SQLite representation of a mirrored message.
type Message struct {
	MessageID      string
	ConversationID string
	UserID         string
	Category       string
	Content        string
	CreatedAt      string
	Direction      string
	Status         string
}

// DisplayContent returns content for rendering, substituting a tombstone
// for withdrawn messages. Stored content is never rewritten.
func (m Message) DisplayContent() string {
	if m.Status == StatusWithdrawn {
		return WithdrawnPlaceholder
	}
	return m.Content
}

// Setting is one persisted key/value pair.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt string
}

// StorageError wraps failures coming from the underlying SQLite engine.
// Validation errors are returned plain; engine errors always carry this kind.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func validateDirection(direction string) error {
	switch direction {
	case DirectionIncoming, DirectionOutgoing:
		return nil
	default:
		return fmt.Errorf("invalid message direction %q", direction)
	}
}

func validateStatus(status string) error {
	switch status {
	case StatusReceived, StatusSent, StatusWithdrawn:
		return nil
	default:
		return fmt.Errorf("invalid message status %q", status)
	}
}

// NowISO returns the current UTC time in the store's timestamp layout.
func NowISO() string {
	return FormatISO(time.Now())
}

// FormatISO renders a time in the store's fixed-width UTC layout.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// NormalizeISO re-renders an RFC 3339 timestamp in the store layout.
// Empty input becomes the current time; unparseable input passes through
// untouched so remote timestamps are never dropped.
func NormalizeISO(value string) string {
	if value == "" {
		return NowISO()
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return value
	}
	return FormatISO(t)
}
