package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 200
)

// AddMessage upserts one message keyed by message_id. Re-delivery of the same
// ID updates content and status only; created_at and direction are immutable.
// The owning conversation's updated_at is bumped to the message's created_at
// on every write, even when that timestamp is older than the current value
// (out-of-order delivery is deliberately not guarded against).
func (s *Store) AddMessage(message Message) error {
	if message.MessageID == "" {
		return errors.New("message_id is required")
	}
	if message.ConversationID == "" {
		return errors.New("conversation_id is required")
	}
	if message.CreatedAt == "" {
		message.CreatedAt = NowISO()
	}
	if message.Direction == "" {
		message.Direction = DirectionIncoming
	}
	if err := validateDirection(message.Direction); err != nil {
		return err
	}
	if message.Status == "" {
		message.Status = StatusReceived
	}
	if err := validateStatus(message.Status); err != nil {
		return err
	}

	_, err := s.db.Exec(
		`INSERT INTO messages (
			message_id,
			conversation_id,
			user_id,
			category,
			content,
			created_at,
			direction,
			status,
			updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(message_id) DO UPDATE SET
			content = excluded.content,
			status = excluded.status,
			updated_at = excluded.updated_at`,
		message.MessageID,
		message.ConversationID,
		message.UserID,
		message.Category,
		message.Content,
		message.CreatedAt,
		message.Direction,
		message.Status,
		NowISO(),
	)
	if err != nil {
		return storageErr(fmt.Sprintf("upsert message %q", message.MessageID), err)
	}

	_, err = s.db.Exec(
		`UPDATE conversations
		SET updated_at = ?
		WHERE conversation_id = ?`,
		message.CreatedAt,
		message.ConversationID,
	)
	if err != nil {
		return storageErr(fmt.Sprintf("bump conversation %q", message.ConversationID), err)
	}

	return nil
}

// ListMessages returns a conversation's messages ordered oldest first.
func (s *Store) ListMessages(conversationID string) ([]Message, error) {
	if conversationID == "" {
		return nil, errors.New("conversation_id is required")
	}

	rows, err := s.db.Query(
		`SELECT message_id, conversation_id, user_id, category, content, created_at, direction, status
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at ASC, message_id`,
		conversationID,
	)
	if err != nil {
		return nil, storageErr(fmt.Sprintf("list messages for %q", conversationID), err)
	}
	defer rows.Close()

	return collectMessages(rows)
}

// ListRecentMessages returns the newest messages across all conversations.
// A non-positive limit falls back to 50; the limit is clamped to [1, 200].
func (s *Store) ListRecentMessages(limit int) ([]Message, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	rows, err := s.db.Query(
		`SELECT message_id, conversation_id, user_id, category, content, created_at, direction, status
		FROM messages
		ORDER BY created_at DESC, message_id
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, storageErr("list recent messages", err)
	}
	defer rows.Close()

	return collectMessages(rows)
}

// MarkMessageWithdrawn flips status to withdrawn, keeping content verbatim.
// Unknown message IDs are a no-op, not an error: a recall can arrive before
// (or without) the message it targets.
func (s *Store) MarkMessageWithdrawn(messageID string) error {
	if messageID == "" {
		return errors.New("message_id is required")
	}

	_, err := s.db.Exec(
		`UPDATE messages
		SET status = ?, updated_at = ?
		WHERE message_id = ?`,
		StatusWithdrawn,
		NowISO(),
		messageID,
	)
	if err != nil {
		return storageErr(fmt.Sprintf("mark message %q withdrawn", messageID), err)
	}

	return nil
}

// GetMessage fetches one message by message ID.
func (s *Store) GetMessage(messageID string) (*Message, error) {
	if messageID == "" {
		return nil, errors.New("message_id is required")
	}

	row := s.db.QueryRow(
		`SELECT message_id, conversation_id, user_id, category, content, created_at, direction, status
		FROM messages
		WHERE message_id = ?`,
		messageID,
	)

	message, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr(fmt.Sprintf("get message %q", messageID), err)
	}

	return message, nil
}

func collectMessages(rows *sql.Rows) ([]Message, error) {
	messages := make([]Message, 0)
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, storageErr("scan message row", err)
		}
		messages = append(messages, *message)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate message rows", err)
	}

	return messages, nil
}

func scanMessage(row scanner) (*Message, error) {
	var message Message
	if err := row.Scan(
		&message.MessageID,
		&message.ConversationID,
		&message.UserID,
		&message.Category,
		&message.Content,
		&message.CreatedAt,
		&message.Direction,
		&message.Status,
	); err != nil {
		return nil, err
	}
	return &message, nil
}
