package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// UpsertConversation inserts a conversation or overwrites its mutable fields.
// On conflict, name, category, participants and updated_at are replaced with
// whatever the caller passes; created_at is preserved. The "never blank a
// known participant list" policy belongs to the synchronizer, not here.
func (s *Store) UpsertConversation(conversation Conversation) error {
	if conversation.ConversationID == "" {
		return errors.New("conversation_id is required")
	}
	if conversation.Name == "" {
		return errors.New("name is required")
	}
	if conversation.Category == "" {
		return errors.New("category is required")
	}
	if conversation.CreatedAt == "" {
		conversation.CreatedAt = NowISO()
	}
	if conversation.UpdatedAt == "" {
		conversation.UpdatedAt = conversation.CreatedAt
	}

	participants, err := encodeParticipants(conversation.Participants)
	if err != nil {
		return fmt.Errorf("encode participants for %q: %w", conversation.ConversationID, err)
	}

	_, err = s.db.Exec(
		`INSERT INTO conversations (
			conversation_id,
			name,
			category,
			participants,
			created_at,
			updated_at
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(conversation_id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			participants = excluded.participants,
			updated_at = excluded.updated_at`,
		conversation.ConversationID,
		conversation.Name,
		conversation.Category,
		participants,
		conversation.CreatedAt,
		conversation.UpdatedAt,
	)
	if err != nil {
		return storageErr(fmt.Sprintf("upsert conversation %q", conversation.ConversationID), err)
	}

	return nil
}

// GetConversation fetches one conversation by ID.
func (s *Store) GetConversation(conversationID string) (*Conversation, error) {
	if conversationID == "" {
		return nil, errors.New("conversation_id is required")
	}

	row := s.db.QueryRow(
		`SELECT conversation_id, name, category, participants, created_at, updated_at
		FROM conversations
		WHERE conversation_id = ?`,
		conversationID,
	)

	conversation, err := scanConversation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr(fmt.Sprintf("get conversation %q", conversationID), err)
	}

	return conversation, nil
}

// ListConversations returns all conversations, most recently updated first.
func (s *Store) ListConversations() ([]Conversation, error) {
	rows, err := s.db.Query(
		`SELECT conversation_id, name, category, participants, created_at, updated_at
		FROM conversations
		ORDER BY updated_at DESC, conversation_id`,
	)
	if err != nil {
		return nil, storageErr("list conversations", err)
	}
	defer rows.Close()

	conversations := make([]Conversation, 0)
	for rows.Next() {
		conversation, err := scanConversation(rows)
		if err != nil {
			return nil, storageErr("scan conversation row", err)
		}
		conversations = append(conversations, *conversation)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate conversation rows", err)
	}

	return conversations, nil
}

func scanConversation(row scanner) (*Conversation, error) {
	var (
		conversation Conversation
		participants string
	)

	if err := row.Scan(
		&conversation.ConversationID,
		&conversation.Name,
		&conversation.Category,
		&participants,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	); err != nil {
		return nil, err
	}

	conversation.Participants = decodeParticipants(participants)
	return &conversation, nil
}

func encodeParticipants(participants []string) (string, error) {
	if participants == nil {
		participants = []string{}
	}
	raw, err := json.Marshal(participants)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// decodeParticipants tolerates malformed stored lists rather than failing a
// whole read.
func decodeParticipants(value string) []string {
	if value == "" {
		return []string{}
	}
	var participants []string
	if err := json.Unmarshal([]byte(value), &participants); err != nil || participants == nil {
		return []string{}
	}
	return participants
}
