package mirror

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"mixterm/network"
	"mixterm/storage"
)

// SendText delivers a plain text message and, only after the remote side
// accepted it, records the local outgoing echo. A remote failure leaves the
// store untouched.
func (s *Service) SendText(ctx context.Context, conversationID, text string) (*storage.Message, error) {
	conversationID = strings.TrimSpace(conversationID)
	text = strings.TrimSpace(text)
	if conversationID == "" {
		return nil, errors.New("conversation id is required")
	}
	if text == "" {
		return nil, errors.New("message text is required")
	}

	record := storage.Message{
		MessageID:      uuid.NewString(),
		ConversationID: conversationID,
		UserID:         s.appID,
		Category:       network.CategoryPlainText,
		Content:        text,
		CreatedAt:      storage.NowISO(),
		Direction:      storage.DirectionOutgoing,
		Status:         storage.StatusSent,
	}

	request := network.MessageRequest{
		ConversationID: conversationID,
		MessageID:      record.MessageID,
		Category:       network.CategoryPlainText,
		DataBase64:     base64.RawURLEncoding.EncodeToString([]byte(text)),
	}
	if err := s.client.SendOne(ctx, request); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	if err := s.store.AddMessage(record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Withdraw sends a recall for a previously sent message and, on remote
// success, flips the local row to withdrawn. The recall travels under a fresh
// message id; the payload names the target.
func (s *Service) Withdraw(ctx context.Context, conversationID, messageID string) error {
	conversationID = strings.TrimSpace(conversationID)
	messageID = strings.TrimSpace(messageID)
	if conversationID == "" {
		return errors.New("conversation id is required")
	}
	if messageID == "" {
		return errors.New("message id is required")
	}

	body, err := json.Marshal(map[string]string{"message_id": messageID})
	if err != nil {
		return fmt.Errorf("encode recall payload: %w", err)
	}

	request := network.MessageRequest{
		ConversationID: conversationID,
		MessageID:      uuid.NewString(),
		Category:       network.CategoryMessageRecall,
		DataBase64:     base64.RawURLEncoding.EncodeToString(body),
	}
	if err := s.client.SendOne(ctx, request); err != nil {
		return fmt.Errorf("send recall: %w", err)
	}

	return s.store.MarkMessageWithdrawn(messageID)
}

// CreateGroup creates a group conversation remotely and mirrors it locally.
// Response fields win over the request values when the remote side returns
// them.
func (s *Service) CreateGroup(ctx context.Context, name string, participantIDs []string) (*storage.Conversation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("group name is required")
	}
	participants := normalizeParticipantIDs(participantIDs)
	if len(participants) == 0 {
		return nil, errors.New("at least one participant is required")
	}

	conversationID := uuid.NewString()
	sessions := make([]network.ParticipantSession, 0, len(participants))
	for _, id := range participants {
		sessions = append(sessions, network.ParticipantSession{UserID: id})
	}

	view, err := s.client.CreateGroupConversation(ctx, network.GroupRequest{
		ConversationID: conversationID,
		Name:           name,
		Category:       storage.CategoryGroup,
		Participants:   sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}

	record := storage.Conversation{
		ConversationID: conversationID,
		Name:           name,
		Category:       storage.CategoryGroup,
		Participants:   participants,
		CreatedAt:      storage.NowISO(),
	}
	if view != nil {
		if view.ConversationID != "" {
			record.ConversationID = view.ConversationID
		}
		if view.Name != "" {
			record.Name = view.Name
		}
		if view.Category != "" {
			record.Category = view.Category
		}
		if view.CreatedAt != "" {
			record.CreatedAt = storage.NormalizeISO(view.CreatedAt)
		}
		if len(view.ParticipantSessions) > 0 {
			record.Participants = record.Participants[:0]
			for _, session := range view.ParticipantSessions {
				if id := strings.TrimSpace(session.UserID); id != "" {
					record.Participants = append(record.Participants, id)
				}
			}
		}
	}
	record.UpdatedAt = record.CreatedAt

	if err := s.store.UpsertConversation(record); err != nil {
		return nil, err
	}
	return &record, nil
}

// normalizeParticipantIDs trims, de-duplicates and drops empty identifiers,
// preserving first-seen order.
func normalizeParticipantIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
