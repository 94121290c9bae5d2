package mirror

import (
	"context"
	"errors"
	"log"
	"strings"

	"mixterm/network"
	"mixterm/payload"
	"mixterm/storage"
)

const (
	defaultConversationName     = "Group"
	defaultConversationCategory = storage.CategoryGroup
)

// Synchronizer reconciles group/conversation metadata from push events into
// the store, falling back to a remote fetch when the event payload is
// incomplete.
type Synchronizer struct {
	store  *storage.Store
	client network.Client
}

// NewSynchronizer builds a synchronizer over a store and a remote client.
func NewSynchronizer(store *storage.Store, client network.Client) *Synchronizer {
	return &Synchronizer{store: store, client: client}
}

// SyncConversation merges a SYSTEM_CONVERSATION event into the local mirror.
// Events without a conversation id are dropped silently. Field candidates
// fall back payload → existing local record → event envelope → defaults, and
// a known participant list is never regressed to empty.
func (y *Synchronizer) SyncConversation(ctx context.Context, event network.MessageEvent) error {
	conversationID := strings.TrimSpace(event.ConversationID)
	if conversationID == "" {
		return nil
	}

	obj := payload.DecodeObject(event.Data)

	existing, err := y.store.GetConversation(conversationID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	name := objectString(obj, "name")
	category := objectString(obj, "category")
	createdAt := objectString(obj, "created_at")
	participants := payload.ExtractParticipants(event.Data)

	if name == "" && existing != nil {
		name = existing.Name
	}
	if name == "" {
		name = defaultConversationName
	}
	if category == "" && existing != nil {
		category = existing.Category
	}
	if category == "" {
		category = defaultConversationCategory
	}
	if createdAt == "" && existing != nil {
		createdAt = existing.CreatedAt
	}
	if createdAt == "" {
		createdAt = event.CreatedAt
	}
	if createdAt == "" {
		createdAt = storage.NowISO()
	}

	// A payload without a name is treated as partial metadata: ask the remote
	// side for the full record. Fetch failures are swallowed; whatever was
	// already computed still gets persisted.
	if objectString(obj, "name") == "" {
		view, err := y.client.FetchConversation(ctx, conversationID)
		if err != nil {
			log.Printf("mirror: fetch conversation %q: %v", conversationID, err)
		} else if view != nil {
			if view.Name != "" {
				name = view.Name
			}
			if view.Category != "" {
				category = view.Category
			}
			if view.CreatedAt != "" {
				createdAt = view.CreatedAt
			}
			if len(view.ParticipantSessions) > 0 {
				participants = participants[:0]
				for _, session := range view.ParticipantSessions {
					if id := strings.TrimSpace(session.UserID); id != "" {
						participants = append(participants, id)
					}
				}
			}
		}
	}

	if len(participants) == 0 && existing != nil {
		participants = existing.Participants
	}

	updatedAt := event.CreatedAt
	if updatedAt == "" {
		updatedAt = createdAt
	}

	return y.store.UpsertConversation(storage.Conversation{
		ConversationID: conversationID,
		Name:           name,
		Category:       category,
		Participants:   participants,
		CreatedAt:      storage.NormalizeISO(createdAt),
		UpdatedAt:      storage.NormalizeISO(updatedAt),
	})
}

func objectString(obj map[string]any, key string) string {
	if obj == nil {
		return ""
	}
	v, _ := obj[key].(string)
	return v
}
