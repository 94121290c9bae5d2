package storage

import (
	"errors"
	"fmt"
	"testing"
)

func TestAddMessageIsIdempotentUpsert(t *testing.T) {
	store := newTestStore(t)
	mustUpsertConversation(t, store, "conv-1", []string{"user-a"}, isoAt(0))

	first := Message{
		MessageID:      "msg-1",
		ConversationID: "conv-1",
		UserID:         "user-a",
		Category:       "PLAIN_TEXT",
		Content:        "hello",
		CreatedAt:      isoAt(10),
		Direction:      DirectionIncoming,
		Status:         StatusReceived,
	}
	if err := store.AddMessage(first); err != nil {
		t.Fatalf("first AddMessage failed: %v", err)
	}

	redelivered := first
	redelivered.Content = "hello (edited)"
	redelivered.Status = StatusWithdrawn
	redelivered.CreatedAt = isoAt(99)
	redelivered.Direction = DirectionOutgoing
	if err := store.AddMessage(redelivered); err != nil {
		t.Fatalf("redelivered AddMessage failed: %v", err)
	}

	messages, err := store.ListMessages("conv-1")
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected exactly one row, got %d", len(messages))
	}

	got := messages[0]
	if got.Content != "hello (edited)" || got.Status != StatusWithdrawn {
		t.Fatalf("expected latest content/status, got %+v", got)
	}
	if got.CreatedAt != isoAt(10) {
		t.Fatalf("created_at must be immutable, got %q", got.CreatedAt)
	}
	if got.Direction != DirectionIncoming {
		t.Fatalf("direction must be immutable, got %q", got.Direction)
	}
}

func TestListMessagesOrdersByCreatedAtAscending(t *testing.T) {
	store := newTestStore(t)
	mustUpsertConversation(t, store, "conv-1", []string{"user-a"}, isoAt(0))

	for i, id := range []string{"msg-c", "msg-a", "msg-b"} {
		offsets := map[string]int{"msg-a": 10, "msg-b": 20, "msg-c": 30}
		if err := store.AddMessage(Message{
			MessageID:      id,
			ConversationID: "conv-1",
			UserID:         "user-a",
			Category:       "PLAIN_TEXT",
			Content:        id,
			CreatedAt:      isoAt(offsets[id]),
		}); err != nil {
			t.Fatalf("AddMessage %d failed: %v", i, err)
		}
	}

	messages, err := store.ListMessages("conv-1")
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	for i := 1; i < len(messages); i++ {
		if messages[i-1].CreatedAt > messages[i].CreatedAt {
			t.Fatalf("messages not in non-decreasing created_at order: %q then %q",
				messages[i-1].CreatedAt, messages[i].CreatedAt)
		}
	}
}

func TestListRecentMessagesReturnsNewestAcrossConversations(t *testing.T) {
	store := newTestStore(t)
	mustUpsertConversation(t, store, "conv-a", []string{"user-a"}, isoAt(0))
	mustUpsertConversation(t, store, "conv-b", []string{"user-b"}, isoAt(0))

	if err := store.AddMessage(Message{
		MessageID:      "msg-a",
		ConversationID: "conv-a",
		UserID:         "user-a",
		Category:       "PLAIN_TEXT",
		Content:        "earlier",
		CreatedAt:      isoAt(10),
	}); err != nil {
		t.Fatalf("AddMessage conv-a failed: %v", err)
	}
	if err := store.AddMessage(Message{
		MessageID:      "msg-b",
		ConversationID: "conv-b",
		UserID:         "user-b",
		Category:       "PLAIN_TEXT",
		Content:        "later",
		CreatedAt:      isoAt(20),
	}); err != nil {
		t.Fatalf("AddMessage conv-b failed: %v", err)
	}

	recent, err := store.ListRecentMessages(1)
	if err != nil {
		t.Fatalf("ListRecentMessages failed: %v", err)
	}
	if len(recent) != 1 || recent[0].MessageID != "msg-b" {
		t.Fatalf("expected only msg-b, got %+v", recent)
	}
}

func TestListRecentMessagesClampsLimit(t *testing.T) {
	store := newTestStore(t)
	mustUpsertConversation(t, store, "conv-1", []string{"user-a"}, isoAt(0))

	for i := 0; i < 60; i++ {
		if err := store.AddMessage(Message{
			MessageID:      fmt.Sprintf("msg-%03d", i),
			ConversationID: "conv-1",
			UserID:         "user-a",
			Category:       "PLAIN_TEXT",
			Content:        "n",
			CreatedAt:      isoAt(i),
		}); err != nil {
			t.Fatalf("AddMessage %d failed: %v", i, err)
		}
	}

	byDefault, err := store.ListRecentMessages(0)
	if err != nil {
		t.Fatalf("ListRecentMessages default failed: %v", err)
	}
	if len(byDefault) != defaultRecentLimit {
		t.Fatalf("expected default limit %d, got %d", defaultRecentLimit, len(byDefault))
	}

	clamped, err := store.ListRecentMessages(10_000)
	if err != nil {
		t.Fatalf("ListRecentMessages clamped failed: %v", err)
	}
	if len(clamped) != 60 {
		t.Fatalf("expected all 60 rows under the 200 cap, got %d", len(clamped))
	}
}

func TestAddMessageBumpsConversationUpdatedAtUnconditionally(t *testing.T) {
	store := newTestStore(t)
	mustUpsertConversation(t, store, "conv-1", []string{"user-a"}, isoAt(100))

	// An older message still rewinds updated_at; replicated source behavior.
	if err := store.AddMessage(Message{
		MessageID:      "msg-old",
		ConversationID: "conv-1",
		UserID:         "user-a",
		Category:       "PLAIN_TEXT",
		Content:        "late arrival",
		CreatedAt:      isoAt(50),
	}); err != nil {
		t.Fatalf("AddMessage failed: %v", err)
	}

	conversation, err := store.GetConversation("conv-1")
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if conversation.UpdatedAt != isoAt(50) {
		t.Fatalf("expected updated_at %q, got %q", isoAt(50), conversation.UpdatedAt)
	}
}

func TestMarkMessageWithdrawnKeepsContent(t *testing.T) {
	store := newTestStore(t)
	mustUpsertConversation(t, store, "conv-1", []string{"user-a"}, isoAt(0))

	if err := store.AddMessage(Message{
		MessageID:      "msg-1",
		ConversationID: "conv-1",
		UserID:         "user-a",
		Category:       "PLAIN_TEXT",
		Content:        "keep me",
		CreatedAt:      isoAt(1),
		Direction:      DirectionOutgoing,
		Status:         StatusSent,
	}); err != nil {
		t.Fatalf("AddMessage failed: %v", err)
	}

	if err := store.MarkMessageWithdrawn("msg-1"); err != nil {
		t.Fatalf("MarkMessageWithdrawn failed: %v", err)
	}

	message, err := store.GetMessage("msg-1")
	if err != nil {
		t.Fatalf("GetMessage failed: %v", err)
	}
	if message.Status != StatusWithdrawn {
		t.Fatalf("expected withdrawn status, got %q", message.Status)
	}
	if message.Content != "keep me" {
		t.Fatalf("content must survive withdrawal, got %q", message.Content)
	}
	if message.Direction != DirectionOutgoing || message.CreatedAt != isoAt(1) {
		t.Fatalf("only status may change, got %+v", message)
	}
	if message.DisplayContent() != WithdrawnPlaceholder {
		t.Fatalf("expected tombstone on read path, got %q", message.DisplayContent())
	}
}

func TestMarkMessageWithdrawnMissingIDIsNoOp(t *testing.T) {
	store := newTestStore(t)

	if err := store.MarkMessageWithdrawn("never-seen"); err != nil {
		t.Fatalf("expected no-op for unknown id, got %v", err)
	}
}

func TestGetMessageNotFound(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.GetMessage("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddMessageValidation(t *testing.T) {
	store := newTestStore(t)

	if err := store.AddMessage(Message{ConversationID: "conv-1"}); err == nil {
		t.Fatal("expected error for missing message_id")
	}
	if err := store.AddMessage(Message{MessageID: "msg-1"}); err == nil {
		t.Fatal("expected error for missing conversation_id")
	}
	if err := store.AddMessage(Message{
		MessageID:      "msg-1",
		ConversationID: "conv-1",
		Direction:      "sideways",
	}); err == nil {
		t.Fatal("expected error for invalid direction")
	}
	if err := store.AddMessage(Message{
		MessageID:      "msg-1",
		ConversationID: "conv-1",
		Status:         "vanished",
	}); err == nil {
		t.Fatal("expected error for invalid status")
	}
}
