package storage

import (
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dataDir := t.TempDir()
	store, _, err := Open(dataDir)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close test store: %v", err)
		}
	})

	return store
}

func mustUpsertConversation(t *testing.T, store *Store, conversationID string, participants []string, updatedAt string) {
	t.Helper()

	err := store.UpsertConversation(Conversation{
		ConversationID: conversationID,
		Name:           "Conversation " + conversationID,
		Category:       CategoryGroup,
		Participants:   participants,
		CreatedAt:      isoAt(0),
		UpdatedAt:      updatedAt,
	})
	if err != nil {
		t.Fatalf("upsert conversation %q: %v", conversationID, err)
	}
}

// isoAt returns a deterministic store-layout timestamp offset in seconds from
// a fixed base instant.
func isoAt(offsetSeconds int) string {
	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	return FormatISO(base.Add(time.Duration(offsetSeconds) * time.Second))
}
