package mirror

import (
	"context"
	"errors"
	"strconv"

	"mixterm/network"
	"mixterm/storage"
)

// BackgroundStreamingKey is the settings key for the background-stream toggle.
const BackgroundStreamingKey = "backgroundBlazeEnabled"

// Service is the facade external collaborators use: outbound sends, the
// supervised stream, and the local read model. The store remains the only
// authoritative copy; every query goes back to it.
type Service struct {
	store      *storage.Store
	client     network.Client
	appID      string
	supervisor *Supervisor
}

// NewService wires a service over an open store and a remote client. appID is
// the local account identifier recorded as the sender of outbound echoes.
func NewService(store *storage.Store, client network.Client, appID string) *Service {
	return &Service{
		store:      store,
		client:     client,
		appID:      appID,
		supervisor: NewSupervisor(store, client),
	}
}

// StartStream starts (or restarts) the supervised push stream.
func (s *Service) StartStream(opts StreamOptions) error {
	return s.supervisor.Start(opts)
}

// StopStream stops the supervised push stream. Idempotent.
func (s *Service) StopStream() {
	s.supervisor.Stop()
}

// StreamRunning reports whether the push stream is active.
func (s *Service) StreamRunning() bool {
	return s.supervisor.Running()
}

// Conversations lists local conversations, most recently updated first.
func (s *Service) Conversations() ([]storage.Conversation, error) {
	return s.store.ListConversations()
}

// Conversation fetches one local conversation.
func (s *Service) Conversation(conversationID string) (*storage.Conversation, error) {
	return s.store.GetConversation(conversationID)
}

// Messages lists a conversation's local messages oldest first.
func (s *Service) Messages(conversationID string) ([]storage.Message, error) {
	return s.store.ListMessages(conversationID)
}

// RecentMessages lists the newest local messages across all conversations.
func (s *Service) RecentMessages(limit int) ([]storage.Message, error) {
	return s.store.ListRecentMessages(limit)
}

// User fetches a remote user profile. Profiles are not mirrored locally.
func (s *Service) User(ctx context.Context, userID string) (*network.UserView, error) {
	return s.client.FetchUser(ctx, userID)
}

// Setting reads one persisted setting; storage.ErrNotFound means unset.
func (s *Service) Setting(key string) (string, error) {
	return s.store.GetSetting(key)
}

// SetSetting writes one persisted setting.
func (s *Service) SetSetting(key, value string) error {
	return s.store.SetSetting(key, value)
}

// BackgroundStreamingEnabled reads the background-stream toggle. An absent
// key means enabled.
func (s *Service) BackgroundStreamingEnabled() (bool, error) {
	value, err := s.store.GetSetting(BackgroundStreamingKey)
	if errors.Is(err, storage.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return value == "true", nil
}

// SetBackgroundStreamingEnabled persists the background-stream toggle.
func (s *Service) SetBackgroundStreamingEnabled(enabled bool) error {
	return s.store.SetSetting(BackgroundStreamingKey, strconv.FormatBool(enabled))
}
