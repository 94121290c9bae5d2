// Package mirror maintains the local conversation/message mirror: it owns the
// push-stream lifecycle, reconciles inbound events into storage, and exposes
// the read model the terminal surface queries.
package mirror

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"mixterm/network"
	"mixterm/payload"
	"mixterm/storage"
)

const ackTimeout = 10 * time.Second

// StreamOptions configures one supervised stream run. All callbacks are
// optional and are invoked sequentially on the dispatch goroutine, after the
// event has been persisted.
type StreamOptions struct {
	// ConversationID, when set, drops message events for other conversations
	// before they reach the store.
	ConversationID string

	OnMessage      func(storage.Message)
	OnRecall       func(messageID string)
	OnConversation func(conversationID string)
}

// Supervisor owns the single active push-stream connection. Two states:
// stopped and running. Start on a running supervisor is not an error; the
// existing run is stopped and a fresh one begins with the new options.
type Supervisor struct {
	store  *storage.Store
	client network.Client
	syncer *Synchronizer

	mu      sync.Mutex
	running bool
	gen     atomic.Uint64

	// dispatchMu serializes event handling; Stop takes it to guarantee no
	// callback runs after Stop returns.
	dispatchMu sync.Mutex
}

// NewSupervisor builds a supervisor over a store and a remote client.
func NewSupervisor(store *storage.Store, client network.Client) *Supervisor {
	return &Supervisor{
		store:  store,
		client: client,
		syncer: NewSynchronizer(store, client),
	}
}

// Start begins (or restarts) the stream with the given options. A stream
// conflict reported by the client is converted into a deterministic
// stop+restart rather than an error.
func (s *Supervisor) Start(opts StreamOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.client.StopStream()
		s.running = false
	}

	gen := s.gen.Add(1)
	handler := network.Handler{
		OnMessage: func(event network.MessageEvent) {
			s.dispatch(gen, func() { s.handleMessage(opts, event) })
		},
		OnConversation: func(event network.MessageEvent) {
			s.dispatch(gen, func() { s.handleConversation(opts, event) })
		},
	}

	err := s.client.StartStream(handler)
	if errors.Is(err, network.ErrStreamRunning) {
		s.client.StopStream()
		err = s.client.StartStream(handler)
	}
	if err != nil {
		return err
	}

	s.running = true
	return nil
}

// Stop tears down the active stream. Idempotent, safe from any goroutine, and
// guarantees no further callback invocations once it returns.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	s.gen.Add(1)
	if s.running {
		s.running = false
		s.client.StopStream()
	}
	s.mu.Unlock()

	// Taking the dispatch lock waits out any in-flight event; once held, no
	// callback can run again for the stopped generation.
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
}

// Running reports whether a stream run is active.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Supervisor) dispatch(gen uint64, fn func()) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	if gen != s.gen.Load() {
		// Event from a superseded run.
		return
	}
	fn()
}

func (s *Supervisor) handleMessage(opts StreamOptions, event network.MessageEvent) {
	conversationID := strings.TrimSpace(event.ConversationID)
	if conversationID == "" {
		return
	}
	if opts.ConversationID != "" && conversationID != opts.ConversationID {
		return
	}

	if event.Category == network.CategoryMessageRecall {
		if target, ok := payload.ParseRecallTarget(event.Data); ok {
			if err := s.store.MarkMessageWithdrawn(target); err != nil {
				log.Printf("mirror: mark message %q withdrawn: %v", target, err)
			} else if opts.OnRecall != nil {
				opts.OnRecall(target)
			}
		}
		s.acknowledge(event)
		return
	}

	record := storage.Message{
		MessageID:      event.MessageID,
		ConversationID: conversationID,
		UserID:         event.UserID,
		Category:       event.Category,
		Content:        payload.DecodeContent(event.Category, event.Data),
		CreatedAt:      storage.NormalizeISO(event.CreatedAt),
		Direction:      storage.DirectionIncoming,
		Status:         storage.StatusReceived,
	}
	if err := s.store.AddMessage(record); err != nil {
		log.Printf("mirror: store message %q: %v", event.MessageID, err)
		return
	}

	if opts.OnMessage != nil {
		opts.OnMessage(record)
	}
	s.acknowledge(event)
}

func (s *Supervisor) handleConversation(opts StreamOptions, event network.MessageEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), ackTimeout)
	defer cancel()

	if err := s.syncer.SyncConversation(ctx, event); err != nil {
		log.Printf("mirror: sync conversation %q: %v", event.ConversationID, err)
	}
	if opts.OnConversation != nil {
		opts.OnConversation(strings.TrimSpace(event.ConversationID))
	}
	s.acknowledge(event)
}

// acknowledge is fire and forget: failures are logged, never surfaced and
// never retried.
func (s *Supervisor) acknowledge(event network.MessageEvent) {
	if event.MessageID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), ackTimeout)
	defer cancel()

	ack := network.Acknowledgement{MessageID: event.MessageID, Status: network.AckStatusRead}
	if err := s.client.SendAcknowledgement(ctx, ack); err != nil {
		log.Printf("mirror: acknowledge message %q: %v", event.MessageID, err)
	}
}
