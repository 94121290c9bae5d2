package mirror

import (
	"context"
	"sync"
	"testing"
	"time"

	"mixterm/network"
	"mixterm/storage"
)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()

	store, _, err := storage.Open(t.TempDir())
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

// fakeClient is an in-memory remote collaborator. Events are delivered by the
// test via the handler captured at StartStream time.
type fakeClient struct {
	mu sync.Mutex

	handler network.Handler
	running bool

	conflictOnce bool // next StartStream reports ErrStreamRunning

	startCalls int
	stopCalls  int

	sent    []network.MessageRequest
	sendErr error

	acks   []network.Acknowledgement
	ackErr error

	conversationView *network.ConversationView
	fetchErr         error
	fetchCalls       int

	createView *network.ConversationView
	createErr  error
	created    []network.GroupRequest
}

func (f *fakeClient) StartStream(handler network.Handler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls++
	if f.conflictOnce {
		f.conflictOnce = false
		return network.ErrStreamRunning
	}
	f.handler = handler
	f.running = true
	return nil
}

func (f *fakeClient) StopStream() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalls++
	f.running = false
}

func (f *fakeClient) SendOne(_ context.Context, message network.MessageRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, message)
	return nil
}

func (f *fakeClient) SendAcknowledgement(_ context.Context, ack network.Acknowledgement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ackErr != nil {
		return f.ackErr
	}
	f.acks = append(f.acks, ack)
	return nil
}

func (f *fakeClient) FetchConversation(_ context.Context, _ string) (*network.ConversationView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.conversationView, nil
}

func (f *fakeClient) FetchUser(_ context.Context, userID string) (*network.UserView, error) {
	return &network.UserView{UserID: userID}, nil
}

func (f *fakeClient) CreateGroupConversation(_ context.Context, group network.GroupRequest) (*network.ConversationView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, group)
	return f.createView, nil
}

func (f *fakeClient) currentHandler() network.Handler {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handler
}

func (f *fakeClient) deliverMessage(event network.MessageEvent) {
	h := f.currentHandler()
	if h.OnMessage != nil {
		h.OnMessage(event)
	}
}

func (f *fakeClient) deliverConversation(event network.MessageEvent) {
	h := f.currentHandler()
	if h.OnConversation != nil {
		h.OnConversation(event)
	}
}

func (f *fakeClient) ackCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.acks)
}

func (f *fakeClient) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func eventAt(offsetSeconds int) string {
	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	return storage.FormatISO(base.Add(time.Duration(offsetSeconds) * time.Second))
}
