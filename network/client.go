package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultAPIHost is the REST endpoint of the messaging network.
	DefaultAPIHost = "https://api.mixin.one"
	// DefaultBlazeHost is the push-stream endpoint.
	DefaultBlazeHost = "wss://blaze.mixin.one"
	// DefaultRequestTimeout bounds one REST round-trip.
	DefaultRequestTimeout = 15 * time.Second
)

// Client is the remote messaging-network collaborator. The mirror engine
// depends only on this interface; tests substitute a fake.
type Client interface {
	// StartStream begins delivering push events to handler. It returns
	// ErrStreamRunning when a loop is already active.
	StartStream(handler Handler) error
	// StopStream tears down the active stream. No-op when stopped.
	StopStream()

	SendOne(ctx context.Context, message MessageRequest) error
	SendAcknowledgement(ctx context.Context, ack Acknowledgement) error
	FetchConversation(ctx context.Context, conversationID string) (*ConversationView, error)
	FetchUser(ctx context.Context, userID string) (*UserView, error)
	CreateGroupConversation(ctx context.Context, group GroupRequest) (*ConversationView, error)
}

// Config controls the concrete BlazeClient.
type Config struct {
	APIHost     string
	BlazeHost   string
	AccessToken string
	HTTPClient  *http.Client
}

func (c Config) withDefaults() Config {
	out := c
	if out.APIHost == "" {
		out.APIHost = DefaultAPIHost
	}
	if out.BlazeHost == "" {
		out.BlazeHost = DefaultBlazeHost
	}
	if out.HTTPClient == nil {
		out.HTTPClient = &http.Client{Timeout: DefaultRequestTimeout}
	}
	return out
}

type apiEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error *RemoteError    `json:"error"`
}

func (c *BlazeClient) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var bodyReader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s request: %w", method, path, err)
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.cfg.APIHost, "/")+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s response: %w", method, path, err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	if envelope.Error != nil && envelope.Error.Code != 0 {
		return envelope.Error
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode %s %s data: %w", method, path, err)
		}
	}

	return nil
}

// SendOne delivers a single outbound message.
func (c *BlazeClient) SendOne(ctx context.Context, message MessageRequest) error {
	if message.ConversationID == "" {
		return fmt.Errorf("conversation_id is required")
	}
	if message.MessageID == "" {
		return fmt.Errorf("message_id is required")
	}
	return c.doRequest(ctx, http.MethodPost, "/messages", []MessageRequest{message}, nil)
}

// SendAcknowledgement reports receipt of one inbound message.
func (c *BlazeClient) SendAcknowledgement(ctx context.Context, ack Acknowledgement) error {
	if ack.MessageID == "" {
		return fmt.Errorf("message_id is required")
	}
	return c.doRequest(ctx, http.MethodPost, "/acknowledgements", []Acknowledgement{ack}, nil)
}

// FetchConversation loads full conversation metadata.
func (c *BlazeClient) FetchConversation(ctx context.Context, conversationID string) (*ConversationView, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("conversation_id is required")
	}
	var view ConversationView
	if err := c.doRequest(ctx, http.MethodGet, "/conversations/"+url.PathEscape(conversationID), nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// FetchUser loads a user profile.
func (c *BlazeClient) FetchUser(ctx context.Context, userID string) (*UserView, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	var view UserView
	if err := c.doRequest(ctx, http.MethodGet, "/users/"+url.PathEscape(userID), nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// CreateGroupConversation creates a group and returns the remote view.
func (c *BlazeClient) CreateGroupConversation(ctx context.Context, group GroupRequest) (*ConversationView, error) {
	if group.ConversationID == "" {
		return nil, fmt.Errorf("conversation_id is required")
	}
	if group.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	var view ConversationView
	if err := c.doRequest(ctx, http.MethodPost, "/conversations", group, &view); err != nil {
		return nil, err
	}
	return &view, nil
}
