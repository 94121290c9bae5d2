package network

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
)

const (
	blazeSubprotocol = "Mixin-Blaze-1"
	dialTimeout      = 10 * time.Second

	actionCreateMessage       = "CREATE_MESSAGE"
	actionListPendingMessages = "LIST_PENDING_MESSAGES"
)

// blazeFrame is the gzip-compressed JSON envelope used in both directions on
// the push stream.
type blazeFrame struct {
	ID     string          `json:"id"`
	Action string          `json:"action"`
	Params any             `json:"params,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  *RemoteError    `json:"error,omitempty"`
}

// BlazeClient talks to the remote messaging network: REST calls against the
// API host and a single websocket read loop against the blaze host. The loop
// never reconnects on its own; restart policy belongs to the caller.
type BlazeClient struct {
	cfg  Config
	http *http.Client

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	conn    *websocket.Conn
	done    chan struct{}
}

var _ Client = (*BlazeClient)(nil)

// NewBlazeClient builds a client with config defaults applied.
func NewBlazeClient(config Config) *BlazeClient {
	cfg := config.withDefaults()
	return &BlazeClient{cfg: cfg, http: cfg.HTTPClient}
}

// StartStream dials the blaze host and begins delivering events to handler
// from a background goroutine, one event at a time. Returns ErrStreamRunning
// when a loop is already active.
func (c *BlazeClient) StartStream(handler Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return ErrStreamRunning
	}

	ctx, cancel := context.WithCancel(context.Background())

	dialCtx, dialCancel := context.WithTimeout(ctx, dialTimeout)
	defer dialCancel()

	header := http.Header{}
	if c.cfg.AccessToken != "" {
		header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	}
	conn, _, err := websocket.Dial(dialCtx, c.cfg.BlazeHost, &websocket.DialOptions{
		HTTPClient:   c.http,
		HTTPHeader:   header,
		Subprotocols: []string{blazeSubprotocol},
	})
	if err != nil {
		cancel()
		return fmt.Errorf("dial blaze host: %w", err)
	}
	conn.SetReadLimit(1 << 22)

	if err := writeFrame(ctx, conn, blazeFrame{ID: uuid.NewString(), Action: actionListPendingMessages}); err != nil {
		_ = conn.Close(websocket.StatusInternalError, "handshake failed")
		cancel()
		return fmt.Errorf("request pending messages: %w", err)
	}

	done := make(chan struct{})
	c.running = true
	c.cancel = cancel
	c.conn = conn
	c.done = done

	go c.readLoop(ctx, conn, handler, done)

	return nil
}

// StopStream closes the active stream and waits for the read loop to exit.
// Stopping a stopped client is a no-op.
func (c *BlazeClient) StopStream() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	done := c.done
	c.cancel()
	_ = c.conn.Close(websocket.StatusNormalClosure, "client stop")
	c.mu.Unlock()

	<-done
}

func (c *BlazeClient) readLoop(ctx context.Context, conn *websocket.Conn, handler Handler, done chan struct{}) {
	defer func() {
		c.mu.Lock()
		if c.done == done {
			c.running = false
		}
		c.mu.Unlock()
		close(done)
	}()

	for {
		_, raw, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("network: blaze read: %v", err)
			}
			return
		}

		frame, err := decodeFrame(raw)
		if err != nil {
			log.Printf("network: blaze frame decode: %v", err)
			continue
		}
		if frame.Action != actionCreateMessage || len(frame.Data) == 0 {
			continue
		}

		var event MessageEvent
		if err := json.Unmarshal(frame.Data, &event); err != nil {
			log.Printf("network: blaze event decode: %v", err)
			continue
		}

		if event.Category == CategorySystemConversation {
			if handler.OnConversation != nil {
				handler.OnConversation(event)
			}
		} else if handler.OnMessage != nil {
			handler.OnMessage(event)
		}
	}
}

func writeFrame(ctx context.Context, conn *websocket.Conn, frame blazeFrame) error {
	raw, err := encodeFrame(frame)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageBinary, raw)
}

func encodeFrame(frame blazeFrame) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := json.NewEncoder(zw).Encode(frame); err != nil {
		return nil, fmt.Errorf("encode blaze frame: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress blaze frame: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeFrame(raw []byte) (*blazeFrame, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decompress blaze frame: %w", err)
	}
	defer zr.Close()

	payload, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("read blaze frame: %w", err)
	}

	var frame blazeFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return nil, fmt.Errorf("decode blaze frame: %w", err)
	}
	return &frame, nil
}
