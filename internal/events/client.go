package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// Client is a connection to the tablero daemon. It batches outgoing change
// events, delivers incoming ones and reconnects when the connection drops.
type Client struct {
	id         string
	socketPath string
	conn       net.Conn
	encoder    *json.Encoder
	decoder    *json.Decoder
	mu         sync.Mutex

	// Batching
	eventQueue chan Event
	debounce   time.Duration
	closed     bool

	// Reconnection
	maxRetries int
	baseDelay  time.Duration

	table        string
	lastSequence int64

	ctx    context.Context
	cancel context.CancelFunc

	batcherOnce    sync.Once
	batcherStarted bool
	batcherDone    chan struct{}
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithDebounce sets the batching window for outgoing events
func WithDebounce(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithReconnect sets the number of reconnection attempts and the initial backoff
func WithReconnect(maxRetries int, baseDelay time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.baseDelay = baseDelay
	}
}

// WithTable sets the collection the client subscribes to on connect
func WithTable(table string) ClientOption {
	return func(c *Client) {
		c.table = table
	}
}

// NewClient creates a new event client but does not connect.
// socketPath is the full path to the Unix domain socket.
func NewClient(socketPath string, opts ...ClientOption) (*Client, error) {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		id:          uuid.NewString(),
		socketPath:  socketPath,
		eventQueue:  make(chan Event, 100),
		debounce:    100 * time.Millisecond,
		maxRetries:  5,
		baseDelay:   1 * time.Second,
		table:       DefaultTable,
		ctx:         ctx,
		cancel:      cancel,
		batcherDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ID identifies this client as the Source of the events it publishes
func (c *Client) ID() string {
	return c.id
}

// Connect establishes a connection to the daemon socket and subscribes to the
// client's collection.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to dial daemon socket: %w", err)
	}

	c.conn = conn
	c.encoder = json.NewEncoder(conn)
	c.decoder = json.NewDecoder(conn)
	// A restarted daemon numbers events from 1 again
	c.lastSequence = 0

	msg := Message{
		Type:      MessageSubscribe,
		Subscribe: &SubscribeMessage{Table: c.table},
	}
	if err := c.encoder.Encode(msg); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			slog.Error("error closing connection", "error", closeErr)
		}
		c.conn = nil
		return fmt.Errorf("failed to send subscription: %w", err)
	}

	c.batcherOnce.Do(func() {
		c.batcherStarted = true
		go c.startBatcher()
	})

	return nil
}

// SendEvent queues an event to be sent to the daemon.
// Events are coalesced within the debounce window. It never blocks.
func (c *Client) SendEvent(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.eventQueue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// batch accumulates queued events into the single event sent per window
type batch struct {
	pending bool
	table   string
	rowID   string
}

func (b *batch) add(e Event) {
	if !b.pending {
		b.pending = true
		b.table = e.Table
		b.rowID = e.RowID
		return
	}
	if b.table != e.Table {
		b.table = ""
	}
	if b.rowID != e.RowID {
		b.rowID = ""
	}
}

// startBatcher sends at most one event per debounce window while events are pending.
// Events for different rows collapse to RowID "", different collections to Table "".
func (c *Client) startBatcher() {
	defer close(c.batcherDone)

	ticker := time.NewTicker(c.debounce)
	defer ticker.Stop()

	var b batch

	flush := func() {
		if !b.pending {
			return
		}
		err := c.sendMessage(Message{
			Type: MessageEvent,
			Event: &Event{
				Type:      EventRowsChanged,
				Table:     b.table,
				RowID:     b.rowID,
				Source:    c.id,
				Timestamp: time.Now(),
			},
		})
		if err != nil && !isConnectionError(err) {
			slog.Error("failed to send batched event", "error", err)
		}
		b = batch{}
	}

	for {
		select {
		case <-c.ctx.Done():
			flush()
			return

		case event, ok := <-c.eventQueue:
			if !ok {
				flush()
				return
			}
			b.add(event)

		case <-ticker.C:
			flush()
		}
	}
}

// sendMessage writes one message to the daemon socket
func (c *Client) sendMessage(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}

	// Short write deadline to detect dead connections
	if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return fmt.Errorf("connection error: %w", err)
	}

	return c.encoder.Encode(msg)
}

// Listen starts listening for events from the daemon.
// Events published by this client are not delivered back to it. The channel is
// closed when ctx is done, the client is closed, or reconnection fails.
func (c *Client) Listen(ctx context.Context) (<-chan Event, error) {
	eventChan := make(chan Event, 10)
	go c.listenLoop(ctx, eventChan)
	return eventChan, nil
}

func (c *Client) listenLoop(ctx context.Context, eventChan chan Event) {
	defer close(eventChan)

	for {
		err := c.readEvents(ctx, eventChan)
		if ctx.Err() != nil || c.isClosed() {
			return
		}

		slog.Warn("connection to daemon lost, reconnecting", "error", err)
		if !c.reconnect(ctx) {
			slog.Error("failed to reconnect to daemon, giving up", "attempts", c.maxRetries)
			return
		}
		slog.Info("reconnected to daemon")
	}
}

// readEvents reads messages from the socket and forwards events to eventChan
func (c *Client) readEvents(ctx context.Context, eventChan chan Event) error {
	for {
		var msg Message

		c.mu.Lock()
		if c.conn == nil {
			c.mu.Unlock()
			return ErrNotConnected
		}
		// Detect hung connections; the daemon pings every 30s
		if err := c.conn.SetReadDeadline(time.Now().Add(60 * time.Second)); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("failed to set read deadline: %w", err)
		}
		decoder := c.decoder
		c.mu.Unlock()

		if err := decoder.Decode(&msg); err != nil {
			return fmt.Errorf("failed to decode message: %w", err)
		}

		switch msg.Type {
		case MessageEvent:
			if msg.Event == nil {
				continue
			}

			c.mu.Lock()
			fresh := msg.Event.SequenceID > c.lastSequence
			if fresh {
				c.lastSequence = msg.Event.SequenceID
			}
			c.mu.Unlock()

			if !fresh || msg.Event.Source == c.id {
				continue
			}

			select {
			case eventChan <- *msg.Event:
			case <-ctx.Done():
				return ctx.Err()
			}

		case MessagePing:
			if err := c.sendMessage(Message{Type: MessagePong}); err != nil && !isConnectionError(err) {
				slog.Error("failed to send pong", "error", err)
			}
		}
	}
}

// isConnectionError reports whether err means the connection is gone
func isConnectionError(err error) bool {
	return errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, ErrNotConnected)
}

// reconnect retries Connect with exponential backoff, up to maxRetries times
func (c *Client) reconnect(ctx context.Context) bool {
	delay := c.baseDelay

	for i := 0; i < c.maxRetries; i++ {
		select {
		case <-ctx.Done():
			return false
		case <-c.ctx.Done():
			return false
		case <-time.After(delay):
			c.mu.Lock()
			if c.conn != nil {
				_ = c.conn.Close()
				c.conn = nil
			}
			c.mu.Unlock()

			if err := c.Connect(ctx); err == nil {
				slog.Info("reconnected to daemon", "attempt", i+1, "max_retries", c.maxRetries)
				return true
			}

			slog.Debug("reconnection attempt failed", "attempt", i+1, "retry_in", delay)
			delay *= 2
		}
	}

	return false
}

// Subscribe changes the subscription to a specific collection ("" = all).
func (c *Client) Subscribe(table string) error {
	c.mu.Lock()
	c.table = table
	c.mu.Unlock()

	return c.sendMessage(Message{
		Type:      MessageSubscribe,
		Subscribe: &SubscribeMessage{Table: table},
	})
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close flushes pending events, closes the connection and stops all goroutines.
// It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true

	// The batcher flushes what is pending before it exits
	close(c.eventQueue)
	started := c.batcherStarted
	c.mu.Unlock()

	if started {
		<-c.batcherDone
	}
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}

	return nil
}
