// Package daemon implements the event daemon that relays row change
// notifications between tablero processes over a Unix socket.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/metrics"
)

// ErrNoRegistry is returned by ServeMetrics when the server was built without WithRegistry
var ErrNoRegistry = errors.New("daemon has no metrics registry")

// ErrBroadcastFull is returned by Broadcast when the broadcast queue is full
var ErrBroadcastFull = errors.New("broadcast channel full")

// client represents a connected client to the daemon
type client struct {
	conn         net.Conn
	send         chan events.Message
	subscription events.SubscribeMessage
	lastPong     time.Time
	closed       bool
	mu           sync.Mutex // Protects subscription, lastPong and closed
}

// Server is the tablero event daemon
type Server struct {
	socketPath      string
	listener        net.Listener
	clients         map[*client]bool
	mu              sync.RWMutex
	ctx             context.Context
	cancel          context.CancelFunc
	broadcast       chan events.Event
	sequenceCounter atomic.Int64
	shutdownOnce    sync.Once

	metrics  Metrics
	registry *metrics.Registry

	clientBufferSize    int
	broadcastBufferSize int
	pingInterval        time.Duration
	staleAfter          time.Duration
}

// Option configures a Server
type Option func(*Server)

// WithClientBuffer sets the per-client send queue size
func WithClientBuffer(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.clientBufferSize = n
		}
	}
}

// WithBroadcastBuffer sets the size of the broadcast queue
func WithBroadcastBuffer(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.broadcastBufferSize = n
		}
	}
}

// WithHealthCheck sets how often clients are pinged and after how long
// without a pong they are dropped
func WithHealthCheck(pingInterval, staleAfter time.Duration) Option {
	return func(s *Server) {
		s.pingInterval = pingInterval
		s.staleAfter = staleAfter
	}
}

// WithRegistry registers the daemon's prometheus metrics on reg and lets
// ServeMetrics expose them
func WithRegistry(reg *metrics.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// NewServer creates the socket listener. Call Start to serve.
func NewServer(socketPath string, opts ...Option) (*Server, error) {
	s := &Server{
		socketPath:          socketPath,
		clients:             make(map[*client]bool),
		metrics:             nopMetrics{},
		clientBufferSize:    100,
		broadcastBufferSize: 100,
		pingInterval:        30 * time.Second,
		staleAfter:          90 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.registry != nil {
		m, err := metrics.NewDaemon(s.registry.Prometheus())
		if err != nil {
			return nil, err
		}
		s.metrics = m
	}

	if dir := filepath.Dir(socketPath); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create socket directory: %w", err)
		}
	}

	// Remove stale socket file if it exists
	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return nil, fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	lc := net.ListenConfig{}
	listener, err := lc.Listen(context.Background(), "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create socket listener: %w", err)
	}

	s.listener = listener
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.broadcast = make(chan events.Event, s.broadcastBufferSize)

	return s, nil
}

// SocketPath returns the path the daemon listens on
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start runs the accept, broadcast and health monitoring loops until ctx is
// canceled or Shutdown is called, then shuts down.
func (s *Server) Start(ctx context.Context) error {
	slog.Info("daemon starting", "socket", s.socketPath)

	combinedCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-s.ctx.Done()
		cancel()
	}()

	acceptErr := make(chan error, 1)
	go func() {
		acceptErr <- s.acceptLoop(combinedCtx)
	}()

	go s.broadcastLoop(combinedCtx)
	go s.monitorHealth(combinedCtx)

	var err error
	select {
	case <-combinedCtx.Done():
		slog.Info("daemon context cancelled, shutting down")
	case err = <-acceptErr:
		if err != nil {
			slog.Error("accept loop error", "error", err)
		}
	}

	if shutdownErr := s.Shutdown(); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	return err
}

// ServeMetrics exposes /metrics on addr until ctx is canceled
func (s *Server) ServeMetrics(ctx context.Context, addr string) error {
	if s.registry == nil {
		return ErrNoRegistry
	}
	return s.registry.Serve(ctx, addr)
}

// acceptLoop accepts incoming client connections
func (s *Server) acceptLoop(ctx context.Context) error {
	unixListener, _ := s.listener.(*net.UnixListener)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		// Deadline so the loop can observe cancellation
		if unixListener != nil {
			if err := unixListener.SetDeadline(time.Now().Add(1 * time.Second)); err != nil {
				slog.Error("error setting listener deadline", "error", err)
			}
		}

		conn, err := s.listener.Accept()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept error: %w", err)
		}

		c := &client{
			conn:     conn,
			send:     make(chan events.Message, s.clientBufferSize),
			lastPong: time.Now(),
		}

		s.mu.Lock()
		s.clients[c] = true
		s.mu.Unlock()

		s.updateClientCount()
		slog.Debug("client connected", "clients", s.ClientCount())

		go s.handleClient(c)
		go s.clientWriter(c)
	}
}

// broadcastLoop stamps events with a sequence number and fans them out to
// subscribed clients
func (s *Server) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event := <-s.broadcast:
			event.SequenceID = s.sequenceCounter.Add(1)
			s.metrics.IncBroadcasts()

			s.mu.RLock()
			for c := range s.clients {
				c.mu.Lock()
				subscribed := event.Table == "" || c.subscription.Table == "" || c.subscription.Table == event.Table
				c.mu.Unlock()

				if !subscribed {
					continue
				}

				ev := event
				msg := events.Message{Type: events.MessageEvent, Event: &ev}
				if !s.sendToClient(c, msg) {
					slog.Warn("client send queue full, event dropped", "sequence_id", event.SequenceID)
				}
			}
			s.mu.RUnlock()
		}
	}
}

// handleClient reads messages from a connected client
func (s *Server) handleClient(c *client) {
	defer func() {
		s.removeClient(c)
		slog.Debug("client disconnected", "clients", s.ClientCount())
	}()

	decoder := json.NewDecoder(c.conn)

	for {
		var msg events.Message
		if err := decoder.Decode(&msg); err != nil {
			return
		}

		switch msg.Type {
		case events.MessageEvent:
			if msg.Event == nil || msg.Event.Type != events.EventRowsChanged {
				continue
			}
			s.metrics.IncEventsReceived()
			if err := s.Broadcast(*msg.Event); err != nil {
				slog.Warn("dropping event from client", "error", err)
			}

		case events.MessageSubscribe:
			if msg.Subscribe != nil {
				c.mu.Lock()
				c.subscription = *msg.Subscribe
				c.mu.Unlock()
				slog.Debug("client subscribed", "table", msg.Subscribe.Table)
			}

		case events.MessagePong:
			c.mu.Lock()
			c.lastPong = time.Now()
			c.mu.Unlock()
		}
	}
}

// clientWriter sends queued messages to a client
func (s *Server) clientWriter(c *client) {
	encoder := json.NewEncoder(c.conn)

	for msg := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return
		}
		if err := encoder.Encode(msg); err != nil {
			return
		}
	}
}

// monitorHealth pings clients and removes the ones that stopped answering
func (s *Server) monitorHealth(ctx context.Context) {
	pingTicker := time.NewTicker(s.pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-pingTicker.C:
			now := time.Now()

			s.mu.RLock()
			clients := make([]*client, 0, len(s.clients))
			for c := range s.clients {
				clients = append(clients, c)
			}
			s.mu.RUnlock()

			for _, c := range clients {
				c.mu.Lock()
				lastPong := c.lastPong
				c.mu.Unlock()

				if now.Sub(lastPong) > s.staleAfter {
					slog.Info("removing stale client", "last_pong_ago", now.Sub(lastPong))
					s.removeClient(c)
					continue
				}

				if !s.sendToClient(c, events.Message{Type: events.MessagePing}) {
					slog.Warn("failed to send ping to client (queue full)")
				}
			}
		}
	}
}

// Broadcast queues an event for delivery to subscribed clients (non-blocking)
func (s *Server) Broadcast(event events.Event) error {
	select {
	case <-s.ctx.Done():
		return context.Canceled
	default:
	}

	select {
	case s.broadcast <- event:
		return nil
	default:
		s.metrics.IncEventsDropped()
		return ErrBroadcastFull
	}
}

// Shutdown closes the listener and every client connection and removes the
// socket file. It is safe to call more than once.
func (s *Server) Shutdown() error {
	var err error
	s.shutdownOnce.Do(func() {
		slog.Info("shutting down daemon")

		s.cancel()

		if closeErr := s.listener.Close(); closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
			slog.Error("error closing listener", "error", closeErr)
		}

		s.mu.Lock()
		clients := s.clients
		s.clients = make(map[*client]bool)
		s.mu.Unlock()

		for c := range clients {
			s.closeClient(c)
		}
		s.updateClientCount()

		if removeErr := os.Remove(s.socketPath); removeErr != nil && !os.IsNotExist(removeErr) {
			err = fmt.Errorf("failed to remove socket file: %w", removeErr)
		}
	})

	return err
}

// ClientCount returns the number of connected clients
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) updateClientCount() {
	s.metrics.SetConnectedClients(s.ClientCount())
}

// removeClient unregisters a client and closes its connection
func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()

	s.closeClient(c)
	s.updateClientCount()
}

// closeClient closes the connection and the send queue once
func (s *Server) closeClient(c *client) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	_ = c.conn.Close()
	close(c.send)
}

// sendToClient queues a message without blocking.
// It reports false when the queue is full or the client is gone.
func (s *Server) sendToClient(c *client, msg events.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- msg:
		s.metrics.IncEventsSent()
		return true
	default:
		s.metrics.IncEventsDropped()
		return false
	}
}
