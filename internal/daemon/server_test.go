package daemon

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/metrics"
)

// ============================================================================
// Test Helpers
// ============================================================================

func setupTestDaemon(t *testing.T, opts ...Option) *Server {
	t.Helper()
	socketPath := filepath.Join(t.TempDir(), "tablero.sock")

	server, err := NewServer(socketPath, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Shutdown() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go func() { _ = server.Start(ctx) }()
	return server
}

type rawClient struct {
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
}

func connectRawClient(t *testing.T, s *Server, table string) *rawClient {
	t.Helper()

	conn, err := (&net.Dialer{}).DialContext(context.Background(), "unix", s.SocketPath())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	c := &rawClient{conn: conn, enc: json.NewEncoder(conn), dec: json.NewDecoder(conn)}
	require.NoError(t, c.enc.Encode(events.Message{
		Type:      events.MessageSubscribe,
		Subscribe: &events.SubscribeMessage{Table: table},
	}))
	return c
}

// readEvent returns the next event message, skipping pings
func (c *rawClient) readEvent(t *testing.T) *events.Event {
	t.Helper()
	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg events.Message
		require.NoError(t, c.dec.Decode(&msg))
		if msg.Type == events.MessageEvent {
			return msg.Event
		}
	}
}

// expectNoEvent asserts nothing arrives within a short window
func (c *rawClient) expectNoEvent(t *testing.T) {
	t.Helper()
	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var msg events.Message
	err := c.dec.Decode(&msg)
	assert.Error(t, err, "expected no message, got %+v", msg)
}

func waitForClients(t *testing.T, s *Server, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return s.ClientCount() == n }, 3*time.Second, 10*time.Millisecond)
}

// ============================================================================
// Tests
// ============================================================================

func TestNewServer_CreatesDirectoryAndRemovesStaleSocket(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "nested", "tablero.sock")
	require.NoError(t, os.MkdirAll(filepath.Dir(socketPath), 0o700))
	require.NoError(t, os.WriteFile(socketPath, []byte("stale"), 0o600))

	server, err := NewServer(socketPath)
	require.NoError(t, err)
	defer server.Shutdown()

	info, err := os.Stat(socketPath)
	require.NoError(t, err)
	assert.Equal(t, os.ModeSocket, info.Mode()&os.ModeSocket)
}

func TestClientConnectAndDisconnect(t *testing.T) {
	s := setupTestDaemon(t)

	c1 := connectRawClient(t, s, "")
	connectRawClient(t, s, "")
	waitForClients(t, s, 2)

	require.NoError(t, c1.conn.Close())
	waitForClients(t, s, 1)
}

func TestBroadcast_SequenceNumbers(t *testing.T) {
	s := setupTestDaemon(t)
	c := connectRawClient(t, s, "")
	waitForClients(t, s, 1)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Broadcast(events.Event{Type: events.EventRowsChanged, Table: events.DefaultTable}))
	}

	for want := int64(1); want <= 3; want++ {
		assert.Equal(t, want, c.readEvent(t).SequenceID)
	}
}

func TestBroadcast_SubscriptionFiltering(t *testing.T) {
	s := setupTestDaemon(t)
	activities := connectRawClient(t, s, events.DefaultTable)
	other := connectRawClient(t, s, "other")
	all := connectRawClient(t, s, "")
	waitForClients(t, s, 3)
	// Give the daemon time to process the subscriptions
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, s.Broadcast(events.Event{Type: events.EventRowsChanged, Table: events.DefaultTable, RowID: "r1"}))

	assert.Equal(t, "r1", activities.readEvent(t).RowID)
	assert.Equal(t, "r1", all.readEvent(t).RowID)
	other.expectNoEvent(t)
}

func TestClientEventsAreRelayed(t *testing.T) {
	s := setupTestDaemon(t)
	sender := connectRawClient(t, s, "")
	receiver := connectRawClient(t, s, "")
	waitForClients(t, s, 2)

	require.NoError(t, sender.enc.Encode(events.Message{
		Type:  events.MessageEvent,
		Event: &events.Event{Type: events.EventRowsChanged, Source: "sender", RowID: "r9"},
	}))

	got := receiver.readEvent(t)
	assert.Equal(t, "r9", got.RowID)
	assert.Equal(t, "sender", got.Source)

	// The sender receives its own event too; clients drop it by Source
	assert.Equal(t, "r9", sender.readEvent(t).RowID)
}

func TestClientIntegration(t *testing.T) {
	s := setupTestDaemon(t)

	publisher, err := events.NewClient(s.SocketPath(), events.WithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, publisher.Connect(context.Background()))
	defer publisher.Close()

	listener, err := events.NewClient(s.SocketPath())
	require.NoError(t, err)
	require.NoError(t, listener.Connect(context.Background()))
	defer listener.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := listener.Listen(ctx)
	require.NoError(t, err)

	waitForClients(t, s, 2)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, publisher.SendEvent(events.Event{Type: events.EventRowsChanged, Table: events.DefaultTable, RowID: "624748504"}))

	select {
	case e := <-ch:
		assert.Equal(t, "624748504", e.RowID)
		assert.Equal(t, publisher.ID(), e.Source)
	case <-time.After(3 * time.Second):
		t.Fatal("listener did not receive event")
	}
}

func TestHealthCheck_PingAndStaleRemoval(t *testing.T) {
	s := setupTestDaemon(t, WithHealthCheck(50*time.Millisecond, 150*time.Millisecond))
	c := connectRawClient(t, s, "")
	waitForClients(t, s, 1)

	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var msg events.Message
	require.NoError(t, c.dec.Decode(&msg))
	assert.Equal(t, events.MessagePing, msg.Type)

	// Never answering pings gets the client dropped
	waitForClients(t, s, 0)
}

func TestShutdown(t *testing.T) {
	s := setupTestDaemon(t)
	c := connectRawClient(t, s, "")
	waitForClients(t, s, 1)

	require.NoError(t, s.Shutdown())
	require.NoError(t, s.Shutdown(), "idempotent")

	_, err := os.Stat(s.SocketPath())
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, err = c.conn.Read(make([]byte, 1))
	assert.Error(t, err, "connection closed by the daemon")

	assert.Error(t, s.Broadcast(events.Event{Type: events.EventRowsChanged}))
}

func TestServeMetrics(t *testing.T) {
	reg, err := metrics.NewRegistry()
	require.NoError(t, err)
	s := setupTestDaemon(t, WithRegistry(reg))

	connectRawClient(t, s, "")
	waitForClients(t, s, 1)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.ServeMetrics(ctx, addr) }()

	var body []byte
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, err = io.ReadAll(resp.Body)
		return err == nil
	}, 3*time.Second, 20*time.Millisecond)

	assert.Contains(t, string(body), "tablero_daemon_connected_clients 1")
}

func TestServeMetrics_NoRegistry(t *testing.T) {
	s := setupTestDaemon(t)
	assert.ErrorIs(t, s.ServeMetrics(context.Background(), "127.0.0.1:0"), ErrNoRegistry)
}
