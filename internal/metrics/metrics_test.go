package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/tablero/internal/collection"
	"github.com/thenoetrevino/tablero/internal/models"
)

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	require.NotNil(t, reg.Prometheus())
	assert.GreaterOrEqual(t, reg.Uptime(), time.Duration(0))
}

func TestCollection_Observer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewCollection(reg)
	require.NoError(t, err)

	var _ collection.Observer = m

	m.ObserveOperation("create", "ok")
	m.ObserveOperation("create", "ok")
	m.ObserveOperation("create", "rejected")
	m.ObserveSave(10*time.Millisecond, nil)
	m.ObserveSave(10*time.Millisecond, errors.New("boom"))
	m.SetRowCount(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("create", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.saveFailures))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.rows))
	assert.Equal(t, 1, testutil.CollectAndCount(m.saveDuration))
}

func TestCollection_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollection(reg)
	require.NoError(t, err)

	_, err = NewCollection(reg)
	assert.Error(t, err)
}

func TestCollection_WiredToController(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewCollection(reg)
	require.NoError(t, err)

	c := collection.New(collection.WithObserver(m))
	require.NoError(t, c.Load(models.LoadResult{Data: models.DefaultRows(), Success: true}))
	_, err = c.Delete("624748504")
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.rows))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("delete", "ok")))
}

func TestRegistry_Handler(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	m, err := NewCollection(reg.Prometheus())
	require.NoError(t, err)
	m.SetRowCount(3)

	srv := httptest.NewServer(reg.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "tablero_collection_rows 3")
}

func TestRegistry_ServeStopsOnCancel(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- reg.Serve(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestDaemon(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewDaemon(reg)
	require.NoError(t, err)

	m.IncEventsSent()
	m.IncEventsSent()
	m.IncEventsReceived()
	m.IncEventsDropped()
	m.IncBroadcasts()
	m.SetConnectedClients(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.eventsSent))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsReceived))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsDropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.broadcasts))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.clients))
}
