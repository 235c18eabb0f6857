package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tablero/internal/collection"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/tui/state"
)

// recordingSyncer keeps every snapshot it was asked to store
type recordingSyncer struct {
	mu    sync.Mutex
	syncs [][]*models.Row
}

func (s *recordingSyncer) Sync(_ context.Context, rows []*models.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncs = append(s.syncs, rows)
	return nil
}

func (s *recordingSyncer) last() []*models.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.syncs) == 0 {
		return nil
	}
	return s.syncs[len(s.syncs)-1]
}

func (s *recordingSyncer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.syncs)
}

func TestPersister_StructuralChanges(t *testing.T) {
	ctrl := collection.New(collection.WithMaxLength(0))
	require.NoError(t, ctrl.Load(models.LoadResult{Data: models.DefaultRows(), Total: 3, Success: true}))

	store := &recordingSyncer{}
	p := newPersister(ctrl, store)
	p.start(context.Background())
	defer p.stop()

	_, err := ctrl.Delete("624748504")
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return len(store.last()) == 2 }, time.Second, 5*time.Millisecond)
}

func TestPersister_IgnoresEditState(t *testing.T) {
	ctrl := collection.New()
	require.NoError(t, ctrl.Load(models.LoadResult{Data: models.DefaultRows(), Total: 3, Success: true}))

	store := &recordingSyncer{}
	p := newPersister(ctrl, store)
	p.start(context.Background())

	require.NoError(t, ctrl.StartEdit("624748504"))
	require.NoError(t, ctrl.CancelEdit("624748504"))
	p.stop()

	assert.Zero(t, store.count())
}

func TestPersister_StopFlushesAndUnsubscribes(t *testing.T) {
	ctrl := collection.New()
	require.NoError(t, ctrl.Load(models.LoadResult{Data: models.DefaultRows(), Total: 3, Success: true}))

	store := &recordingSyncer{}
	p := newPersister(ctrl, store)
	p.start(context.Background())

	require.NoError(t, ctrl.Reorder(0, 2))
	p.stop()
	p.stop()

	require.NotZero(t, store.count())
	assert.Equal(t, "Activity one", store.last()[2].Title)

	synced := store.count()
	require.NoError(t, ctrl.Reorder(2, 0))
	assert.Equal(t, synced, store.count())
}

func TestFormFields(t *testing.T) {
	allEditable := func(string, *models.Row) (bool, models.Rules) { return true, models.Rules{} }
	rules := collection.DefaultRules{}
	atOffset := func(offset int) func(string, *models.Row) (bool, models.Rules) {
		return func(column string, current *models.Row) (bool, models.Rules) {
			return rules.Editable(column, offset, current), rules.RulesFor(column, offset, current)
		}
	}

	t.Run("edit sends changed columns", func(t *testing.T) {
		fs := state.NewFormState()
		v := fs.Open("1", false, state.FormValues{Title: "a", Description: "b", State: "open"})
		v.Description = "c"

		fields, err := formFields(allEditable, "1", fs)
		require.NoError(t, err)
		assert.Equal(t, []string{models.ColumnDescription}, fields.Columns())
	})

	t.Run("create sends filled columns", func(t *testing.T) {
		fs := state.NewFormState()
		v := fs.Open("1", true, state.FormValues{})
		v.Title = "new"
		v.CreatedAt = "2021-01-02"

		fields, err := formFields(allEditable, "1", fs)
		require.NoError(t, err)
		require.NotNil(t, fields.CreatedAt)
		assert.Equal(t, time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC), *fields.CreatedAt)
		assert.Equal(t, "new", *fields.Title)
		assert.Nil(t, fields.Description)
	})

	t.Run("boring title drops the description", func(t *testing.T) {
		fs := state.NewFormState()
		v := fs.Open("1", false, state.FormValues{Title: "x"})
		v.Title = collection.BoringTitle
		v.Description = "ignored"

		fields, err := formFields(atOffset(1), "1", fs)
		require.NoError(t, err)
		assert.Equal(t, []string{models.ColumnTitle}, fields.Columns())
	})

	t.Run("first row title is read-only", func(t *testing.T) {
		fs := state.NewFormState()
		v := fs.Open("1", false, state.FormValues{Title: "Activity one"})
		v.Title = "renamed"

		fields, err := formFields(atOffset(0), "1", fs)
		require.NoError(t, err)
		assert.True(t, fields.IsEmpty())
	})

	t.Run("required title", func(t *testing.T) {
		fs := state.NewFormState()
		fs.Open("1", true, state.FormValues{})

		_, err := formFields(atOffset(3), "1", fs)
		assert.Error(t, err)
	})

	t.Run("invalid date", func(t *testing.T) {
		fs := state.NewFormState()
		v := fs.Open("1", false, state.FormValues{})
		v.CreatedAt = "yesterday"

		_, err := formFields(allEditable, "1", fs)
		assert.Error(t, err)
	})
}
