package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tablero/internal/collection"
	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/database"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/services/row"
	"github.com/thenoetrevino/tablero/internal/tui/state"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

// setupTestModel creates a sized model over a seeded in-memory database
func setupTestModel(t *testing.T, ctx context.Context, mutate func(*config.Config)) (Model, row.Service) {
	t.Helper()
	svc := seededService(t)
	return newTestModel(t, ctx, mutate, svc), svc
}

// seededService returns a row service over a seeded in-memory database
func seededService(t *testing.T) row.Service {
	t.Helper()
	db, err := database.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return row.NewService(database.NewRowRepo(db), nil)
}

// newTestModel creates a sized model over svc with saves that commit immediately
func newTestModel(t *testing.T, ctx context.Context, mutate func(*config.Config), svc row.Service) Model {
	t.Helper()
	cfg := config.Default()
	cfg.Table.SaveDelay = 0
	if mutate != nil {
		mutate(cfg)
	}

	m := InitialModel(ctx, cfg, svc, nil, collection.WithMaxLength(cfg.Table.MaxLength))
	t.Cleanup(m.Close)

	return update(m, tea.WindowSizeMsg{Width: 120, Height: 40})
}

// flakyCommits fails the first failures commits, then commits through the service
type flakyCommits struct {
	row.Service
	mu       sync.Mutex
	failures int
}

func (f *flakyCommits) Commit(ctx context.Context, rowID string, fields models.Fields) error {
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return errors.New("network down")
	}
	f.mu.Unlock()
	return f.Service.Commit(ctx, rowID, fields)
}

// keyPress builds the key message a terminal sends for s
func keyPress(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg(tea.Key{Code: tea.KeyEnter})
	case "esc":
		return tea.KeyPressMsg(tea.Key{Code: tea.KeyEscape})
	case "up":
		return tea.KeyPressMsg(tea.Key{Code: tea.KeyUp})
	case "down":
		return tea.KeyPressMsg(tea.Key{Code: tea.KeyDown})
	case "space":
		return tea.KeyPressMsg(tea.Key{Code: tea.KeySpace})
	case "ctrl+s":
		return tea.KeyPressMsg(tea.Key{Code: 's', Mod: tea.ModCtrl})
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg(tea.Key{Code: r, Text: s})
}

func update(m Model, msg tea.Msg) Model {
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		m = update(m, keyPress(k))
	}
	return m
}

// pressCmd sends one key and returns the command it produced
func pressCmd(m Model, k string) (Model, tea.Cmd) {
	updated, cmd := m.Update(keyPress(k))
	return updated.(Model), cmd
}

// save submits the open form and feeds the save result back
func save(t *testing.T, m Model) Model {
	t.Helper()
	m, cmd := pressCmd(m, "ctrl+s")
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, saveDoneMsg{}, msg)
	return update(m, msg)
}

func titles(rows []*models.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Title
	}
	return out
}

func lastNotification(t *testing.T, m Model) state.Notification {
	t.Helper()
	n, ok := m.NotificationState.Last()
	require.True(t, ok, "expected a notification")
	return n
}

// ============================================================================
// RENDERING AND NAVIGATION
// ============================================================================

func TestInitialModel_LoadsSeedRows(t *testing.T) {
	m, _ := setupTestModel(t, context.Background(), nil)

	assert.Equal(t, 3, m.Ctrl.Len())

	content := m.View().Content
	assert.Contains(t, content, "Activity one")
	assert.Contains(t, content, "624691229")
	assert.Contains(t, content, "3/5 rows")
}

func TestView_LoadingBeforeSize(t *testing.T) {
	m, _ := setupTestModel(t, context.Background(), nil)
	m.UIState.SetSize(0, 0)

	assert.Equal(t, "Loading...", m.View().Content)
}

func TestNavigation_Bounds(t *testing.T) {
	m, _ := setupTestModel(t, context.Background(), nil)

	m = press(m, "k")
	assert.Equal(t, 0, m.UIState.Selected())

	m = press(m, "j", "down", "j")
	assert.Equal(t, 2, m.UIState.Selected())

	m = press(m, "up")
	assert.Equal(t, 1, m.UIState.Selected())
}

func TestCycleFilter(t *testing.T) {
	m, _ := setupTestModel(t, context.Background(), nil)

	m = press(m, "f")
	assert.Equal(t, models.StateOpen, m.UIState.Filter())
	assert.Equal(t, []string{"Activity one"}, titles(m.rendered()))

	m = press(m, "f")
	assert.Equal(t, []string{"Activity two", "Activity three"}, titles(m.rendered()))
}

func TestHelpAndPreview(t *testing.T) {
	m, _ := setupTestModel(t, context.Background(), nil)

	m = press(m, "?")
	assert.Equal(t, state.HelpMode, m.UIState.Mode())
	assert.Contains(t, m.View().Content, "Key bindings")

	m = press(m, "esc")
	assert.Equal(t, state.NormalMode, m.UIState.Mode())

	m = press(m, "space")
	assert.True(t, m.UIState.PreviewOpen())
}

func TestQuit(t *testing.T) {
	m, _ := setupTestModel(t, context.Background(), nil)

	_, cmd := pressCmd(m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

// ============================================================================
// CREATE / EDIT
// ============================================================================

func TestAddRow_SaveAndPersist(t *testing.T) {
	m, svc := setupTestModel(t, context.Background(), nil)

	m = press(m, "a")
	require.Equal(t, state.FormMode, m.UIState.Mode())
	require.Equal(t, 4, m.Ctrl.Len())

	id := m.FormState.RowID()
	assert.True(t, m.FormState.Creating())
	assert.True(t, m.Ctrl.IsEditing(id))
	assert.Equal(t, 3, m.UIState.Selected())

	m.FormState.Values().Title = "Activity four"
	m.FormState.Values().State = string(models.StateOpen)
	m = save(t, m)

	assert.Equal(t, state.NormalMode, m.UIState.Mode())
	assert.False(t, m.Ctrl.IsEditing(id))
	assert.Equal(t, "Activity four", m.Ctrl.Rows()[3].Title)
	assert.Equal(t, state.LevelInfo, lastNotification(t, m).Level)

	assert.Eventually(t, func() bool {
		rows, err := svc.List(context.Background())
		return err == nil && len(rows) == 4 && rows[3].Title == "Activity four"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAddRow_RequiredTitleKeepsFormOpen(t *testing.T) {
	m, _ := setupTestModel(t, context.Background(), nil)

	m = press(m, "a")
	m, cmd := pressCmd(m, "ctrl+s")

	assert.Nil(t, cmd)
	assert.Equal(t, state.FormMode, m.UIState.Mode())
	assert.Equal(t, state.LevelError, lastNotification(t, m).Level)
}

func TestAddRow_CancelRemovesFreshRow(t *testing.T) {
	m, _ := setupTestModel(t, context.Background(), nil)

	m = press(m, "a", "esc")

	assert.Equal(t, state.NormalMode, m.UIState.Mode())
	assert.Equal(t, 3, m.Ctrl.Len())
}

func TestAddRow_LimitReached(t *testing.T) {
	m, _ := setupTestModel(t, context.Background(), func(c *config.Config) { c.Table.MaxLength = 3 })

	m = press(m, "a")

	assert.Equal(t, state.NormalMode, m.UIState.Mode())
	assert.Equal(t, 3, m.Ctrl.Len())
	assert.Equal(t, state.LevelWarning, lastNotification(t, m).Level)
}

func TestEditRow_FirstRowDescription(t *testing.T) {
	m, _ := setupTestModel(t, context.Background(), nil)

	m = press(m, "e")
	require.Equal(t, state.FormMode, m.UIState.Mode())
	assert.Equal(t, "624748504", m.FormState.RowID())

	m.FormState.Values().Description = "Even more fun"
	m = save(t, m)

	first := m.Ctrl.Rows()[0]
	assert.Equal(t, "Even more fun", first.Description)
	assert.Equal(t, "Activity one", first.Title)
}

func TestEditRow_FailedSaveReopensTypedValues(t *testing.T) {
	svc := &flakyCommits{Service: seededService(t), failures: 1}
	m := newTestModel(t, context.Background(), nil, svc)

	m = press(m, "j", "e")
	m.FormState.Values().Title = "Activity twoZZ"
	m = save(t, m)

	assert.Equal(t, state.FormMode, m.UIState.Mode())
	assert.Equal(t, "624691229", m.FormState.RowID())
	assert.Equal(t, "Activity twoZZ", m.FormState.Values().Title)
	assert.True(t, m.Ctrl.IsEditing("624691229"))
	assert.Equal(t, "Activity two", m.Ctrl.Rows()[1].Title, "nothing merged")
	assert.Equal(t, state.LevelError, lastNotification(t, m).Level)

	// The retry still sends the title, measured against the stored value
	m = save(t, m)
	assert.Equal(t, state.NormalMode, m.UIState.Mode())
	assert.False(t, m.Ctrl.IsEditing("624691229"))
	assert.Equal(t, "Activity twoZZ", m.Ctrl.Rows()[1].Title)
	assert.Empty(t, m.FormState.HeldIDs())
}

func TestEditRow_FailedSaveWhileOtherDialogOpen(t *testing.T) {
	svc := &flakyCommits{Service: seededService(t), failures: 1}
	m := newTestModel(t, context.Background(), nil, svc)

	m = press(m, "j", "e")
	m.FormState.Values().Description = "typed"
	m, cmd := pressCmd(m, "ctrl+s")
	require.NotNil(t, cmd)
	done := cmd()

	m = press(m, "?")
	require.Equal(t, state.HelpMode, m.UIState.Mode())
	m = update(m, done)
	assert.Equal(t, state.HelpMode, m.UIState.Mode(), "the held edit waits")

	m = press(m, "esc", "e")
	require.Equal(t, state.FormMode, m.UIState.Mode())
	assert.Equal(t, "typed", m.FormState.Values().Description)
}

func TestEditRow_RulesFollowRowAfterReload(t *testing.T) {
	m, _ := setupTestModel(t, context.Background(), nil)

	m = press(m, "j", "e")
	rules := m.rulesFor("624691229")
	editable, _ := rules(models.ColumnTitle, nil)
	require.True(t, editable)

	// The first row goes away, so the edited row is now on top
	rest := models.DefaultRows()[1:]
	m = update(m, reloadedMsg{Result: models.LoadResult{Data: rest, Total: len(rest), Success: true}})
	require.Equal(t, state.FormMode, m.UIState.Mode())

	editable, _ = rules(models.ColumnTitle, nil)
	assert.False(t, editable)

	m.FormState.Values().Title = "Renamed"
	m.FormState.Values().Description = "still fun"
	m = save(t, m)
	assert.Equal(t, "Activity two", m.Ctrl.Rows()[0].Title)
	assert.Equal(t, "still fun", m.Ctrl.Rows()[0].Description)
}

func TestEditRow_CancelKeepsValues(t *testing.T) {
	m, _ := setupTestModel(t, context.Background(), nil)

	m = press(m, "j", "e")
	m.FormState.Values().Title = "changed"
	m = press(m, "esc")

	assert.Equal(t, "Activity two", m.Ctrl.Rows()[1].Title)
	assert.False(t, m.Ctrl.IsEditing("624691229"))
}

// ============================================================================
// DELETE / REORDER
// ============================================================================

func TestDelete_ConfirmRemovesDuplicates(t *testing.T) {
	m, _ := setupTestModel(t, context.Background(), nil)

	m = press(m, "j", "d")
	require.Equal(t, state.DeleteConfirmMode, m.UIState.Mode())
	assert.Contains(t, m.View().Content, "624691229")

	m = press(m, "y")
	assert.Equal(t, []string{"Activity one"}, titles(m.Ctrl.Rows()))
	assert.Equal(t, 0, m.UIState.Selected())
}

func TestDelete_Decline(t *testing.T) {
	m, _ := setupTestModel(t, context.Background(), nil)

	m = press(m, "d", "n")

	assert.Equal(t, state.NormalMode, m.UIState.Mode())
	assert.Equal(t, 3, m.Ctrl.Len())
}

func TestMoveRow(t *testing.T) {
	m, _ := setupTestModel(t, context.Background(), nil)

	m = press(m, "J")
	assert.Equal(t, []string{"Activity two", "Activity one", "Activity three"}, titles(m.Ctrl.Rows()))
	assert.Equal(t, 1, m.UIState.Selected())

	m = press(m, "K", "K")
	assert.Equal(t, []string{"Activity one", "Activity two", "Activity three"}, titles(m.Ctrl.Rows()))
	assert.Equal(t, 0, m.UIState.Selected())
}

func TestDrag_DropAndCancel(t *testing.T) {
	m, _ := setupTestModel(t, context.Background(), nil)

	m = press(m, "g", "j", "j")
	require.Equal(t, state.DragMode, m.UIState.Mode())
	assert.Equal(t, []string{"Activity two", "Activity three", "Activity one"}, titles(m.dragPreview(m.rendered())))
	assert.Equal(t, []string{"Activity one", "Activity two", "Activity three"}, titles(m.Ctrl.Rows()), "nothing moves before the drop")

	m = press(m, "enter")
	assert.Equal(t, state.NormalMode, m.UIState.Mode())
	assert.Equal(t, []string{"Activity two", "Activity three", "Activity one"}, titles(m.Ctrl.Rows()))

	m = press(m, "g", "k", "esc")
	assert.Equal(t, 2, m.UIState.Selected())
	assert.Equal(t, []string{"Activity two", "Activity three", "Activity one"}, titles(m.Ctrl.Rows()))
}

func TestMoveRow_Filtered(t *testing.T) {
	m, _ := setupTestModel(t, context.Background(), nil)

	// Closed rows only: the two rows sharing an id are told apart by index
	m = press(m, "f", "f", "J")

	assert.Equal(t, []string{"Activity one", "Activity three", "Activity two"}, titles(m.Ctrl.Rows()))
}

func TestDrag_ReloadWhileGrabbed(t *testing.T) {
	m, _ := setupTestModel(t, context.Background(), nil)

	m = press(m, "g")
	require.Equal(t, state.DragMode, m.UIState.Mode())

	// Another process prepends a row while the first row is grabbed
	fresh := append([]*models.Row{{ID: "x", Index: 9, Title: "X"}}, models.DefaultRows()...)
	m = update(m, reloadedMsg{Result: models.LoadResult{Data: fresh, Total: len(fresh), Success: true}})

	assert.Equal(t, []string{"Activity one", "X", "Activity two", "Activity three"}, titles(m.dragPreview(m.rendered())))

	m = press(m, "j", "j", "enter")
	assert.Equal(t, state.NormalMode, m.UIState.Mode())
	assert.Equal(t, []string{"X", "Activity two", "Activity one", "Activity three"}, titles(m.Ctrl.Rows()))
	assert.Equal(t, "624748504", m.Ctrl.Rows()[2].ID)
}

func TestDrag_GrabbedRowRemovedByReload(t *testing.T) {
	m, _ := setupTestModel(t, context.Background(), nil)

	m = press(m, "g")
	rest := models.DefaultRows()[1:]
	m = update(m, reloadedMsg{Result: models.LoadResult{Data: rest, Total: len(rest), Success: true}})

	m = press(m, "j", "enter")
	assert.Equal(t, state.NormalMode, m.UIState.Mode())
	assert.Equal(t, []string{"Activity two", "Activity three"}, titles(m.Ctrl.Rows()))
	assert.Equal(t, state.LevelWarning, lastNotification(t, m).Level)
}

// ============================================================================
// LIVE UPDATES
// ============================================================================

func TestRowsChanged_DeferredWhileSaving(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m, _ := setupTestModel(t, ctx, func(c *config.Config) { c.Table.SaveDelay = time.Hour })

	m = press(m, "j", "e")
	m.FormState.Values().Description = "slow"
	m, cmd := pressCmd(m, "ctrl+s")
	require.NotNil(t, cmd)

	var (
		wg   sync.WaitGroup
		done tea.Msg
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		done = cmd()
	}()

	require.Eventually(t, func() bool { return m.Ctrl.IsSaving("624691229") }, time.Second, 5*time.Millisecond)

	m, reload := func() (Model, tea.Cmd) {
		updated, c := m.Update(rowsChangedMsg{})
		return updated.(Model), c
	}()
	assert.Nil(t, reload, "reload waits for the save")
	assert.True(t, m.pendingReload)

	cancel()
	wg.Wait()

	updated, after := m.Update(done)
	m = updated.(Model)
	assert.NotNil(t, after, "deferred reload runs once the save settles")
	assert.False(t, m.pendingReload)
	assert.Equal(t, state.LevelError, lastNotification(t, m).Level)
}

func TestReloaded_ReplacesRows(t *testing.T) {
	m, _ := setupTestModel(t, context.Background(), nil)
	m.UIState.SetSelected(2)

	m = update(m, reloadedMsg{Result: models.LoadResult{
		Data:    models.DefaultRows()[:1],
		Total:   1,
		Success: true,
	}})

	assert.Equal(t, 1, m.Ctrl.Len())
	assert.Equal(t, 0, m.UIState.Selected())
}

func TestReloaded_ClosesFormOfRemovedRow(t *testing.T) {
	m, _ := setupTestModel(t, context.Background(), nil)
	m = press(m, "j", "e")

	m = update(m, reloadedMsg{Result: models.LoadResult{
		Data:    models.DefaultRows()[:1],
		Total:   1,
		Success: true,
	}})

	assert.Equal(t, state.NormalMode, m.UIState.Mode())
	assert.Equal(t, state.LevelWarning, lastNotification(t, m).Level)
}

func TestReloaded_Failure(t *testing.T) {
	m, _ := setupTestModel(t, context.Background(), nil)

	m = update(m, reloadedMsg{Result: models.LoadResult{Success: false}})

	assert.Equal(t, 0, m.Ctrl.Len())
	assert.Equal(t, state.LevelError, lastNotification(t, m).Level)
}
