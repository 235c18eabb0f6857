package row

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tablero/internal/collection"
	"github.com/thenoetrevino/tablero/internal/database"
	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/models"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// recordingPublisher records every event handed to SendEvent
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Connect(context.Context) error { return nil }
func (p *recordingPublisher) Listen(context.Context) (<-chan events.Event, error) {
	return make(chan events.Event), nil
}
func (p *recordingPublisher) Subscribe(string) error { return nil }
func (p *recordingPublisher) Close() error           { return nil }

func (p *recordingPublisher) SendEvent(e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) sent() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

// failingRepo fails every List
type failingRepo struct {
	database.RowRepository
}

func (failingRepo) List(context.Context) ([]*models.Row, error) {
	return nil, errors.New("disk on fire")
}

// setupService creates a service over a seeded in-memory database
func setupService(t *testing.T, opts ...collection.Option) (*service, *database.RowRepo, *recordingPublisher) {
	t.Helper()
	db, err := database.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := database.NewRowRepo(db)
	pub := &recordingPublisher{}
	svc := NewService(repo, pub, opts...).(*service)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, pub
}

func storedTitles(t *testing.T, repo database.RowRepository) []string {
	t.Helper()
	rows, err := repo.List(context.Background())
	require.NoError(t, err)
	titles := make([]string, len(rows))
	for i, r := range rows {
		titles[i] = r.Title
	}
	return titles
}

func ptr[T any](v T) *T { return &v }

// ============================================================================
// LOAD
// ============================================================================

func TestLoad(t *testing.T) {
	svc, _, _ := setupService(t)

	result := svc.Load(context.Background())

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Total)
	require.Len(t, result.Data, 3)
	assert.Equal(t, "Activity one", result.Data[0].Title)
}

func TestLoad_StorageFailure(t *testing.T) {
	svc := NewService(failingRepo{}, nil)

	result := svc.Load(context.Background())

	assert.False(t, result.Success)
	assert.Empty(t, result.Data)

	_, err := svc.Create(context.Background(), CreateRowRequest{Title: "x"})
	assert.ErrorIs(t, err, models.ErrLoadFailed)
}

// ============================================================================
// CREATE
// ============================================================================

func TestCreate_AppendsAtBottom(t *testing.T) {
	svc, repo, pub := setupService(t)

	created, err := svc.Create(context.Background(), CreateRowRequest{
		ID:    "new-1",
		Title: "Activity four",
		State: models.StateOpen,
	})
	require.NoError(t, err)

	assert.Equal(t, "new-1", created.ID)
	assert.Equal(t, 3, created.Index)
	assert.Equal(t, models.StateOpen, created.State)
	assert.True(t, created.CreatedAt.Equal(fixedNow))

	assert.Equal(t, []string{"Activity one", "Activity two", "Activity three", "Activity four"}, storedTitles(t, repo))

	stored, err := repo.Get(context.Background(), "new-1")
	require.NoError(t, err)
	assert.True(t, stored.UpdatedAt.Equal(fixedNow))
	assert.NotEmpty(t, pub.sent())
}

func TestCreate_AtTop(t *testing.T) {
	svc, repo, _ := setupService(t,
		collection.WithCreatorPosition(collection.PositionTop),
		collection.WithRuleProvider(collection.OpenRules{}))

	_, err := svc.Create(context.Background(), CreateRowRequest{Title: "First"})
	require.NoError(t, err)

	assert.Equal(t, "First", storedTitles(t, repo)[0])
}

func TestCreate_GeneratesID(t *testing.T) {
	svc, _, _ := setupService(t, collection.WithIDGenerator(collection.IDGeneratorFunc(func() string { return "gen-7" })))

	created, err := svc.Create(context.Background(), CreateRowRequest{Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, "gen-7", created.ID)
}

func TestCreate_ExistingIDRejected(t *testing.T) {
	svc, repo, pub := setupService(t)

	_, err := svc.Create(context.Background(), CreateRowRequest{ID: "624691229", Title: "Brand new"})

	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, []string{"Activity one", "Activity two", "Activity three"}, storedTitles(t, repo))
	assert.Empty(t, pub.sent())
}

func TestCreate_GeneratedIDCollisionRejected(t *testing.T) {
	svc, repo, _ := setupService(t, collection.WithIDGenerator(collection.IDGeneratorFunc(func() string { return "624748504" })))

	_, err := svc.Create(context.Background(), CreateRowRequest{Title: "x"})

	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Len(t, storedTitles(t, repo), 3)
}

func TestCreate_RequiredTitle(t *testing.T) {
	svc, repo, pub := setupService(t)

	// The fourth row requires a title
	_, err := svc.Create(context.Background(), CreateRowRequest{Description: "no title"})

	assert.ErrorIs(t, err, ErrRequiredField)
	assert.Len(t, storedTitles(t, repo), 3)
	assert.Empty(t, pub.sent())
}

func TestCreate_MaxLength(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	for _, title := range []string{"four", "five"} {
		_, err := svc.Create(ctx, CreateRowRequest{Title: title})
		require.NoError(t, err)
	}

	_, err := svc.Create(ctx, CreateRowRequest{Title: "six"})
	assert.ErrorIs(t, err, collection.ErrMaxLengthReached)
	assert.Len(t, storedTitles(t, repo), 5)
}

func TestCreate_Hidden(t *testing.T) {
	svc, _, _ := setupService(t, collection.WithCreatorPosition(collection.PositionHidden))

	_, err := svc.Create(context.Background(), CreateRowRequest{Title: "x"})
	assert.ErrorIs(t, err, collection.ErrCreatorHidden)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateRowRequest
		wantErr error
	}{
		{
			name:    "title too long",
			req:     CreateRowRequest{Title: string(make([]rune, models.MaxTitleLength+1))},
			wantErr: ErrTitleTooLong,
		},
		{
			name:    "invalid state",
			req:     CreateRowRequest{Title: "x", State: "pending"},
			wantErr: ErrInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := setupService(t)
			_, err := svc.Create(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ============================================================================
// UPDATE
// ============================================================================

func TestUpdate_Description(t *testing.T) {
	svc, repo, pub := setupService(t)

	updated, err := svc.Update(context.Background(), UpdateRowRequest{
		ID:          "624748504",
		Description: ptr("Quieter fun"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Quieter fun", updated.Description)
	assert.Equal(t, "Activity one", updated.Title)

	stored, err := repo.Get(context.Background(), "624748504")
	require.NoError(t, err)
	assert.Equal(t, "Quieter fun", stored.Description)
	assert.True(t, stored.UpdatedAt.Equal(fixedNow))

	sent := pub.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, events.EventRowsChanged, sent[0].Type)
	assert.Equal(t, "624748504", sent[0].RowID)
}

func TestUpdate_FirstRowTitleNotEditable(t *testing.T) {
	svc, repo, _ := setupService(t)

	_, err := svc.Update(context.Background(), UpdateRowRequest{ID: "624748504", Title: ptr("renamed")})

	assert.ErrorIs(t, err, collection.ErrNotEditable)
	assert.Equal(t, "Activity one", storedTitles(t, repo)[0])
}

func TestUpdate_DuplicateIDChangesFirstOnly(t *testing.T) {
	svc, repo, _ := setupService(t)

	_, err := svc.Update(context.Background(), UpdateRowRequest{ID: "624691229", State: ptr(models.StateOpen)})
	require.NoError(t, err)

	rows, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StateOpen, rows[1].State)
	assert.Equal(t, models.StateClosed, rows[2].State)
}

func TestUpdate_BoringTitleDisablesDescription(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.Update(context.Background(), UpdateRowRequest{
		ID:          "624691229",
		Title:       ptr(collection.BoringTitle),
		Description: ptr("still fun"),
	})

	assert.ErrorIs(t, err, ErrFieldDisabled)
}

func TestUpdate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     UpdateRowRequest
		wantErr error
	}{
		{"empty id", UpdateRowRequest{Title: ptr("x")}, ErrEmptyID},
		{"no fields", UpdateRowRequest{ID: "624748504"}, ErrNoFields},
		{"missing row", UpdateRowRequest{ID: "nope", Description: ptr("x")}, models.ErrRowNotFound},
		{"invalid state", UpdateRowRequest{ID: "624748504", State: ptr(models.State("x"))}, ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := setupService(t)
			_, err := svc.Update(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ============================================================================
// DELETE
// ============================================================================

func TestDelete_RemovesEveryDuplicate(t *testing.T) {
	svc, repo, pub := setupService(t)

	removed, err := svc.Delete(context.Background(), "624691229")
	require.NoError(t, err)

	assert.True(t, removed)
	assert.Equal(t, []string{"Activity one"}, storedTitles(t, repo))
	assert.Len(t, pub.sent(), 1)
}

func TestDelete_AbsentIsNoop(t *testing.T) {
	svc, repo, pub := setupService(t)

	removed, err := svc.Delete(context.Background(), "nope")
	require.NoError(t, err)

	assert.False(t, removed)
	assert.Len(t, storedTitles(t, repo), 3)
	assert.Empty(t, pub.sent())
}

// ============================================================================
// MOVE
// ============================================================================

func TestMove(t *testing.T) {
	tests := []struct {
		name     string
		req      MoveRowRequest
		want     []string
		wantErr  error
		wantSent int
	}{
		{
			name:     "first to last",
			req:      MoveRowRequest{ID: "624748504", Position: 2},
			want:     []string{"Activity two", "Activity three", "Activity one"},
			wantSent: 1,
		},
		{
			name:     "clamped past end",
			req:      MoveRowRequest{ID: "624748504", Position: 99},
			want:     []string{"Activity two", "Activity three", "Activity one"},
			wantSent: 1,
		},
		{
			name: "same position",
			req:  MoveRowRequest{ID: "624748504", Position: 0},
			want: []string{"Activity one", "Activity two", "Activity three"},
		},
		{
			name:    "missing row",
			req:     MoveRowRequest{ID: "nope", Position: 1},
			want:    []string{"Activity one", "Activity two", "Activity three"},
			wantErr: models.ErrRowNotFound,
		},
		{
			name:    "negative position",
			req:     MoveRowRequest{ID: "624748504", Position: -1},
			want:    []string{"Activity one", "Activity two", "Activity three"},
			wantErr: ErrInvalidPosition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, pub := setupService(t)

			_, err := svc.Move(context.Background(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.want, storedTitles(t, repo))
			assert.Len(t, pub.sent(), tt.wantSent)
		})
	}
}

// ============================================================================
// COMMIT
// ============================================================================

func TestCommit_AsControllerCommitter(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	ctrl := collection.New(collection.WithCommitter(svc))
	defer ctrl.Close()
	require.NoError(t, ctrl.Load(svc.Load(ctx)))

	require.NoError(t, ctrl.StartEdit("624748504"))
	require.NoError(t, ctrl.SaveEdit(ctx, "624748504", models.Fields{State: ptr(models.StateClosed)}))

	stored, err := repo.Get(ctx, "624748504")
	require.NoError(t, err)
	assert.Equal(t, models.StateClosed, stored.State)
}

func TestCommit_RejectedLeavesRowInEditMode(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	ctrl := collection.New(collection.WithCommitter(svc))
	defer ctrl.Close()
	require.NoError(t, ctrl.Load(svc.Load(ctx)))
	require.NoError(t, ctrl.StartEdit("624748504"))

	err := ctrl.SaveEdit(ctx, "624748504", models.Fields{State: ptr(models.State("bogus"))})

	assert.ErrorIs(t, err, ErrInvalidState)
	assert.True(t, ctrl.IsEditing("624748504"))
	stored, err := repo.Get(ctx, "624748504")
	require.NoError(t, err)
	assert.Equal(t, models.StateOpen, stored.State)
}

func TestSync_NilPublisher(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer db.Close()
	repo := database.NewRowRepo(db)

	svc := NewService(repo, nil)
	require.NoError(t, svc.Sync(context.Background(), models.DefaultRows()[:1]))

	assert.Equal(t, []string{"Activity one"}, storedTitles(t, repo))
}
