package row

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/thenoetrevino/tablero/internal/collection"
	"github.com/thenoetrevino/tablero/internal/database"
	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/models"
)

// publishRetries is how often a change event is attempted before giving up
const publishRetries = 3

// Service defines all row-related business operations
type Service interface {
	// Initial fetch and persistence hooks used by a long-lived controller
	Load(ctx context.Context) models.LoadResult
	Commit(ctx context.Context, rowID string, fields models.Fields) error
	Sync(ctx context.Context, rows []*models.Row) error

	// Read operations
	List(ctx context.Context) ([]*models.Row, error)
	Get(ctx context.Context, id string) (*models.Row, error)

	// One-shot write operations; each runs through a controller and persists the result
	Create(ctx context.Context, req CreateRowRequest) (*models.Row, error)
	Update(ctx context.Context, req UpdateRowRequest) (*models.Row, error)
	Delete(ctx context.Context, id string) (bool, error)
	Move(ctx context.Context, req MoveRowRequest) ([]*models.Row, error)
}

// CreateRowRequest encapsulates all data needed to create a row.
// An empty ID is generated.
type CreateRowRequest struct {
	ID          string
	Title       string
	Description string
	State       models.State
	CreatedAt   *time.Time // nil means now
}

// UpdateRowRequest encapsulates all data needed to update a row.
// Fields with pointers are optional - nil means don't update
type UpdateRowRequest struct {
	ID          string
	Title       *string
	Description *string
	State       *models.State
	CreatedAt   *time.Time
}

// Fields returns the changed columns
func (r UpdateRowRequest) Fields() models.Fields {
	return models.Fields{
		Title:       r.Title,
		Description: r.Description,
		State:       r.State,
		CreatedAt:   r.CreatedAt,
	}
}

// MoveRowRequest moves the row with ID to position Position (zero-based)
type MoveRowRequest struct {
	ID       string
	Position int
}

// service implements Service interface
type service struct {
	repo        database.RowRepository
	eventClient events.EventPublisher
	options     []collection.Option
	now         func() time.Time
}

// NewService creates a new row service. opts configure the controllers that
// one-shot operations run through (max length, creator position, id format, rules).
// eventClient may be nil.
func NewService(repo database.RowRepository, eventClient events.EventPublisher, opts ...collection.Option) Service {
	return &service{
		repo:        repo,
		eventClient: eventClient,
		options:     opts,
		now:         time.Now,
	}
}

// Load fetches the stored rows in the {data, total, success} shape.
// Storage failures are logged and reported as success=false.
func (s *service) Load(ctx context.Context) models.LoadResult {
	rows, err := s.repo.List(ctx)
	if err != nil {
		slog.Error("failed to load rows", "error", err)
		return models.LoadResult{Data: []*models.Row{}, Success: false}
	}
	return models.LoadResult{Data: rows, Total: len(rows), Success: true}
}

// Commit persists the fields of one edited row. It is the commit step of SaveEdit.
func (s *service) Commit(ctx context.Context, rowID string, fields models.Fields) error {
	if rowID == "" {
		return ErrEmptyID
	}
	if err := validateFields(fields); err != nil {
		return err
	}

	if err := s.repo.UpdateFields(ctx, rowID, fields, s.now()); err != nil {
		return fmt.Errorf("failed to update row: %w", err)
	}

	s.publish(rowID)
	return nil
}

// Sync replaces the stored collection with rows, keeping their order
func (s *service) Sync(ctx context.Context, rows []*models.Row) error {
	if err := s.repo.Replace(ctx, rows); err != nil {
		return fmt.Errorf("failed to store rows: %w", err)
	}

	s.publish("")
	return nil
}

// List returns every row in display order
func (s *service) List(ctx context.Context) ([]*models.Row, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rows: %w", err)
	}
	return rows, nil
}

// Get returns the first row with the given id
func (s *service) Get(ctx context.Context, id string) (*models.Row, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	return s.repo.Get(ctx, id)
}

// Create inserts a row at the configured creator position and saves its fields
func (s *service) Create(ctx context.Context, req CreateRowRequest) (*models.Row, error) {
	createdAt := s.now()
	if req.CreatedAt != nil {
		createdAt = *req.CreatedAt
	}
	fields := models.Fields{CreatedAt: &createdAt}
	if req.Title != "" {
		fields.Title = &req.Title
	}
	if req.Description != "" {
		fields.Description = &req.Description
	}
	if req.State != "" {
		fields.State = &req.State
	}
	if err := validateFields(fields); err != nil {
		return nil, err
	}

	ctrl, err := s.controller(ctx)
	if err != nil {
		return nil, err
	}
	defer ctrl.Close()

	// Rows sharing an id cannot be told apart by later edits
	id := req.ID
	if id == "" {
		id = ctrl.NewRow().ID
	}
	if ctrl.OffsetOfID(id) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}

	created, err := ctrl.Create(&models.Row{ID: id})
	if err != nil {
		return nil, err
	}

	if err := s.checkRules(ctrl, created.ID, fields); err != nil {
		return nil, err
	}
	if err := ctrl.SaveEdit(ctx, created.ID, fields); err != nil {
		return nil, err
	}

	rows := ctrl.Rows()
	if err := s.Sync(ctx, rows); err != nil {
		return nil, err
	}

	return rows[ctrl.ResolveOffset(created)], nil
}

// Update merges the given fields into the row through StartEdit and SaveEdit.
// Commit persists the change.
func (s *service) Update(ctx context.Context, req UpdateRowRequest) (*models.Row, error) {
	if req.ID == "" {
		return nil, ErrEmptyID
	}
	fields := req.Fields()
	if fields.IsEmpty() {
		return nil, ErrNoFields
	}
	if err := validateFields(fields); err != nil {
		return nil, err
	}

	ctrl, err := s.controller(ctx, collection.WithCommitter(s))
	if err != nil {
		return nil, err
	}
	defer ctrl.Close()

	if err := ctrl.StartEdit(req.ID); err != nil {
		return nil, err
	}
	if err := s.checkRules(ctrl, req.ID, fields); err != nil {
		return nil, err
	}
	if err := ctrl.SaveEdit(ctx, req.ID, fields); err != nil {
		return nil, err
	}

	rows := ctrl.Rows()
	return rows[ctrl.OffsetOfID(req.ID)], nil
}

// Delete removes every row with the given id. Deleting an absent id is not an error.
func (s *service) Delete(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, ErrEmptyID
	}

	ctrl, err := s.controller(ctx)
	if err != nil {
		return false, err
	}
	defer ctrl.Close()

	removed, err := ctrl.Delete(id)
	if err != nil || !removed {
		return false, err
	}

	if err := s.Sync(ctx, ctrl.Rows()); err != nil {
		return false, err
	}
	return true, nil
}

// Move moves the row with the given id to req.Position; positions past the end are clamped
func (s *service) Move(ctx context.Context, req MoveRowRequest) ([]*models.Row, error) {
	if req.ID == "" {
		return nil, ErrEmptyID
	}
	if req.Position < 0 {
		return nil, ErrInvalidPosition
	}

	ctrl, err := s.controller(ctx)
	if err != nil {
		return nil, err
	}
	defer ctrl.Close()

	from := ctrl.OffsetOfID(req.ID)
	if from < 0 {
		return nil, models.ErrRowNotFound
	}

	to := req.Position
	if last := ctrl.Len() - 1; to > last {
		to = last
	}
	if from == to {
		return ctrl.Rows(), nil
	}

	if err := ctrl.Reorder(from, to); err != nil {
		return nil, err
	}

	rows := ctrl.Rows()
	if err := s.Sync(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// controller returns a controller loaded with the stored rows.
// Rows are resolved by id since one-shot operations address rows by id.
// Without a committer in extra, edits are persisted by Sync only.
func (s *service) controller(ctx context.Context, extra ...collection.Option) (*collection.Controller, error) {
	opts := make([]collection.Option, 0, len(s.options)+len(extra)+3)
	opts = append(opts, s.options...)
	opts = append(opts, collection.WithClock(s.now), collection.WithMatchKey(collection.MatchByID), collection.WithCommitter(nil))
	opts = append(opts, extra...)

	ctrl := collection.New(opts...)
	if err := ctrl.Load(s.Load(ctx)); err != nil {
		ctrl.Close()
		return nil, err
	}
	return ctrl, nil
}

// checkRules applies the required and disabled rules of the row's current
// display position to the row as it would look after the edit
func (s *service) checkRules(ctrl *collection.Controller, id string, fields models.Fields) error {
	offset := ctrl.OffsetOfID(id)
	if offset < 0 {
		return models.ErrRowNotFound
	}

	merged := ctrl.Rows()[offset]
	merged.Apply(fields)

	submitted := map[string]bool{}
	for _, col := range fields.Columns() {
		submitted[col] = true
	}

	for _, col := range models.EditableColumns {
		rules := ctrl.RulesFor(col, offset, merged)
		if rules.Disabled && submitted[col] {
			return fmt.Errorf("%s: %w", col, ErrFieldDisabled)
		}
		if rules.Required && !rules.Disabled && isBlank(col, merged) {
			return fmt.Errorf("%s: %w", col, ErrRequiredField)
		}
	}
	return nil
}

func isBlank(column string, r *models.Row) bool {
	switch column {
	case models.ColumnTitle:
		return r.Title == ""
	case models.ColumnDescription:
		return r.Description == ""
	case models.ColumnState:
		return r.State == ""
	case models.ColumnCreatedAt:
		return r.CreatedAt.IsZero()
	}
	return false
}

func validateFields(f models.Fields) error {
	if f.Title != nil && utf8.RuneCountInString(*f.Title) > models.MaxTitleLength {
		return ErrTitleTooLong
	}
	if f.State != nil && !f.State.Valid() {
		return ErrInvalidState
	}
	return nil
}

// publish notifies other processes that the rows changed (fire-and-forget)
func (s *service) publish(rowID string) {
	if s.eventClient == nil {
		return
	}
	_ = events.PublishWithRetry(s.eventClient, events.Event{
		Type:      events.EventRowsChanged,
		Table:     events.DefaultTable,
		RowID:     rowID,
		Timestamp: s.now(),
	}, publishRetries)
}
