// Package collection owns the ordered row collection of the activity table and
// mediates every mutation to it: create, edit, save, delete and reorder.
package collection

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/thenoetrevino/tablero/internal/models"
)

// ChangeKind identifies the operation that produced a Change
type ChangeKind string

const (
	ChangeLoaded     ChangeKind = "loaded"
	ChangeCreated    ChangeKind = "created"
	ChangeEditing    ChangeKind = "editing"
	ChangeCanceled   ChangeKind = "canceled"
	ChangeSaving     ChangeKind = "saving"
	ChangeSaved      ChangeKind = "saved"
	ChangeSaveFailed ChangeKind = "save_failed"
	ChangeDeleted    ChangeKind = "deleted"
	ChangeReordered  ChangeKind = "reordered"
)

// Structural reports whether the change altered membership or order of the rows.
// Saved changes are persisted by the Committer instead.
func (k ChangeKind) Structural() bool {
	return k == ChangeCreated || k == ChangeDeleted || k == ChangeReordered
}

// Change is published to subscribers after every mutation
type Change struct {
	Kind  ChangeKind
	RowID string
	Rows  []*models.Row // copy of the collection after the change
	Err   error
}

// Snapshot is a point-in-time copy of the controller state
type Snapshot struct {
	Rows     []*models.Row
	Editable []string
	Saving   []string
	Version  uint64
}

// Controller is the sole owner of the row collection and its edit state.
// All methods are safe for concurrent use.
type Controller struct {
	mu       sync.Mutex
	rows     []*models.Row
	editable EditableSet
	saving   map[string]struct{}
	fresh    map[string]struct{} // created rows that were never saved

	// generation is bumped whenever the collection is replaced wholesale
	generation uint64
	version    uint64
	closed     bool

	subs    map[int]func(Change)
	nextSub int

	maxLength int
	position  CreatorPosition
	ids       IDGenerator
	committer Committer
	rules     RuleProvider
	matchKey  MatchKey
	observer  Observer
	now       func() time.Time
}

// New creates an empty controller
func New(opts ...Option) *Controller {
	c := &Controller{
		rows:      []*models.Row{},
		editable:  EditableSet{},
		saving:    map[string]struct{}{},
		fresh:     map[string]struct{}{},
		subs:      map[int]func(Change){},
		maxLength: models.DefaultMaxLength,
		position:  PositionBottom,
		ids:       NumericGenerator{},
		rules:     DefaultRules{},
		matchKey:  MatchByID,
		observer:  nopObserver{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the collection with the result of the initial fetch.
// success=false empties the collection and returns ErrLoadFailed.
// Saves still pending against the previous collection are discarded when they complete.
func (c *Controller) Load(result models.LoadResult) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	c.generation++

	var err error
	rows := []*models.Row{}
	if result.Success {
		for _, r := range result.Data {
			if r != nil {
				rows = append(rows, r.Clone())
			}
		}
	} else {
		err = ErrLoadFailed
	}
	c.rows = rows

	// Rows that survived the reload stay in edit mode
	for id := range c.editable {
		if indexOfID(rows, id) < 0 {
			c.editable.Remove(id)
			delete(c.fresh, id)
		}
	}

	notify := c.changeLocked(ChangeLoaded, "", err)
	c.mu.Unlock()

	c.observe("load", err)
	notify()
	return err
}

// NewRow returns an empty row carrying a freshly generated id
func (c *Controller) NewRow() *models.Row {
	return &models.Row{ID: c.ids.NewID()}
}

// Create inserts row at the configured position and puts it in edit mode.
// A nil row or empty id gets a generated id. Create is rejected without any
// mutation when creation is hidden or the collection is full.
func (c *Controller) Create(row *models.Row) (*models.Row, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}

	if c.position == PositionHidden {
		c.mu.Unlock()
		c.observe("create", ErrCreatorHidden)
		return nil, ErrCreatorHidden
	}

	if c.maxLength > 0 && len(c.rows)+1 > c.maxLength {
		c.mu.Unlock()
		c.observe("create", ErrMaxLengthReached)
		return nil, ErrMaxLengthReached
	}

	if row == nil {
		row = &models.Row{}
	} else {
		row = row.Clone()
	}
	if row.ID == "" {
		row.ID = c.ids.NewID()
	}
	row.Index = c.nextIndexLocked()

	if c.position == PositionTop {
		c.rows = append([]*models.Row{row}, c.rows...)
	} else {
		c.rows = append(c.rows, row)
	}

	c.editable.Add(row.ID)
	c.fresh[row.ID] = struct{}{}

	created := row.Clone()
	notify := c.changeLocked(ChangeCreated, row.ID, nil)
	c.mu.Unlock()

	c.observe("create", nil)
	notify()
	return created, nil
}

// StartEdit puts the row with the given id in edit mode.
// It is a no-op when the row is already being edited.
func (c *Controller) StartEdit(id string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	idx := indexOfID(c.rows, id)
	if idx < 0 {
		c.mu.Unlock()
		c.observe("start_edit", ErrRowNotFound)
		return ErrRowNotFound
	}

	if c.editable.Has(id) {
		c.mu.Unlock()
		return nil
	}

	if !rowEditable(c.rules, idx, c.rows[idx]) {
		c.mu.Unlock()
		c.observe("start_edit", ErrNotEditable)
		return ErrNotEditable
	}

	c.editable.Add(id)
	notify := c.changeLocked(ChangeEditing, id, nil)
	c.mu.Unlock()

	c.observe("start_edit", nil)
	notify()
	return nil
}

// CancelEdit leaves edit mode without merging anything.
// Canceling a created row that was never saved removes it.
func (c *Controller) CancelEdit(id string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	if _, pending := c.saving[id]; pending {
		c.mu.Unlock()
		return ErrSaveInProgress
	}

	if !c.editable.Has(id) {
		c.mu.Unlock()
		return nil
	}

	c.editable.Remove(id)
	kind := ChangeCanceled
	if _, ok := c.fresh[id]; ok {
		delete(c.fresh, id)
		c.rows = removeID(c.rows, id)
		kind = ChangeDeleted
	}

	notify := c.changeLocked(kind, id, nil)
	c.mu.Unlock()

	c.observe("cancel_edit", nil)
	notify()
	return nil
}

// SaveEdit commits fields for a row in edit mode, then merges them into the row
// in place and takes it out of edit mode. The commit runs without holding the
// lock, so other rows can be changed meanwhile. While it runs the row reports
// IsSaving and a second SaveEdit for it fails with ErrSaveInProgress.
//
// If the commit fails the row keeps its fields and stays in edit mode.
// If the controller was closed or reloaded in the meantime the result is discarded.
func (c *Controller) SaveEdit(ctx context.Context, id string, fields models.Fields) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	if !c.editable.Has(id) {
		c.mu.Unlock()
		return ErrNotEditing
	}

	if _, pending := c.saving[id]; pending {
		c.mu.Unlock()
		return ErrSaveInProgress
	}

	idx := indexOfID(c.rows, id)
	if idx < 0 {
		c.mu.Unlock()
		return ErrRowNotFound
	}

	for _, col := range fields.Columns() {
		if !c.rules.Editable(col, idx, c.rows[idx]) {
			c.mu.Unlock()
			c.observe("save_edit", ErrNotEditable)
			return fmt.Errorf("column %s: %w", col, ErrNotEditable)
		}
	}

	c.saving[id] = struct{}{}
	gen := c.generation
	committer := c.committer
	notify := c.changeLocked(ChangeSaving, id, nil)
	c.mu.Unlock()
	notify()

	start := time.Now()
	var err error
	if committer != nil {
		err = committer.Commit(ctx, id, fields)
	}
	c.observer.ObserveSave(time.Since(start), err)

	c.mu.Lock()
	delete(c.saving, id)

	if err != nil {
		notify = c.changeLocked(ChangeSaveFailed, id, err)
		c.mu.Unlock()
		notify()
		return fmt.Errorf("commit row %s: %w", id, err)
	}

	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	if gen != c.generation {
		c.mu.Unlock()
		return ErrStale
	}

	idx = indexOfID(c.rows, id)
	if idx < 0 {
		// Deleted while saving
		c.mu.Unlock()
		return ErrRowNotFound
	}

	row := c.rows[idx]
	row.Apply(fields)
	row.UpdatedAt = c.now()

	c.editable.Remove(id)
	delete(c.fresh, id)

	notify = c.changeLocked(ChangeSaved, id, nil)
	c.mu.Unlock()

	c.observe("save_edit", nil)
	notify()
	return nil
}

// Delete removes every row with the given id and takes it out of edit mode.
// It reports whether anything was removed; deleting an absent id is not an error.
func (c *Controller) Delete(id string) (bool, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, ErrClosed
	}

	before := len(c.rows)
	c.rows = removeID(c.rows, id)
	c.editable.Remove(id)
	delete(c.fresh, id)

	if len(c.rows) == before {
		c.mu.Unlock()
		c.observe("delete", nil)
		return false, nil
	}

	notify := c.changeLocked(ChangeDeleted, id, nil)
	c.mu.Unlock()

	c.observe("delete", nil)
	notify()
	return true, nil
}

// Reorder moves the row at oldPosition to newPosition.
// Equal positions are a no-op. An oldPosition that no longer exists leaves the
// order unchanged; a newPosition past either end is clamped.
func (c *Controller) Reorder(oldPosition, newPosition int) error {
	c.mu.Lock()
	notify, err := c.reorderLocked(oldPosition, newPosition)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.observe("reorder", nil)
	notify()
	return nil
}

// ReorderRendered maps a drag from oldPosition to newPosition in the rendered
// sequence onto the backing collection. Both ends are resolved by row identity,
// so a filtered or stale rendering still moves the right row. Positions that
// fall outside rendered, or rows no longer present, make it a no-op.
func (c *Controller) ReorderRendered(rendered []*models.Row, oldPosition, newPosition int) error {
	if oldPosition == newPosition {
		return nil
	}
	if oldPosition < 0 || oldPosition >= len(rendered) || newPosition < 0 || newPosition >= len(rendered) {
		return nil
	}
	return c.ReorderRow(rendered[oldPosition], rendered[newPosition])
}

// ReorderRow moves row to the offset currently held by target. Both rows are
// resolved by identity under the configured MatchKey in one step, so a reload
// between grabbing and dropping cannot move a different row. A row that is no
// longer present makes it a no-op.
func (c *Controller) ReorderRow(row, target *models.Row) error {
	c.mu.Lock()
	from := offsetOf(c.rows, c.matchKey, row)
	to := offsetOf(c.rows, c.matchKey, target)
	if !c.closed && (from < 0 || to < 0) {
		c.mu.Unlock()
		return nil
	}
	notify, err := c.reorderLocked(from, to)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.observe("reorder", nil)
	notify()
	return nil
}

// reorderLocked moves the row at from to to. c.mu must be held; the returned
// func delivers the change notification and must be called after unlocking.
func (c *Controller) reorderLocked(from, to int) (func(), error) {
	if c.closed {
		return nil, ErrClosed
	}
	if from == to || from < 0 || from >= len(c.rows) {
		return func() {}, nil
	}

	c.rows = Move(c.rows, from, to)
	return c.changeLocked(ChangeReordered, "", nil), nil
}

// ResolveOffset returns the offset in the backing collection of the row matching
// rendered under the configured MatchKey, or -1
func (c *Controller) ResolveOffset(rendered *models.Row) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return offsetOf(c.rows, c.matchKey, rendered)
}

// Locate returns the position of row within rendered under the configured
// MatchKey, or -1
func (c *Controller) Locate(rendered []*models.Row, row *models.Row) int {
	c.mu.Lock()
	key := c.matchKey
	c.mu.Unlock()
	return offsetOf(rendered, key, row)
}

// OffsetOfID returns the offset of the first row with id, the row that
// StartEdit, SaveEdit and CancelEdit act on, or -1
func (c *Controller) OffsetOfID(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return indexOfID(c.rows, id)
}

// Rows returns a copy of the collection in display order
func (c *Controller) Rows() []*models.Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneRows(c.rows)
}

// Len returns the number of rows
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rows)
}

// Snapshot returns a copy of rows and edit state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	saving := make([]string, 0, len(c.saving))
	for id := range c.saving {
		saving = append(saving, id)
	}
	sort.Strings(saving)

	return Snapshot{
		Rows:     cloneRows(c.rows),
		Editable: c.editable.Keys(),
		Saving:   saving,
		Version:  c.version,
	}
}

// IsEditing reports whether the row is in edit mode (including while saving)
func (c *Controller) IsEditing(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editable.Has(id)
}

// IsSaving reports whether a SaveEdit for the row is still outstanding
func (c *Controller) IsSaving(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.saving[id]
	return ok
}

// AnySaving reports whether any SaveEdit is outstanding
func (c *Controller) AnySaving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.saving) > 0
}

// RulesFor exposes the rule provider to form engines
func (c *Controller) RulesFor(column string, rowIndex int, row *models.Row) models.Rules {
	return c.rules.RulesFor(column, rowIndex, row)
}

// Editable exposes the editability predicate to form engines
func (c *Controller) Editable(column string, rowIndex int, row *models.Row) bool {
	return c.rules.Editable(column, rowIndex, row)
}

// MaxLength returns the configured row limit (0 means unlimited)
func (c *Controller) MaxLength() int {
	return c.maxLength
}

// CreatorPosition returns where new rows are inserted
func (c *Controller) CreatorPosition() CreatorPosition {
	return c.position
}

// Subscribe registers fn to receive every Change. Callbacks run synchronously
// on the goroutine that made the change, after the controller lock is released.
// The returned function removes the subscription.
func (c *Controller) Subscribe(fn func(Change)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// Close tears the controller down. Subsequent operations return ErrClosed and
// saves still in flight are discarded on completion.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.subs = map[int]func(Change){}
}

// changeLocked bumps the version and returns a closure that delivers the change
// to current subscribers. Must be called with c.mu held; the closure must be
// called after it is released.
func (c *Controller) changeLocked(kind ChangeKind, rowID string, err error) func() {
	c.version++
	c.observer.SetRowCount(len(c.rows))

	if len(c.subs) == 0 {
		return func() {}
	}

	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Change), len(ids))
	for i, id := range ids {
		fns[i] = c.subs[id]
	}

	change := Change{Kind: kind, RowID: rowID, Rows: cloneRows(c.rows), Err: err}
	return func() {
		for _, fn := range fns {
			fn(change)
		}
	}
}

// nextIndexLocked returns an index greater than every existing one
func (c *Controller) nextIndexLocked() int {
	next := 0
	for _, r := range c.rows {
		if r.Index >= next {
			next = r.Index + 1
		}
	}
	return next
}

func (c *Controller) observe(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	c.observer.ObserveOperation(op, outcome)
}

// removeID returns rows without any row carrying id
func removeID(rows []*models.Row, id string) []*models.Row {
	out := make([]*models.Row, 0, len(rows))
	for _, r := range rows {
		if r != nil && r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

func cloneRows(rows []*models.Row) []*models.Row {
	out := make([]*models.Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}
