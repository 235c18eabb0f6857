package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/thenoetrevino/tablero/internal/models"
)

// RowRepository persists the ordered row collection
type RowRepository interface {
	List(ctx context.Context) ([]*models.Row, error)
	Get(ctx context.Context, id string) (*models.Row, error)
	Count(ctx context.Context) (int, error)
	Replace(ctx context.Context, rows []*models.Row) error
	UpdateFields(ctx context.Context, id string, fields models.Fields, updatedAt time.Time) error
}

// RowRepo is the SQLite implementation of RowRepository
type RowRepo struct {
	db *sql.DB
}

// NewRowRepo creates a RowRepo on db
func NewRowRepo(db *sql.DB) *RowRepo {
	return &RowRepo{db: db}
}

const selectRows = `
	SELECT id, row_index, title, description, state, created_at, updated_at, children
	FROM activities`

// List returns every row in display order
func (r *RowRepo) List(ctx context.Context) ([]*models.Row, error) {
	rows, err := r.db.QueryContext(ctx, selectRows+` ORDER BY position, seq`)
	if err != nil {
		return nil, fmt.Errorf("listing rows: %w", err)
	}
	defer rows.Close()

	result := []*models.Row{}
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Get returns the first row (in display order) with the given id
func (r *RowRepo) Get(ctx context.Context, id string) (*models.Row, error) {
	row, err := scanRow(r.db.QueryRowContext(ctx, selectRows+` WHERE id = ? ORDER BY position, seq LIMIT 1`, id))
	if err == sql.ErrNoRows {
		return nil, models.ErrRowNotFound
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Count returns the number of stored rows
func (r *RowRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM activities").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting rows: %w", err)
	}
	return n, nil
}

// Replace swaps the stored collection for rows, in order, within one transaction
func (r *RowRepo) Replace(ctx context.Context, rows []*models.Row) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM activities"); err != nil {
			return fmt.Errorf("clearing rows: %w", err)
		}
		return insertRows(ctx, tx, rows)
	})
}

// UpdateFields writes the non-nil fields to the first row with the given id
func (r *RowRepo) UpdateFields(ctx context.Context, id string, fields models.Fields, updatedAt time.Time) error {
	sets := []string{"updated_at = ?"}
	args := []any{formatTime(updatedAt)}

	if fields.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *fields.Title)
	}
	if fields.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *fields.Description)
	}
	if fields.State != nil {
		sets = append(sets, "state = ?")
		args = append(args, string(*fields.State))
	}
	if fields.CreatedAt != nil {
		sets = append(sets, "created_at = ?")
		args = append(args, formatTime(*fields.CreatedAt))
	}
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE activities SET %s
		WHERE seq = (SELECT seq FROM activities WHERE id = ? ORDER BY position, seq LIMIT 1)`,
		strings.Join(sets, ", "))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating row %s: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrRowNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (*models.Row, error) {
	var (
		row                  models.Row
		state                string
		createdAt, updatedAt string
		children             sql.NullString
	)
	if err := s.Scan(&row.ID, &row.Index, &row.Title, &row.Description, &state, &createdAt, &updatedAt, &children); err != nil {
		return nil, err
	}

	row.State = models.State(state)

	var err error
	if row.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if row.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if row.Children, err = decodeChildren(children); err != nil {
		return nil, err
	}

	return &row, nil
}
