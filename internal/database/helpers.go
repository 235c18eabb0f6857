package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/thenoetrevino/tablero/internal/models"
)

// withTx executes a function within a database transaction.
// It automatically handles begin, rollback on error, and commit on success.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// insertRows appends rows in order, using their slice offset as position
func insertRows(ctx context.Context, tx *sql.Tx, rows []*models.Row) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO activities (id, row_index, title, description, state, position, created_at, updated_at, children)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for pos, r := range rows {
		if r == nil {
			continue
		}
		children, err := encodeChildren(r.Children)
		if err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx,
			r.ID, r.Index, r.Title, r.Description, string(r.State), pos,
			formatTime(r.CreatedAt), formatTime(r.UpdatedAt), children,
		)
		if err != nil {
			return fmt.Errorf("inserting row %s: %w", r.ID, err)
		}
	}
	return nil
}

// formatTime stores times as RFC 3339 in UTC; the zero time is stored as ''
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime is the inverse of formatTime
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time %q: %w", s, err)
	}
	return t, nil
}

// encodeChildren serializes nested rows as JSON, storing NULL when there are none
func encodeChildren(children []*models.Row) (sql.NullString, error) {
	if len(children) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(children)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encoding children: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeChildren(ns sql.NullString) ([]*models.Row, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var children []*models.Row
	if err := json.Unmarshal([]byte(ns.String), &children); err != nil {
		return nil, fmt.Errorf("decoding children: %w", err)
	}
	return children, nil
}
