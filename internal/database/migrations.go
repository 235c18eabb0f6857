package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenoetrevino/tablero/internal/models"
)

// schemaVersion is stored in PRAGMA user_version once the schema exists and
// the default rows were seeded
const schemaVersion = 1

// runMigrations creates the database schema and seeds default data if needed
func runMigrations(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}

	return withTx(ctx, db, func(tx *sql.Tx) error {
		// seq is the storage key; id is the row's own identifier and may repeat
		_, err := tx.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS activities (
				seq INTEGER PRIMARY KEY AUTOINCREMENT,
				id TEXT NOT NULL,
				row_index INTEGER NOT NULL,
				title TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				state TEXT NOT NULL DEFAULT '',
				position INTEGER NOT NULL,
				created_at TEXT NOT NULL DEFAULT '',
				updated_at TEXT NOT NULL DEFAULT '',
				children TEXT
			)
		`)
		if err != nil {
			return fmt.Errorf("creating activities table: %w", err)
		}

		_, err = tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_activities_position ON activities(position)`)
		if err != nil {
			return fmt.Errorf("creating position index: %w", err)
		}
		_, err = tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_activities_id ON activities(id)`)
		if err != nil {
			return fmt.Errorf("creating id index: %w", err)
		}

		if err := seedDefaultRows(ctx, tx); err != nil {
			return err
		}

		// PRAGMA does not take bind parameters
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return fmt.Errorf("writing schema version: %w", err)
		}
		return nil
	})
}

// seedDefaultRows inserts the default rows if the activities table is empty
func seedDefaultRows(ctx context.Context, tx *sql.Tx) error {
	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM activities").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return insertRows(ctx, tx, models.DefaultRows())
}
