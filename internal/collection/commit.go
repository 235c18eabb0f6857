package collection

import (
	"context"
	"time"

	"github.com/thenoetrevino/tablero/internal/models"
)

// Committer persists the fields of an edited row.
// SaveEdit only merges fields into the collection after Commit returns nil.
type Committer interface {
	Commit(ctx context.Context, rowID string, fields models.Fields) error
}

// CommitFunc adapts a plain function to Committer
type CommitFunc func(ctx context.Context, rowID string, fields models.Fields) error

// Commit calls f
func (f CommitFunc) Commit(ctx context.Context, rowID string, fields models.Fields) error {
	return f(ctx, rowID, fields)
}

// DelayCommitter waits for Delay before handing the commit to Next.
// It stands in for network latency; a nil Next succeeds after the delay.
type DelayCommitter struct {
	Delay time.Duration
	Next  Committer
}

// Commit waits for the delay or until ctx is done, whichever comes first
func (d DelayCommitter) Commit(ctx context.Context, rowID string, fields models.Fields) error {
	if d.Delay > 0 {
		timer := time.NewTimer(d.Delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if d.Next == nil {
		return nil
	}
	return d.Next.Commit(ctx, rowID, fields)
}
