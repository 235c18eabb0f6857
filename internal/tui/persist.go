package tui

import (
	"context"
	"log/slog"
	"sync"

	"github.com/thenoetrevino/tablero/internal/collection"
	"github.com/thenoetrevino/tablero/internal/models"
)

// syncer stores a full snapshot of the rows
type syncer interface {
	Sync(ctx context.Context, rows []*models.Row) error
}

// persister writes the collection back to storage after structural changes
// and completed saves. Signals coalesce: a burst of changes leads to one Sync
// of whatever the collection holds when the write starts.
type persister struct {
	ctrl  *collection.Controller
	store syncer

	signal      chan struct{}
	done        chan struct{}
	unsubscribe func()
	wg          sync.WaitGroup
	stopOnce    sync.Once
}

func newPersister(ctrl *collection.Controller, store syncer) *persister {
	p := &persister{
		ctrl:   ctrl,
		store:  store,
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	p.unsubscribe = ctrl.Subscribe(func(c collection.Change) {
		if c.Kind.Structural() || c.Kind == collection.ChangeSaved {
			p.schedule()
		}
	})
	return p
}

func (p *persister) schedule() {
	select {
	case p.signal <- struct{}{}:
	default:
	}
}

func (p *persister) start(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.done:
				// Final flush of a change that raced with stop
				select {
				case <-p.signal:
					p.flush(context.WithoutCancel(ctx))
				default:
				}
				return
			case <-p.signal:
				p.flush(ctx)
			}
		}
	}()
}

func (p *persister) flush(ctx context.Context) {
	rows := p.ctrl.Rows()
	if err := p.store.Sync(ctx, rows); err != nil {
		slog.Error("failed to persist rows", "rows", len(rows), "error", err)
	}
}

// stop unsubscribes, flushes pending changes and waits for the writer to exit
func (p *persister) stop() {
	p.stopOnce.Do(func() {
		p.unsubscribe()
		close(p.done)
		p.wg.Wait()
	})
}
