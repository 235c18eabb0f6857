package collection

import (
	"time"
)

// CreatorPosition decides where Create inserts new rows
type CreatorPosition string

const (
	PositionTop    CreatorPosition = "top"
	PositionBottom CreatorPosition = "bottom"
	PositionHidden CreatorPosition = "hidden"
)

// ParseCreatorPosition converts a config value, defaulting to bottom
func ParseCreatorPosition(s string) CreatorPosition {
	switch CreatorPosition(s) {
	case PositionTop, PositionHidden:
		return CreatorPosition(s)
	}
	return PositionBottom
}

// Observer receives operation outcomes, typically to feed metrics
type Observer interface {
	ObserveOperation(op, outcome string)
	ObserveSave(d time.Duration, err error)
	SetRowCount(n int)
}

// Option is a functional option for configuring a Controller
type Option func(*Controller)

// WithMaxLength sets the maximum number of rows. Zero or less disables the limit.
func WithMaxLength(n int) Option {
	return func(c *Controller) {
		c.maxLength = n
	}
}

// WithCreatorPosition sets where new rows are inserted
func WithCreatorPosition(p CreatorPosition) Option {
	return func(c *Controller) {
		c.position = p
	}
}

// WithIDGenerator sets the generator used for new row ids
func WithIDGenerator(g IDGenerator) Option {
	return func(c *Controller) {
		c.ids = g
	}
}

// WithCommitter sets the asynchronous commit step of SaveEdit
func WithCommitter(cm Committer) Option {
	return func(c *Controller) {
		c.committer = cm
	}
}

// WithRuleProvider sets the per-cell rules and editability predicate
func WithRuleProvider(r RuleProvider) Option {
	return func(c *Controller) {
		c.rules = r
	}
}

// WithMatchKey sets the key used to map rendered rows to collection offsets
func WithMatchKey(k MatchKey) Option {
	return func(c *Controller) {
		c.matchKey = k
	}
}

// WithObserver sets the observer notified of every operation
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		c.observer = o
	}
}

// WithClock overrides the time source used for updated_at
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// nopObserver discards every observation
type nopObserver struct{}

func (nopObserver) ObserveOperation(string, string)   {}
func (nopObserver) ObserveSave(time.Duration, error) {}
func (nopObserver) SetRowCount(int)                  {}
