package collection

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/tablero/internal/models"
)

func TestNumericGenerator(t *testing.T) {
	g := NumericGenerator{}
	for i := 0; i < 100; i++ {
		n, err := strconv.Atoi(g.NewID())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 1_000_000)
	}
}

func TestGeneratorFor(t *testing.T) {
	_, err := uuid.Parse(GeneratorFor("uuid").NewID())
	assert.NoError(t, err)

	assert.IsType(t, NumericGenerator{}, GeneratorFor("numeric"))
	assert.IsType(t, NumericGenerator{}, GeneratorFor("bogus"))
}

func TestDelayCommitter(t *testing.T) {
	t.Run("waits then delegates", func(t *testing.T) {
		var gotID string
		d := DelayCommitter{
			Delay: 10 * time.Millisecond,
			Next: CommitFunc(func(_ context.Context, rowID string, _ models.Fields) error {
				gotID = rowID
				return nil
			}),
		}

		start := time.Now()
		require.NoError(t, d.Commit(context.Background(), "r1", models.Fields{}))
		assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
		assert.Equal(t, "r1", gotID)
	})

	t.Run("nil next succeeds", func(t *testing.T) {
		assert.NoError(t, DelayCommitter{}.Commit(context.Background(), "r1", models.Fields{}))
	})

	t.Run("propagates failure", func(t *testing.T) {
		boom := errors.New("boom")
		d := DelayCommitter{Next: CommitFunc(func(context.Context, string, models.Fields) error { return boom })}
		assert.ErrorIs(t, d.Commit(context.Background(), "r1", models.Fields{}), boom)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		d := DelayCommitter{
			Delay: time.Hour,
			Next: CommitFunc(func(context.Context, string, models.Fields) error {
				called = true
				return nil
			}),
		}
		assert.ErrorIs(t, d.Commit(ctx, "r1", models.Fields{}), context.Canceled)
		assert.False(t, called)
	})
}

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules{}

	tests := []struct {
		name     string
		column   string
		rowIndex int
		row      *models.Row
		want     models.Rules
	}{
		{"title optional on first rows", models.ColumnTitle, 2, nil, models.Rules{}},
		{"title required from fourth row", models.ColumnTitle, 3, nil, models.Rules{Required: true}},
		{"description enabled", models.ColumnDescription, 0, &models.Row{Title: "fun"}, models.Rules{}},
		{"description disabled for boring title", models.ColumnDescription, 1, &models.Row{Title: BoringTitle}, models.Rules{Disabled: true}},
		{"description disabled past tenth row", models.ColumnDescription, 10, nil, models.Rules{Disabled: true}},
		{"state has no rules", models.ColumnState, 20, nil, models.Rules{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.RulesFor(tt.column, tt.rowIndex, tt.row))
		})
	}

	assert.False(t, rules.Editable(models.ColumnTitle, 0, nil))
	assert.True(t, rules.Editable(models.ColumnTitle, 1, nil))
	assert.False(t, rules.Editable(models.ColumnSort, 1, nil))
	assert.True(t, rules.Editable(models.ColumnState, 0, nil))
}

func TestParseOptions(t *testing.T) {
	assert.Equal(t, PositionTop, ParseCreatorPosition("top"))
	assert.Equal(t, PositionHidden, ParseCreatorPosition("hidden"))
	assert.Equal(t, PositionBottom, ParseCreatorPosition(""))
	assert.Equal(t, MatchByIndex, ParseMatchKey("index"))
	assert.Equal(t, MatchByID, ParseMatchKey("whatever"))
}
