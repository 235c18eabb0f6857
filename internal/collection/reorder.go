package collection

import "github.com/thenoetrevino/tablero/internal/models"

// MatchKey selects the row attribute used to map a rendered row back to
// its offset in the backing collection
type MatchKey string

const (
	// MatchByID resolves rows by their id. Duplicate ids resolve to the first match.
	MatchByID MatchKey = "id"
	// MatchByIndex resolves rows by their creation-time index field
	MatchByIndex MatchKey = "index"
)

// ParseMatchKey converts a config value to a MatchKey, defaulting to MatchByID
func ParseMatchKey(s string) MatchKey {
	if MatchKey(s) == MatchByIndex {
		return MatchByIndex
	}
	return MatchByID
}

// Move returns a new slice with the row at from moved to to.
// Rows between the two positions shift by one; every other row keeps its place.
// A from outside the slice leaves the order untouched, a to past either end is
// clamped, and nil entries are dropped from the result.
func Move(rows []*models.Row, from, to int) []*models.Row {
	out := make([]*models.Row, len(rows))
	copy(out, rows)

	if from >= 0 && from < len(out) {
		item := out[from]
		out = append(out[:from], out[from+1:]...)

		if to < 0 {
			to = 0
		}
		if to > len(out) {
			to = len(out)
		}

		out = append(out, nil)
		copy(out[to+1:], out[to:])
		out[to] = item
	}

	return compact(out)
}

// compact drops nil rows, keeping order
func compact(rows []*models.Row) []*models.Row {
	out := rows[:0]
	for _, r := range rows {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// offsetOf returns the offset of the row matching target under key, or -1.
// Under MatchByID, rows sharing an id are told apart by their index; when none
// of them carries target's index the first row with the id wins.
func offsetOf(rows []*models.Row, key MatchKey, target *models.Row) int {
	if target == nil {
		return -1
	}
	first := -1
	for i, r := range rows {
		if r == nil {
			continue
		}
		switch key {
		case MatchByIndex:
			if r.Index == target.Index {
				return i
			}
		default:
			if r.ID != target.ID {
				continue
			}
			if r.Index == target.Index {
				return i
			}
			if first < 0 {
				first = i
			}
		}
	}
	return first
}

// indexOfID returns the offset of the first row with the given id, or -1
func indexOfID(rows []*models.Row, id string) int {
	for i, r := range rows {
		if r != nil && r.ID == id {
			return i
		}
	}
	return -1
}
