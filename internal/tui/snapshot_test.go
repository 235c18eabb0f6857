package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

// snapshots compares rendered views against golden files in testdata/snapshots.
// UPDATE_SNAPSHOTS=1 rewrites them; a missing golden file is written on first run.
type snapshots struct {
	updateMode bool
	dir        string
}

func newSnapshots() *snapshots {
	return &snapshots{
		updateMode: os.Getenv("UPDATE_SNAPSHOTS") == "1",
		dir:        filepath.Join("testdata", "snapshots"),
	}
}

// compare checks output, stripped of styling, against the golden file for name
func (s *snapshots) compare(t *testing.T, name, output string) {
	t.Helper()
	output = ansi.Strip(output)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		t.Fatalf("Failed to create snapshot directory: %v", err)
	}
	path := filepath.Join(s.dir, name+".golden")

	golden, err := os.ReadFile(path)
	if s.updateMode || os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(output), 0o644); err != nil {
			t.Fatalf("Failed to write snapshot file: %v", err)
		}
		t.Logf("Wrote snapshot: %s", path)
		return
	}
	if err != nil {
		t.Fatalf("Failed to read snapshot file: %v", err)
	}

	if string(golden) != output {
		t.Errorf("Snapshot mismatch for %s\n\nExpected:\n%s\n\nGot:\n%s\n\nRun UPDATE_SNAPSHOTS=1 to update",
			name, string(golden), output)
	}
}

func TestSnapshots(t *testing.T) {
	snap := newSnapshots()

	t.Run("table", func(t *testing.T) {
		m, _ := setupTestModel(t, context.Background(), nil)
		snap.compare(t, "table", m.View().Content)
	})

	t.Run("help", func(t *testing.T) {
		m, _ := setupTestModel(t, context.Background(), nil)
		m = press(m, "?")
		snap.compare(t, "help", m.View().Content)
	})

	t.Run("delete confirmation", func(t *testing.T) {
		m, _ := setupTestModel(t, context.Background(), nil)
		m = press(m, "d")
		snap.compare(t, "delete_confirmation", m.View().Content)
	})
}
