package testsupport

import (
	"path/filepath"
	"testing"

	"sumofix/internal/history"
)

// MustOpenHistory opens a ledger in a temp dir and registers cleanup.
func MustOpenHistory(t testing.TB) *history.Store {
	t.Helper()

	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
