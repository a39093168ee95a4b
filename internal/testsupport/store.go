package testsupport

import (
	"context"
	"testing"

	"vodmux/internal/config"
	"vodmux/internal/ledger"
)

// MustOpenLedger opens a ledger.Store for tests and registers cleanup.
func MustOpenLedger(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustBeginRun starts a run for tests using the provided store.
func MustBeginRun(t testing.TB, store *ledger.Store, jobCount int) *ledger.Run {
	t.Helper()

	run, err := store.BeginRun(context.Background(), jobCount)
	if err != nil {
		t.Fatalf("store.BeginRun: %v", err)
	}
	return run
}
