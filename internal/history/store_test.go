package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"specfetch/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first, err := store.Record(ctx, history.Entry{
		DatasetID: "SWP12345",
		Tier:      "SMALL",
		URL:       "http://archive.example/swp/12000/gz/sp12345s.gz",
		RequestID: "req-1",
		Layout:    "low_dispersion",
		Samples:   512,
		Duration:  1500 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if first.ID == 0 || first.CreatedAt.IsZero() || first.Outcome != history.OutcomeDecoded {
		t.Fatalf("expected assigned fields, got %+v", first)
	}

	second, err := store.Record(ctx, history.Entry{
		DatasetID:    "LWR04567",
		Outcome:      history.OutcomeFailed,
		ErrorKind:    "transport",
		ErrorMessage: "status 404",
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := store.List(ctx, history.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	opts := cmpopts.EquateApproxTime(time.Millisecond)
	if diff := cmp.Diff([]history.Entry{second, first}, entries, opts); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
	if !entries[0].Failed() || entries[1].Failed() {
		t.Fatal("Failed() did not reflect outcome")
	}
}

func TestListFilters(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	for _, entry := range []history.Entry{
		{DatasetID: "SWP1", Outcome: history.OutcomeDecoded},
		{DatasetID: "SWP2", Outcome: history.OutcomeFailed},
		{DatasetID: "SWP1", Outcome: history.OutcomeFailed},
		{DatasetID: "SWP3", Outcome: history.OutcomeDecoded},
	} {
		if _, err := store.Record(ctx, entry); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	byID, err := store.List(ctx, history.ListOptions{DatasetID: "SWP1"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(byID) != 2 {
		t.Fatalf("expected 2 entries for SWP1, got %d", len(byID))
	}

	failed, err := store.List(ctx, history.ListOptions{Outcome: history.OutcomeFailed, Limit: 1})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(failed) != 1 || failed[0].DatasetID != "SWP1" {
		t.Fatalf("expected newest failed entry, got %+v", failed)
	}
}

func TestRecordRequiresDatasetID(t *testing.T) {
	store := openStore(t)
	if _, err := store.Record(context.Background(), history.Entry{}); err == nil {
		t.Fatal("expected error for empty dataset id")
	}
}

func TestClear(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := store.Record(ctx, history.Entry{DatasetID: "SWP12345"}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 3 {
		t.Fatalf("removed = %d, want 3", removed)
	}
	entries, err := store.List(ctx, history.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty ledger, got %d entries", len(entries))
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.Record(context.Background(), history.Entry{DatasetID: "SWP12345"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	entries, err := reopened.List(context.Background(), history.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after reopen, got %d", len(entries))
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("update version: %v", err)
	}
	_ = db.Close()

	if _, err := history.Open(path); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
