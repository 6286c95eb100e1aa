package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTest(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestSeenAndRecord(t *testing.T) {
	t.Parallel()
	j := openTest(t)
	ctx := context.Background()

	seen, err := j.Seen(ctx, 42)
	if err != nil || seen {
		t.Fatalf("Seen(42) = %v, %v; want false, nil", seen, err)
	}
	if err := j.Record(ctx, 42, "text"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := j.Record(ctx, 42, "text"); err != nil {
		t.Fatalf("Record twice: %v", err)
	}
	seen, err = j.Seen(ctx, 42)
	if err != nil || !seen {
		t.Fatalf("Seen(42) = %v, %v; want true, nil", seen, err)
	}
	if seen, _ := j.Seen(ctx, 43); seen {
		t.Error("Seen(43) = true for unrecorded id")
	}
	if err := j.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestOpenCreatesDirectoryAndReopens(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "dir", "journal.db")
	ctx := context.Background()

	j, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := j.Record(ctx, 7, "photo"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	_ = j.Close()

	j, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = j.Close() }()
	if seen, err := j.Seen(ctx, 7); err != nil || !seen {
		t.Errorf("Seen(7) after reopen = %v, %v", seen, err)
	}
}

func TestPrune(t *testing.T) {
	t.Parallel()
	j := openTest(t)
	ctx := context.Background()

	base := time.Unix(1_700_000_000, 0)
	j.now = func() time.Time { return base }
	if err := j.Record(ctx, 1, "text"); err != nil {
		t.Fatal(err)
	}
	j.now = func() time.Time { return base.Add(30 * time.Hour) }
	if err := j.Record(ctx, 2, "text"); err != nil {
		t.Fatal(err)
	}

	n, err := j.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Errorf("Prune removed %d rows, want 1", n)
	}
	if seen, _ := j.Seen(ctx, 1); seen {
		t.Error("update 1 survived pruning")
	}
	if seen, _ := j.Seen(ctx, 2); !seen {
		t.Error("update 2 was pruned")
	}
}
