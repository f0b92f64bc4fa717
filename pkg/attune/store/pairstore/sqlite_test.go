package pairstore

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "pairs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIncrementAndCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, err := s.Increment(ctx, "joy", "nature")
		if err != nil {
			t.Fatal(err)
		}
		if n != i {
			t.Errorf("increment %d returned %d", i, n)
		}
	}

	n, err := s.Count(ctx, "joy", "nature")
	if err != nil || n != 3 {
		t.Errorf("count = %d, %v, want 3", n, err)
	}
}

func TestPairIsUnordered(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Increment(ctx, "nature", "joy"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Increment(ctx, "joy", "nature"); err != nil {
		t.Fatal(err)
	}

	n, err := s.Count(ctx, "nature", "joy")
	if err != nil || n != 2 {
		t.Errorf("count = %d, %v, want 2 for the shared row", n, err)
	}
}

func TestCountUnknownPairIsZero(t *testing.T) {
	s := openTestStore(t)

	n, err := s.Count(context.Background(), "never", "seen")
	if err != nil || n != 0 {
		t.Errorf("count = %d, %v, want 0", n, err)
	}
}

func TestCountsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pairs.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Increment(ctx, "joy", "nature"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	n, err := reopened.Count(ctx, "joy", "nature")
	if err != nil || n != 1 {
		t.Errorf("count after reopen = %d, %v, want 1", n, err)
	}
}
