package revstore

import (
	"context"
	"testing"
	"time"
)

func TestLocalSnapshotZeroForMissing(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(0, 0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	got, err := s.Snapshot(ctx, "products")
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Fatalf("missing scope should snapshot as 0, got %d", got)
	}
}

func TestLocalBumpIsMonotonic(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(0, 0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	for want := uint64(1); want <= 3; want++ {
		got, err := s.Bump(ctx, "orders")
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("Bump #%d returned %d", want, got)
		}
	}

	// other scopes unaffected
	if g, _ := s.Snapshot(ctx, "products"); g != 0 {
		t.Fatalf("unrelated scope moved to %d", g)
	}
}

func TestLocalCleanupPrunesOld(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(0, time.Second) // retention=1s
	t.Cleanup(func() { _ = s.Close(ctx) })

	if _, err := s.Bump(ctx, "old"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(1200 * time.Millisecond)
	s.Cleanup(time.Second)

	g, err := s.Snapshot(ctx, "old")
	if err != nil {
		t.Fatal(err)
	}
	if g != 0 {
		t.Fatalf("expected pruned -> 0, got %d", g)
	}
}
