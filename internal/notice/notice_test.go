package notice

import (
	"testing"
	"time"
)

func TestDrainDismisses(t *testing.T) {
	b := NewBoard(time.Minute)
	b.Success("saved")
	b.Error("boom")

	got := b.Drain()
	if len(got) != 2 {
		t.Fatalf("Drain() returned %d notices, want 2", len(got))
	}
	if got[0].Level != LevelSuccess || got[1].Level != LevelError {
		t.Errorf("unexpected levels: %+v", got)
	}
	if again := b.Drain(); len(again) != 0 {
		t.Errorf("second Drain() returned %d notices, want 0", len(again))
	}
}

func TestExpiredNoticesAreDropped(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	b := NewBoard(3 * time.Second)
	b.now = func() time.Time { return now }

	b.Report("error: not found")
	if got := b.Peek(); len(got) != 1 {
		t.Fatalf("Peek() returned %d notices, want 1", len(got))
	}

	now = now.Add(4 * time.Second)
	if got := b.Peek(); len(got) != 0 {
		t.Errorf("expired notice still visible: %+v", got)
	}
	if got := b.Drain(); len(got) != 0 {
		t.Errorf("Drain() after expiry returned %+v", got)
	}
}
