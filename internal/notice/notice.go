// Package notice is the single user-facing reporting channel: short-lived
// toasts shown on the next rendered page.
package notice

import (
	"sync"
	"time"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notice struct {
	Level   Level
	Message string
	Expires time.Time
}

type Board struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	notices []Notice
}

func NewBoard(ttl time.Duration) *Board {
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return &Board{ttl: ttl, now: time.Now}
}

func (b *Board) Push(level Level, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, Notice{
		Level:   level,
		Message: message,
		Expires: b.now().Add(b.ttl),
	})
}

func (b *Board) Success(message string) { b.Push(LevelSuccess, message) }

func (b *Board) Error(message string) { b.Push(LevelError, message) }

// Report satisfies gateway.Reporter.
func (b *Board) Report(message string) { b.Push(LevelError, message) }

// Drain returns the notices that have not expired yet and dismisses all of
// them. A notice is shown at most once.
func (b *Board) Drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	var out []Notice
	for _, n := range b.notices {
		if now.Before(n.Expires) {
			out = append(out, n)
		}
	}
	b.notices = nil
	return out
}

// Peek returns the active notices without dismissing them.
func (b *Board) Peek() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	out := make([]Notice, 0, len(b.notices))
	kept := b.notices[:0]
	for _, n := range b.notices {
		if now.Before(n.Expires) {
			out = append(out, n)
			kept = append(kept, n)
		}
	}
	b.notices = kept
	return out
}
