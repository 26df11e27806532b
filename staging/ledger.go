// Package staging tracks uploaded assets that have not yet been claimed
// by durably saved content. Each uploaded asset gets a ledger entry at
// upload time; the entry is removed either when the owning content is
// saved (confirm) or when it outlives the retention window (sweep).
package staging

import (
	"context"
	"sync"
	"time"
)

// Ledger is an append-only record store mapping asset URLs to their
// creation time. Implementations must be safe for concurrent use.
type Ledger interface {
	// Insert records a newly staged asset. Inserting a URL that is
	// already recorded keeps the existing entry.
	Insert(ctx context.Context, url string, createdAt time.Time) error

	// DeleteByURL removes the entry for a URL. Deleting an unknown URL
	// is a no-op.
	DeleteByURL(ctx context.Context, url string) error

	// ListOlderThan returns the URLs of all entries created before the
	// cutoff.
	ListOlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
}

// MemoryLedger is an in-memory Ledger for tests and single-process use.
type MemoryLedger struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

// NewMemoryLedger creates an empty MemoryLedger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{entries: make(map[string]time.Time)}
}

// Insert records a staged asset.
func (l *MemoryLedger) Insert(ctx context.Context, url string, createdAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[url]; !ok {
		l.entries[url] = createdAt
	}
	return nil
}

// DeleteByURL removes the entry for url if present.
func (l *MemoryLedger) DeleteByURL(ctx context.Context, url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, url)
	return nil
}

// ListOlderThan returns URLs staged before the cutoff.
func (l *MemoryLedger) ListOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var urls []string
	for url, createdAt := range l.entries {
		if createdAt.Before(cutoff) {
			urls = append(urls, url)
		}
	}
	return urls, nil
}

// Len returns the number of staged entries.
func (l *MemoryLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Has reports whether a URL is currently staged.
func (l *MemoryLedger) Has(url string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.entries[url]
	return ok
}
