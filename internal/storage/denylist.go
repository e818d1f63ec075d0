package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryDenylist remembers revoked token ids until their expiry.
type MemoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (d *MemoryDenylist) Revoke(ctx context.Context, tokenId string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.purge()
	if until.After(d.now()) {
		d.entries[tokenId] = until
	}
	return nil
}

func (d *MemoryDenylist) IsRevoked(ctx context.Context, tokenId string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	until, ok := d.entries[tokenId]
	if !ok {
		return false, nil
	}
	if !until.After(d.now()) {
		delete(d.entries, tokenId)
		return false, nil
	}
	return true, nil
}

func (d *MemoryDenylist) Close() error {
	return nil
}

func (d *MemoryDenylist) purge() {
	now := d.now()
	for id, until := range d.entries {
		if !until.After(now) {
			delete(d.entries, id)
		}
	}
}
