// ABOUTME: Idempotency guard over BadgerDB and per-job reentrancy flags
// ABOUTME: Makes repeated webhook deliveries and overlapping poll cycles safe
package sync

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
)

// DefaultTokenTTL is how long a processed-event token stays live. Expired
// tokens become inert on their own; badger reclaims them lazily, so no sweep
// job is required.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Guard deduplicates externally-triggered work. Tokens live in badger with a
// TTL, keyed by the event's dedup key.
type Guard struct {
	kv  *badger.DB
	ttl time.Duration
}

// OpenGuard opens (or creates) the token store at path. An empty path uses an
// in-memory store, which is what tests want.
func OpenGuard(path string) (*Guard, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(nil)

	kv, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}

	return &Guard{kv: kv, ttl: DefaultTokenTTL}, nil
}

// Close closes the underlying store.
func (g *Guard) Close() error {
	return g.kv.Close()
}

// CheckKey reports whether a live token exists for key.
func (g *Guard) CheckKey(key string) (bool, error) {
	err := g.kv.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		return err
	})
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	return true, nil
}

// MarkProcessed records a token for key with the given TTL (zero means the
// guard default).
func (g *Guard) MarkProcessed(key string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = g.ttl
	}

	err := g.kv.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), []byte(time.Now().UTC().Format(time.RFC3339))).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("failed to mark key processed: %w", err)
	}
	return nil
}

// ShouldProcess is the entry-point check: it returns true exactly once per
// key within the TTL window, recording the token before any side-effecting
// work happens. A false return means the event was already handled and the
// caller should still report success upstream.
//
// The check and the mark run in one transaction. Badger's conflict detection
// aborts the loser when two deliveries race on the same key, so concurrent
// redeliveries cannot both claim the first slot.
func (g *Guard) ShouldProcess(key string) (bool, error) {
	claimed := false
	for {
		err := g.kv.Update(func(txn *badger.Txn) error {
			claimed = false
			_, err := txn.Get([]byte(key))
			if err == nil {
				return nil
			}
			if err != badger.ErrKeyNotFound {
				return err
			}
			entry := badger.NewEntry([]byte(key), []byte(time.Now().UTC().Format(time.RFC3339))).WithTTL(g.ttl)
			if err := txn.SetEntry(entry); err != nil {
				return err
			}
			claimed = true
			return nil
		})
		if err == badger.ErrConflict {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("failed to claim idempotency key: %w", err)
		}
		return claimed, nil
	}
}

// RunFlag is the reentrancy guard for one scheduled job: a boolean
// currently-running flag, set at entry and cleared at exit. A second
// invocation observing the flag set skips entirely rather than queuing.
// Skipped cycles are lost, not deferred, and a skip is a normal outcome.
type RunFlag struct {
	running atomic.Bool
}

// TryStart attempts to claim the flag. It returns false when a run is
// already in flight.
func (f *RunFlag) TryStart() bool {
	return f.running.CompareAndSwap(false, true)
}

// Done releases the flag. Callers defer it immediately after a successful
// TryStart so the release survives errors.
func (f *RunFlag) Done() {
	f.running.Store(false)
}

// Running reports whether a run is in flight.
func (f *RunFlag) Running() bool {
	return f.running.Load()
}
