// Package store keeps a local record of article ids that were already announced downstream.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var announcedBucket = []byte("announced")

// Ledger is a bbolt-backed set of announced article ids.
type Ledger struct {
	db *bolt.DB
}

// Open opens or creates the ledger file at path.
func Open(path string) (*Ledger, error) {
	if path == "" {
		return nil, errors.New("ledger path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(announcedBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init ledger bucket: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Close releases the underlying file.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Unseen returns the ids that are not yet in the ledger, in input order.
func (l *Ledger) Unseen(ids []string) ([]string, error) {
	var out []string
	err := l.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(announcedBucket)
		for _, id := range ids {
			if b.Get([]byte(id)) == nil {
				out = append(out, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	return out, nil
}

// Mark records ids as announced at the given time.
func (l *Ledger) Mark(ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	stamp := []byte(at.UTC().Format(time.RFC3339))
	err := l.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(announcedBucket)
		for _, id := range ids {
			if id == "" {
				continue
			}
			if err := b.Put([]byte(id), stamp); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

// Prune removes entries announced before cutoff and reports how many were dropped.
func (l *Ledger) Prune(cutoff time.Time) (int, error) {
	removed := 0
	err := l.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(announcedBucket)
		var stale [][]byte
		if err := b.ForEach(func(k, v []byte) error {
			at, err := time.Parse(time.RFC3339, string(v))
			if err != nil || at.Before(cutoff) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("prune ledger: %w", err)
	}
	return removed, nil
}

// Len returns the number of recorded ids.
func (l *Ledger) Len() (int, error) {
	n := 0
	err := l.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(announcedBucket).Stats().KeyN
		return nil
	})
	return n, err
}
