// Package history keeps a small on-disk index of completed recording
// sessions so past captures survive a restart even after their working
// files are cleaned up.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when a session ID has no entry in the index.
var ErrNotFound = errors.New("history: entry not found")

const keyPrefix = "session/"

// Entry is the durable record of one completed session. The JSON shape
// matches what the frontend receives in status events.
type Entry struct {
	ID         string    `json:"id"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	DurationMS int64     `json:"duration"`
	Mode       string    `json:"mode"`
	Size       int       `json:"size"`
	FilePath   string    `json:"filePath,omitempty"`
}

// Index is a badger-backed store of Entry records keyed by session ID.
type Index struct {
	db *badger.DB
}

// Open opens or creates the index at dir.
func Open(dir string) (*Index, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open history index: %w", err)
	}
	return &Index{db: db}, nil
}

// Close flushes and closes the underlying database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Put writes or replaces the entry for e.ID.
func (ix *Index) Put(e Entry) error {
	if e.ID == "" {
		return errors.New("history: entry has no ID")
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}
	err = ix.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+e.ID), data)
	})
	if err != nil {
		return fmt.Errorf("store history entry: %w", err)
	}
	return nil
}

// Get returns the entry for a session ID.
func (ix *Index) Get(id string) (Entry, error) {
	var e Entry
	err := ix.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Delete removes the entry for a session ID. Deleting an absent entry is
// not an error.
func (ix *Index) Delete(id string) error {
	return ix.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + id))
	})
}

// List returns entries ordered newest first. A limit of zero or less
// returns everything.
func (ix *Index) List(limit int) ([]Entry, error) {
	var entries []Entry
	err := ix.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var e Entry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			})
			if err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].StartTime.After(entries[j].StartTime)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
