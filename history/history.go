// Package history stores finished recordings locally so dictated text is
// recoverable after the focused app loses it.
package history

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Entry is one finished recording.
type Entry struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Mode      string        `json:"mode"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Store persists entries in a local badger database.
type Store struct {
	db  *badger.DB
	ttl time.Duration
}

// Open opens the store at dir. retention bounds how long entries live,
// zero keeps them forever.
func Open(dir string, retention time.Duration) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	return &Store{db: db, ttl: retention}, nil
}

// Add persists a finished recording and returns its id. Empty text is
// not stored; a recording that produced no speech leaves no entry.
func (s *Store) Add(e Entry) (string, error) {
	if e.Text == "" {
		return "", nil
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("marshal entry: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		ent := badger.NewEntry(key(e.ID), data)
		if s.ttl > 0 {
			ent = ent.WithTTL(s.ttl)
		}
		return txn.SetEntry(ent)
	})
	if err != nil {
		return "", fmt.Errorf("store entry: %w", err)
	}
	return e.ID, nil
}

// Recent returns up to n entries, newest first. n <= 0 returns all.
func (s *Store) Recent(n int) ([]Entry, error) {
	var out []Entry
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var e Entry
				if err := json.Unmarshal(val, &e); err != nil {
					return fmt.Errorf("unmarshal entry: %w", err)
				}
				out = append(out, e)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

const keyPrefix = "rec/"

func key(id string) []byte {
	return []byte(keyPrefix + id)
}
