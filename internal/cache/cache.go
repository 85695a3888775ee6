// Package cache tracks build-input fingerprints for incremental rebuilds.
//
// One fingerprint record exists per (profile, target triple) pair. The
// fingerprint is a SHA-256 digest over the full recursive source-file set,
// the Cargo manifest and the feature selection, so any change to any declared
// input produces a different digest and forces the next build to re-invoke
// the toolchain. Records live in a BoltDB file inside the carton state
// directory.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const bucketName = "fingerprints"

// Store persists fingerprint records.
type Store struct {
	db *bbolt.DB
}

// Open opens the fingerprint store inside stateDir, creating both as needed.
func Open(stateDir string) (*Store, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	dbPath := filepath.Join(stateDir, "fingerprints.db")
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open fingerprint database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create fingerprint bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}

	return nil
}

// Get retrieves the record for a configuration key.
// Returns nil on a miss.
func (s *Store) Get(key string) (*Entry, error) {
	var entry Entry

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		data := b.Get([]byte(key))
		if data == nil {
			return nil // miss
		}

		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return nil, err
	}

	if entry.Key == "" {
		return nil, nil // miss
	}

	return &entry, nil
}

// Put stores a record under its configuration key, replacing any previous
// record for that key.
func (s *Store) Put(entry Entry) error {
	entry.Timestamp = time.Now()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}

		return b.Put([]byte(entry.Key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store fingerprint: %w", err)
	}

	return nil
}
