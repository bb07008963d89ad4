// Package credstore persists the session token across process restarts.
//
// The store holds exactly one durable value. An absent key means logged out.
// The token is opaque: it is never parsed, only carried. When the database
// file cannot be opened the store degrades to memory-only operation instead
// of failing the caller; a thin client should still work on a read-only
// filesystem, it just forgets the session on exit.
package credstore

import (
	"context"
	"sync"
	"time"

	"github.com/boltdb/bolt"

	"capsule/internal/logging"
)

var (
	bucketName = []byte("session")
	tokenKey   = []byte("token")
)

type Store struct {
	mu    sync.Mutex
	db    *bolt.DB // nil in memory-only mode
	token string
	log   logging.Logger
}

// Open opens (or creates) the database at path and loads any stored token
// into memory. It never fails: on any storage error the returned store is
// memory-only.
func Open(path string, log logging.Logger) *Store {
	s := &Store{log: log}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		log.Warn(context.Background(), "credential storage unavailable, using memory only", "path", path, "err", err)
		return s
	}

	err = db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		if v := b.Get(tokenKey); v != nil {
			s.token = string(v)
		}
		return nil
	})
	if err != nil {
		log.Warn(context.Background(), "credential storage unavailable, using memory only", "path", path, "err", err)
		_ = db.Close()
		return s
	}

	s.db = db
	return s
}

// Get returns the current token. The second result is false when no
// credential is held.
func (s *Store) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

// Set makes token current and persists it. The in-memory copy is always
// updated; a failed durable write is logged, not surfaced.
func (s *Store) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	if s.db == nil {
		return
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(tokenKey, []byte(token))
	})
	if err != nil {
		s.log.Warn(context.Background(), "failed to persist credential", "err", err)
	}
}

// Clear removes the token from memory and durable storage. Idempotent.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	if s.db == nil {
		return
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete(tokenKey)
	})
	if err != nil {
		s.log.Warn(context.Background(), "failed to clear stored credential", "err", err)
	}
}

// Close releases the underlying database, if any.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
