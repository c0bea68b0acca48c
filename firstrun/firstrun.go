// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package firstrun

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	stateFileName    = "voter.db"
	configBucketName = "user_config"

	// IntroShownKey marks that the voter client already showed its intro
	IntroShownKey = "intro_shown"
)

// ErrStateInUse means another process holds the state file lock
var ErrStateInUse = errors.New("state directory is in use by another voter process")

// Flag is a one-way boolean that survives restarts
type Flag interface {
	IsSet() (bool, error)
	Set() error
}

// Store keeps flags in a bbolt file under a state directory
type Store struct {
	db *bolt.DB
}

// Open creates dir if needed and opens the state file inside it
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}

	db, err := bolt.Open(filepath.Join(dir, stateFileName), 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, ErrStateInUse
		}
		return nil, fmt.Errorf("failed to open state file: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(configBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init state file: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Flag returns the flag stored under key
func (s *Store) Flag(key string) Flag {
	return &boltFlag{db: s.db, key: []byte(key)}
}

type boltFlag struct {
	db  *bolt.DB
	key []byte
}

func (f *boltFlag) IsSet() (bool, error) {
	var set bool
	err := f.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(configBucketName))
		if b == nil {
			return nil
		}
		set = b.Get(f.key) != nil
		return nil
	})
	return set, err
}

func (f *boltFlag) Set() error {
	return f.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(configBucketName))
		if err != nil {
			return err
		}
		return b.Put(f.key, []byte(time.Now().UTC().Format(time.RFC3339)))
	})
}

// MemoryFlag is a Flag that lives for the process only
type MemoryFlag struct {
	mu  sync.Mutex
	set bool
}

func (m *MemoryFlag) IsSet() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set, nil
}

func (m *MemoryFlag) Set() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set = true
	return nil
}

// Once reports whether this is the first time f is checked and sets it.
// A read error counts as "already seen" so a broken state file never
// makes the caller repeat one-time work forever.
func Once(f Flag) (first bool, err error) {
	set, err := f.IsSet()
	if err != nil {
		return false, err
	}
	if set {
		return false, nil
	}
	if err := f.Set(); err != nil {
		return true, err
	}
	return true, nil
}
