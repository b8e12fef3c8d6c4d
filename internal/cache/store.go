package cache

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
)

// Store is the typed artifact store shared by feature builders and trainers.
// Values are gob encoded, so any struct with exported fields can be stored.
type Store struct {
	cache Cache
}

// NewStore wraps a byte-level cache
func NewStore(c Cache) *Store {
	return &Store{cache: c}
}

// NewMemoryStore returns a store that never touches disk
func NewMemoryStore() *Store {
	return NewStore(NewMemoryCache(0, 0))
}

// Put encodes value and stores it under key, replacing any previous value
func (s *Store) Put(key string, value any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.cache.Set(key, buf.Bytes(), 0); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

// Get decodes the value stored under key into out (a pointer).
// It returns an error wrapping ErrNotFound if key has not been written.
func (s *Store) Get(key string, out any) error {
	data, err := s.cache.Get(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Has reports whether key has been written
func (s *Store) Has(key string) bool {
	_, err := s.cache.Get(key)
	return err == nil
}

// Delete removes key from the store
func (s *Store) Delete(key string) error {
	return s.cache.Delete(key)
}
