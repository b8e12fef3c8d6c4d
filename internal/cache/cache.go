// Package cache stores pipeline artifacts by key. Byte-level backends
// implement Cache; Store adds gob encoding and the NotFound contract the
// trainers rely on to detect a missing feature build.
package cache

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a key has never been written (or expired)
var ErrNotFound = errors.New("artifact not found")

// Cache defines the byte-level storage interface
type Cache interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key joins key parts into a store key, e.g. Key("model", "nb", "bow") is
// "model_nb_bow". Characters outside [a-z0-9._-] are replaced so the key is
// also a safe file name.
func Key(parts ...string) string {
	joined := strings.ToLower(strings.Join(parts, "_"))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, joined)
}
