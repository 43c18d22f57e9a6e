// Package storage abstracts the persistent key/value string storage the
// session store writes through (the moral equivalent of browser local
// storage: survives restarts, string keys, string payloads).
package storage

import "errors"

// ErrNotFound is returned when a key has no stored value. Absence is an
// expected condition for callers, not a failure.
var ErrNotFound = errors.New("key not found")

type Repo interface {
	Read(key string) (string, error)
	Write(key, value string) error
	Delete(key string) error
}
