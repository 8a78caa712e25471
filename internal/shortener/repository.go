package shortener

import (
	"context"
	"errors"
)

// ErrNotFound is returned by lookups for codes that are not in the store.
// A miss is a non-exceptional outcome; callers match it with errors.Is.
var ErrNotFound = errors.New("entry not found")

// ErrExists is returned by Insert when the code is already occupied.
var ErrExists = errors.New("short code already exists")

// ErrCollision is returned by Service.Add when two distinct long URLs
// encode to the same short code.
var ErrCollision = errors.New("short code collision")

// Store is the persistence capability. Implementations own the
// authoritative code→entry mapping; reads return copies.
type Store interface {
	// Insert stores the entry under code and returns the entry now
	// resident. It fails with ErrExists when the code is occupied, or a
	// wrapped backend error when the write itself fails.
	Insert(ctx context.Context, code string, e Entry) (*Entry, error)

	// Get returns a copy of the entry, or ErrNotFound.
	Get(ctx context.Context, code string) (*Entry, error)

	// Remove deletes the entry and returns it, or ErrNotFound.
	Remove(ctx context.Context, code string) (*Entry, error)

	// Contains reports whether the code is present. This is a real
	// membership query against backend state.
	Contains(ctx context.Context, code string) (bool, error)
}
