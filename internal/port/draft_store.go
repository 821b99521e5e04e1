package port

import (
	"context"
	"errors"
)

var ErrDraftNotFound = errors.New("draft not found")

type DraftStore interface {
	// Save writes the serialized draft under key, replacing any previous value
	Save(ctx context.Context, key string, blob []byte) error

	// Load returns the stored blob or ErrDraftNotFound
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes the blob; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Ping reports whether the backing store is reachable
	Ping(ctx context.Context) error
}
