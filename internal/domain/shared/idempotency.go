package shared

import (
	"context"
	"time"
)

// StoredResponse is the replayable outcome of a completed request
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyStore remembers client-supplied request keys so a retried
// submission replays the first response instead of running twice.
type IdempotencyStore interface {
	// Reserve claims key for an in-flight request. It returns false when the
	// key is already reserved or completed.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Complete stores the response for a reserved key
	Complete(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error
	// Lookup returns the stored response, or nil while the request is still in flight
	Lookup(ctx context.Context, key string) (*StoredResponse, error)
	// Release drops a reservation so the client may retry
	Release(ctx context.Context, key string) error
}
