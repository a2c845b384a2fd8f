// Package memory persists per-user query history and retrieves
// relevant past context. The primary backend is the Mem0 API; a local
// SQLite store covers keyless setups. Both backends are best-effort:
// callers treat every failure as "no memory available".
package memory

import (
	"context"
	"time"
)

// Record is a single remembered item for a user.
type Record struct {
	ID        string
	Memory    string
	CreatedAt time.Time
}

// Store is the persistence interface the agent depends on.
type Store interface {
	// Add persists content for a user. Metadata is free-form and may be nil.
	Add(ctx context.Context, userID, content string, metadata map[string]string) error

	// Search returns up to limit records relevant to the query,
	// most relevant first.
	Search(ctx context.Context, userID, query string, limit int) ([]Record, error)

	// Close releases backend resources.
	Close() error
}
