package domain

import "context"

// AdvocateRepository defines the interface for advocate data access.
// Records are append-only: there is no update or delete.
type AdvocateRepository interface {
	// Search returns one page of records matching q, ordered by id, and the
	// number of records matching q ignoring paging.
	Search(ctx context.Context, q SearchQuery) ([]Advocate, int, error)
	// Create stores a new record and fills in its ID and CreatedAt.
	Create(ctx context.Context, advocate *Advocate) error
	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
}
