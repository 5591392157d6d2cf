package memory

import (
	"context"
	"sync"
	"time"

	"github.com/duynhne/advocate-service/internal/core/domain"
)

// AdvocateRepository is an in-memory domain.AdvocateRepository used for local
// development without PostgreSQL and in unit tests. Records are kept in id
// order, which is insertion order.
type AdvocateRepository struct {
	mu      sync.RWMutex
	records []domain.Advocate
	nextID  int64
	now     func() time.Time
}

// NewAdvocateRepository creates an empty in-memory repository
func NewAdvocateRepository() *AdvocateRepository {
	return &AdvocateRepository{nextID: 1, now: time.Now}
}

// Search filters before paging and returns copies of the stored records.
func (r *AdvocateRepository) Search(ctx context.Context, q domain.SearchQuery) ([]domain.Advocate, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	offset := q.Offset()
	page := make([]domain.Advocate, 0, q.Limit)
	total := 0
	for _, a := range r.records {
		if !q.Matches(a) {
			continue
		}
		if total >= offset && len(page) < q.Limit {
			page = append(page, clone(a))
		}
		total++
	}
	return page, total, nil
}

// Create assigns the next id and stores a copy of advocate
func (r *AdvocateRepository) Create(ctx context.Context, advocate *domain.Advocate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	advocate.ID = r.nextID
	advocate.CreatedAt = r.now().UTC()
	r.nextID++
	r.records = append(r.records, clone(*advocate))
	return nil
}

// Ping always succeeds
func (r *AdvocateRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len returns the number of stored records
func (r *AdvocateRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func clone(a domain.Advocate) domain.Advocate {
	a.Specialties = append([]string(nil), a.Specialties...)
	return a
}
