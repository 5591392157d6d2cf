package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/duynhne/advocate-service/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, repo *AdvocateRepository, n int) {
	t.Helper()
	cities := []string{"Chicago", "Boston", "Denver"}
	for i := 1; i <= n; i++ {
		a := &domain.Advocate{
			FirstName:         fmt.Sprintf("First%d", i),
			LastName:          fmt.Sprintf("Last%d", i),
			City:              cities[i%len(cities)],
			Degree:            "MD",
			Specialties:       []string{"Bipolar"},
			YearsOfExperience: i % 30,
			PhoneNumber:       5550000000 + int64(i),
		}
		require.NoError(t, repo.Create(context.Background(), a))
	}
}

func TestAdvocateRepository_CreateAssignsIncreasingIDs(t *testing.T) {
	repo := NewAdvocateRepository()
	first := &domain.Advocate{FirstName: "A", Specialties: []string{"x"}}
	second := &domain.Advocate{FirstName: "B"}

	require.NoError(t, repo.Create(context.Background(), first))
	require.NoError(t, repo.Create(context.Background(), second))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.False(t, first.CreatedAt.IsZero())

	// stored copy is independent of the caller's slice
	first.Specialties[0] = "mutated"
	page, _, err := repo.Search(context.Background(), domain.NewSearchQuery("", 1, 10))
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, page[0].Specialties)
}

func TestAdvocateRepository_SearchThirdPageOf120(t *testing.T) {
	repo := NewAdvocateRepository()
	seed(t, repo, 120)

	page, total, err := repo.Search(context.Background(), domain.NewSearchQuery("", 3, 50))
	require.NoError(t, err)
	assert.Equal(t, 120, total)
	require.Len(t, page, 20)
	assert.Equal(t, int64(101), page[0].ID)
	assert.Equal(t, int64(120), page[19].ID)
}

func TestAdvocateRepository_FilterBeforePaging(t *testing.T) {
	repo := NewAdvocateRepository()
	seed(t, repo, 120)

	// every third record is in Boston (i%3 == 1)
	q := domain.NewSearchQuery("boston", 2, 10)
	page, total, err := repo.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 40, total)
	require.Len(t, page, 10)
	for i, a := range page {
		assert.Equal(t, "Boston", a.City)
		if i > 0 {
			assert.Less(t, page[i-1].ID, a.ID)
		}
	}
	assert.Equal(t, int64(31), page[0].ID)
}

func TestAdvocateRepository_SearchProperties(t *testing.T) {
	repo := NewAdvocateRepository()
	seed(t, repo, 75)

	for _, term := range []string{"", "7", "first1", "DENVER", "bip", "nothing"} {
		for _, limit := range []int{1, 7, 50, 100} {
			for page := 1; page <= 4; page++ {
				q := domain.NewSearchQuery(term, page, limit)
				records, total, err := repo.Search(context.Background(), q)
				require.NoError(t, err)

				want := total - q.Offset()
				if want < 0 {
					want = 0
				}
				if want > limit {
					want = limit
				}
				assert.Len(t, records, want, "term=%q page=%d limit=%d", term, page, limit)
				for _, a := range records {
					assert.True(t, q.Matches(a))
				}
			}
		}
	}
}

func TestAdvocateRepository_SearchIsIdempotent(t *testing.T) {
	repo := NewAdvocateRepository()
	seed(t, repo, 30)
	q := domain.NewSearchQuery("7", 1, 5)

	first, firstTotal, err := repo.Search(context.Background(), q)
	require.NoError(t, err)
	second, secondTotal, err := repo.Search(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstTotal, secondTotal)
}

func TestAdvocateRepository_EmptyAndBeyondLastPage(t *testing.T) {
	repo := NewAdvocateRepository()

	page, total, err := repo.Search(context.Background(), domain.NewSearchQuery("", 1, 50))
	require.NoError(t, err)
	assert.NotNil(t, page)
	assert.Empty(t, page)
	assert.Zero(t, total)

	seed(t, repo, 5)
	page, total, err = repo.Search(context.Background(), domain.NewSearchQuery("", 4, 2))
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.Equal(t, 5, total)
}

func TestAdvocateRepository_ConcurrentCreatesGetUniqueIDs(t *testing.T) {
	repo := NewAdvocateRepository()
	var wg sync.WaitGroup
	ids := make([]int64, 50)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a := &domain.Advocate{FirstName: strings.Repeat("x", i+1)}
			_ = repo.Create(context.Background(), a)
			ids[i] = a.ID
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Equal(t, 50, repo.Len())
}

func TestAdvocateRepository_CanceledContext(t *testing.T) {
	repo := NewAdvocateRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := repo.Search(ctx, domain.NewSearchQuery("", 1, 1))
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, repo.Create(ctx, &domain.Advocate{}), context.Canceled)
}
