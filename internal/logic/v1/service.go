package v1

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/duynhne/advocate-service/internal/core/domain"
	"github.com/duynhne/advocate-service/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AdvocateService implements the directory's query and write logic
type AdvocateService struct {
	repo domain.AdvocateRepository
}

// NewAdvocateService creates a new advocate service
func NewAdvocateService(repo domain.AdvocateRepository) *AdvocateService {
	return &AdvocateService{repo: repo}
}

// ListAdvocates returns one page of records matching q plus pagination metadata.
// A page beyond the last one yields no records but still reports the true totals.
func (s *AdvocateService) ListAdvocates(ctx context.Context, q domain.SearchQuery) (*domain.AdvocatePage, error) {
	ctx, span := middleware.StartSpan(ctx, "advocate.list", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int("page", q.Page),
		attribute.Int("limit", q.Limit),
		attribute.Bool("search.filtered", q.HasFilter()),
	))
	defer span.End()

	records, total, err := s.repo.Search(ctx, q)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("search advocates (page %d, limit %d): %w", q.Page, q.Limit, err)
	}
	if records == nil {
		records = []domain.Advocate{}
	}

	searchesTotal.WithLabelValues(strconv.FormatBool(q.HasFilter())).Inc()
	searchResults.Observe(float64(total))

	page := &domain.AdvocatePage{
		Records:    records,
		Pagination: domain.NewPagination(q, total),
	}
	span.SetAttributes(
		attribute.Int("search.total", page.Pagination.Total),
		attribute.Int("search.returned", len(records)),
	)
	return page, nil
}

// CreateAdvocate validates req and stores it as a new record
func (s *AdvocateService) CreateAdvocate(ctx context.Context, req domain.CreateAdvocateRequest) (*domain.Advocate, error) {
	ctx, span := middleware.StartSpan(ctx, "advocate.create", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	advocate, err := req.ToAdvocate()
	if err != nil {
		span.SetAttributes(attribute.Bool("advocate.created", false))
		createRejected.WithLabelValues(rejectReason(err)).Inc()
		return nil, fmt.Errorf("validate advocate: %w", err)
	}

	if err := s.repo.Create(ctx, advocate); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("create advocate %s %s: %w", advocate.FirstName, advocate.LastName, err)
	}

	advocatesCreated.Inc()
	span.SetAttributes(
		attribute.Int64("advocate.id", advocate.ID),
		attribute.Bool("advocate.created", true),
	)
	span.AddEvent("advocate.created")
	return advocate, nil
}

// Options returns the specialty and degree catalog used by the create form
func (s *AdvocateService) Options() domain.Options {
	return domain.Options{
		Specialties: append([]string(nil), domain.Specialties...),
		Degrees:     append([]string(nil), domain.Degrees...),
	}
}

// Ready reports whether the record store is reachable
func (s *AdvocateService) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		return "missing_fields"
	case errors.Is(err, domain.ErrInvalidPhoneNumber):
		return "invalid_phone_number"
	case errors.Is(err, domain.ErrInvalidYearsOfExperience):
		return "invalid_years_of_experience"
	default:
		return "other"
	}
}
