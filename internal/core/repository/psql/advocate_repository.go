package psql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/duynhne/advocate-service/internal/core/domain"
	"github.com/duynhne/advocate-service/middleware"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const advocateColumns = `id, first_name, last_name, city, degree, specialties, years_of_experience, phone_number, created_at`

// Pool is the part of *pgxpool.Pool the repository uses
type Pool interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// AdvocateRepository implements domain.AdvocateRepository using PostgreSQL
type AdvocateRepository struct {
	pool Pool
}

// NewAdvocateRepository creates a new PostgreSQL advocate repository
func NewAdvocateRepository(pool Pool) *AdvocateRepository {
	return &AdvocateRepository{pool: pool}
}

// Search reads the filtered count and the requested page from one snapshot.
func (r *AdvocateRepository) Search(ctx context.Context, q domain.SearchQuery) ([]domain.Advocate, int, error) {
	ctx, span := middleware.StartSpan(ctx, "advocate.repository.search", trace.WithAttributes(
		attribute.String("layer", "repository"),
		attribute.Bool("search.filtered", q.HasFilter()),
	))
	defer span.End()

	if r.pool == nil {
		return nil, 0, domain.ErrStoreUnavailable
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("begin search transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	countSQL, pageSQL, args := buildSearchSQL(q)

	var total int
	if err := tx.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("count advocates: %w", err)
	}

	records := []domain.Advocate{}
	if q.Offset() < total {
		rows, err := tx.Query(ctx, pageSQL, append(args, q.Limit, q.Offset())...)
		if err != nil {
			span.RecordError(err)
			return nil, 0, fmt.Errorf("query advocates: %w", err)
		}
		records, err = pgx.CollectRows(rows, scanAdvocate)
		if err != nil {
			span.RecordError(err)
			return nil, 0, fmt.Errorf("scan advocates: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("commit search transaction: %w", err)
	}

	span.SetAttributes(attribute.Int("search.total", total), attribute.Int("search.returned", len(records)))
	return records, total, nil
}

// Create inserts the record and reads back the generated id and timestamp
func (r *AdvocateRepository) Create(ctx context.Context, advocate *domain.Advocate) error {
	ctx, span := middleware.StartSpan(ctx, "advocate.repository.create", trace.WithAttributes(
		attribute.String("layer", "repository"),
	))
	defer span.End()

	if r.pool == nil {
		return domain.ErrStoreUnavailable
	}

	specialties, err := json.Marshal(advocate.Specialties)
	if err != nil {
		return fmt.Errorf("encode specialties: %w", err)
	}

	query := `INSERT INTO advocates (first_name, last_name, city, degree, specialties, years_of_experience, phone_number)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7) RETURNING id, created_at`
	err = r.pool.QueryRow(ctx, query,
		advocate.FirstName,
		advocate.LastName,
		advocate.City,
		advocate.Degree,
		string(specialties),
		advocate.YearsOfExperience,
		advocate.PhoneNumber,
	).Scan(&advocate.ID, &advocate.CreatedAt)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("insert advocate: %w", err)
	}

	span.SetAttributes(attribute.Int64("advocate.id", advocate.ID))
	return nil
}

// Ping checks the connection pool
func (r *AdvocateRepository) Ping(ctx context.Context) error {
	if r.pool == nil {
		return domain.ErrStoreUnavailable
	}
	return r.pool.Ping(ctx)
}

func scanAdvocate(row pgx.CollectableRow) (domain.Advocate, error) {
	var a domain.Advocate
	err := row.Scan(
		&a.ID,
		&a.FirstName,
		&a.LastName,
		&a.City,
		&a.Degree,
		&a.Specialties,
		&a.YearsOfExperience,
		&a.PhoneNumber,
		&a.CreatedAt,
	)
	if a.Specialties == nil {
		a.Specialties = []string{}
	}
	return a, err
}

// buildSearchSQL returns the count query, the page query and the shared
// filter arguments. The page query takes two more arguments: limit and offset.
func buildSearchSQL(q domain.SearchQuery) (countSQL, pageSQL string, args []any) {
	where := ""
	if q.HasFilter() {
		where = ` WHERE first_name ILIKE $1 ESCAPE '\'` +
			` OR last_name ILIKE $1 ESCAPE '\'` +
			` OR city ILIKE $1 ESCAPE '\'` +
			` OR degree ILIKE $1 ESCAPE '\'` +
			` OR lower(specialties::text) LIKE $1 ESCAPE '\'` +
			` OR years_of_experience::text LIKE $1 ESCAPE '\'`
		args = []any{"%" + escapeLike(strings.ToLower(q.Search)) + "%"}
	}

	n := len(args)
	countSQL = `SELECT count(*) FROM advocates` + where
	pageSQL = fmt.Sprintf(`SELECT %s FROM advocates%s ORDER BY id ASC LIMIT $%d OFFSET $%d`,
		advocateColumns, where, n+1, n+2)
	return countSQL, pageSQL, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes every character of s match literally in a LIKE pattern
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
