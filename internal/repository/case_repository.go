package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prepmed/prepmed-backend/internal/encounter"
)

// CaseRepository handles clinical case data access. Step graphs are stored
// whole as JSONB; the engine never needs partial reads.
type CaseRepository struct {
	pool *pgxpool.Pool
}

// NewCaseRepository creates a new CaseRepository.
func NewCaseRepository(pool *pgxpool.Pool) *CaseRepository {
	return &CaseRepository{pool: pool}
}

// Create inserts a case and fills in the generated ID.
func (r *CaseRepository) Create(ctx context.Context, c *encounter.Case) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO clinical_cases (id, title, source, subject, difficulty, description, steps)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.Title, c.Source, c.Subject, c.Difficulty, c.Description, c.Steps)
	return err
}

// GetByID retrieves a single case.
func (r *CaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*encounter.Case, error) {
	c := &encounter.Case{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, source, subject, difficulty, description, steps
		 FROM clinical_cases WHERE id = $1`, id,
	).Scan(&c.ID, &c.Title, &c.Source, &c.Subject, &c.Difficulty, &c.Description, &c.Steps)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetRandom samples one case, optionally narrowed to a subject.
func (r *CaseRepository) GetRandom(ctx context.Context, subject string) (*encounter.Case, error) {
	query := `SELECT id, title, source, subject, difficulty, description, steps
		 FROM clinical_cases`
	var args []any
	if subject != "" {
		query += ` WHERE subject = $1`
		args = append(args, subject)
	}
	query += ` ORDER BY random() LIMIT 1`

	c := &encounter.Case{}
	err := r.pool.QueryRow(ctx, query, args...).
		Scan(&c.ID, &c.Title, &c.Source, &c.Subject, &c.Difficulty, &c.Description, &c.Steps)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns case summaries (without step graphs) for browsing.
func (r *CaseRepository) List(ctx context.Context, subject string) ([]encounter.Case, error) {
	query := `SELECT id, title, source, subject, difficulty, description
		 FROM clinical_cases`
	var args []any
	if subject != "" {
		query += ` WHERE subject = $1`
		args = append(args, subject)
	}
	query += ` ORDER BY title`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []encounter.Case
	for rows.Next() {
		var c encounter.Case
		if err := rows.Scan(&c.ID, &c.Title, &c.Source, &c.Subject,
			&c.Difficulty, &c.Description); err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// Count returns the number of stored cases.
func (r *CaseRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clinical_cases`).Scan(&n)
	return n, err
}
