package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prepmed/prepmed-backend/internal/model"
)

// ResultRepository handles test-history data access.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

const resultColumns = `id, user_id, test_title, source, subject, score, correct, incorrect,
	 attempted, total_questions, time_spent_seconds, subject_breakdown,
	 cognitive_breakdown, is_grand_test, taken_at`

// Create inserts a single test result.
func (r *ResultRepository) Create(ctx context.Context, res *model.TestResult) error {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	if res.TakenAt.IsZero() {
		res.TakenAt = time.Now()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO test_history (id, user_id, test_title, source, subject, score, correct,
		   incorrect, attempted, total_questions, time_spent_seconds,
		   subject_breakdown, cognitive_breakdown, is_grand_test, taken_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		res.ID, res.UserID, res.Title, res.Source, res.Subject, res.Score, res.Correct,
		res.Incorrect, res.Attempted, res.TotalQuestions, res.TimeSpentSeconds,
		res.SubjectBreakdown, res.CognitiveBreakdown, res.GrandTest, res.TakenAt)
	return err
}

// BulkCreate inserts a batch of results in one round trip via UNNEST.
// Used by the result worker when draining its queue.
func (r *ResultRepository) BulkCreate(ctx context.Context, results []model.TestResult) error {
	if len(results) == 0 {
		return nil
	}

	n := len(results)
	ids := make([]uuid.UUID, n)
	userIDs := make([]int, n)
	titles := make([]string, n)
	sources := make([]string, n)
	subjects := make([]string, n)
	scores := make([]int, n)
	corrects := make([]int, n)
	incorrects := make([]int, n)
	attempteds := make([]int, n)
	totals := make([]int, n)
	timeSpents := make([]int, n)
	subjectBDs := make([][]byte, n)
	cognitiveBDs := make([][]byte, n)
	grandTests := make([]bool, n)
	takenAts := make([]time.Time, n)

	for i := range results {
		res := &results[i]
		if res.ID == uuid.Nil {
			res.ID = uuid.New()
		}
		if res.TakenAt.IsZero() {
			res.TakenAt = time.Now()
		}
		ids[i] = res.ID
		userIDs[i] = res.UserID
		titles[i] = res.Title
		sources[i] = res.Source
		subjects[i] = res.Subject
		scores[i] = res.Score
		corrects[i] = res.Correct
		incorrects[i] = res.Incorrect
		attempteds[i] = res.Attempted
		totals[i] = res.TotalQuestions
		timeSpents[i] = res.TimeSpentSeconds
		subjectBDs[i] = marshalBreakdown(res.SubjectBreakdown)
		cognitiveBDs[i] = marshalBreakdown(res.CognitiveBreakdown)
		grandTests[i] = res.GrandTest
		takenAts[i] = res.TakenAt
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO test_history (id, user_id, test_title, source, subject, score, correct,
		   incorrect, attempted, total_questions, time_spent_seconds,
		   subject_breakdown, cognitive_breakdown, is_grand_test, taken_at)
		 SELECT * FROM UNNEST(
		   $1::uuid[], $2::int[], $3::text[], $4::text[], $5::text[], $6::int[],
		   $7::int[], $8::int[], $9::int[], $10::int[], $11::int[],
		   $12::jsonb[], $13::jsonb[], $14::boolean[], $15::timestamptz[])`,
		ids, userIDs, titles, sources, subjects, scores, corrects, incorrects,
		attempteds, totals, timeSpents, subjectBDs, cognitiveBDs, grandTests, takenAts)
	return err
}

func marshalBreakdown(bd map[string]model.BreakdownEntry) []byte {
	if bd == nil {
		bd = map[string]model.BreakdownEntry{}
	}
	b, _ := json.Marshal(bd)
	return b
}

// ListByUser retrieves a user's test history, most recent first.
func (r *ResultRepository) ListByUser(ctx context.Context, userID int, limit int) ([]model.TestResult, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+resultColumns+`
		 FROM test_history
		 WHERE user_id = $1
		 ORDER BY taken_at DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.TestResult
	for rows.Next() {
		var res model.TestResult
		if err := rows.Scan(&res.ID, &res.UserID, &res.Title, &res.Source, &res.Subject,
			&res.Score, &res.Correct, &res.Incorrect, &res.Attempted, &res.TotalQuestions,
			&res.TimeSpentSeconds, &res.SubjectBreakdown, &res.CognitiveBreakdown,
			&res.GrandTest, &res.TakenAt); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// CountSince returns how many questions the user attempted since a cutoff.
// Drives the weekly-goal progress ring.
func (r *ResultRepository) CountSince(ctx context.Context, userID int, since time.Time) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(attempted), 0)
		 FROM test_history
		 WHERE user_id = $1 AND taken_at >= $2`, userID, since).Scan(&total)
	return total, err
}
