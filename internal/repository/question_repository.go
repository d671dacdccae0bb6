package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prepmed/prepmed-backend/internal/model"
)

// fetchLimitFor oversizes the pull so the supplier has room to shuffle and
// trim. Bounded to keep a grand test from dragging the whole bank over.
func fetchLimitFor(count int) int {
	limit := count * 3
	if limit < 1 {
		limit = 1
	}
	if limit > 500 {
		limit = 500
	}
	return limit
}

// QuestionRepository handles question-bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, question, options, answer, subject, subtopic, module, source,
	 difficulty, cognitive_skill, keywords, question_image, explanation`

func scanQuestion(row interface{ Scan(...any) error }) (model.Question, error) {
	var q model.Question
	err := row.Scan(&q.ID, &q.Prompt, &q.Options, &q.CorrectOption, &q.Subject,
		&q.Subtopic, &q.Module, &q.Source, &q.Difficulty, &q.CognitiveSkill,
		&q.Keywords, &q.ImageURL, &q.Explanation)
	return q, err
}

// ListFiltered retrieves questions matching the filters, oversized by
// fetchLimitFor so the caller can shuffle and trim. A grand test ignores
// every narrowing dimension and samples the whole bank.
func (r *QuestionRepository) ListFiltered(ctx context.Context, f model.QuestionFilters) ([]model.Question, error) {
	baseQuery := ` FROM questions WHERE 1=1`
	var args []any

	if !f.GrandTest {
		if f.Subject != "" {
			args = append(args, f.Subject)
			baseQuery += fmt.Sprintf(" AND subject = $%d", len(args))
		}
		if len(f.Modules) > 0 {
			args = append(args, f.Modules)
			baseQuery += fmt.Sprintf(" AND module = ANY($%d)", len(args))
		}
		if len(f.Subtopics) > 0 {
			args = append(args, f.Subtopics)
			baseQuery += fmt.Sprintf(" AND subtopic = ANY($%d)", len(args))
		}
		if f.Difficulty != "" {
			args = append(args, f.Difficulty)
			baseQuery += fmt.Sprintf(" AND difficulty = $%d", len(args))
		}
		if f.CognitiveSkill != "" {
			args = append(args, f.CognitiveSkill)
			baseQuery += fmt.Sprintf(" AND cognitive_skill = $%d", len(args))
		}
		if len(f.Sources) > 0 {
			args = append(args, f.Sources)
			baseQuery += fmt.Sprintf(" AND source = ANY($%d)", len(args))
		}
	}

	args = append(args, fetchLimitFor(f.Count))
	query := `SELECT ` + questionColumns + baseQuery +
		fmt.Sprintf(" ORDER BY random() LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetByID retrieves a single question.
func (r *QuestionRepository) GetByID(ctx context.Context, id string) (*model.Question, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id)
	q, err := scanQuestion(row)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// GetByIDs retrieves questions by ID, preserving no particular order.
func (r *QuestionRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetRandom samples one question from the whole bank. Used for the
// question of the day.
func (r *QuestionRepository) GetRandom(ctx context.Context) (*model.Question, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions ORDER BY random() LIMIT 1`)
	q, err := scanQuestion(row)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Subjects returns the distinct subjects present in the bank.
func (r *QuestionRepository) Subjects(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT subject FROM questions ORDER BY subject`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}
