package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prepmed/prepmed-backend/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// UserRepository handles user profile data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, password_hash, display_name, streak, last_login_date,
	 tests_completed, total_questions, study_time_minutes, weekly_goal, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Streak,
		&u.LastLoginDate, &u.TestsCompleted, &u.TotalQuestions,
		&u.StudyTimeMinutes, &u.WeeklyGoal, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a new user and fills in the generated ID.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, display_name, weekly_goal, last_login_date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		u.Email, u.PasswordHash, u.DisplayName, u.WeeklyGoal, u.LastLoginDate,
	).Scan(&u.ID, &u.CreatedAt)
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// UpdateStreak sets the streak counter and last login date together.
func (r *UserRepository) UpdateStreak(ctx context.Context, userID int, streak int, lastLogin string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET streak = $1, last_login_date = $2 WHERE id = $3`,
		streak, lastLogin, userID)
	return err
}

// UpdateWeeklyGoal changes the questions-per-week target.
func (r *UserRepository) UpdateWeeklyGoal(ctx context.Context, userID int, goal int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET weekly_goal = $1 WHERE id = $2`, goal, userID)
	return err
}

// RecordCompletedTest bumps the aggregate study stats after a submission.
func (r *UserRepository) RecordCompletedTest(ctx context.Context, userID, attempted, timeSpentMinutes int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET tests_completed = tests_completed + 1,
		     total_questions = total_questions + $1,
		     study_time_minutes = study_time_minutes + $2
		 WHERE id = $3`, attempted, timeSpentMinutes, userID)
	return err
}

// AddBookmark saves a question for the user. Idempotent.
func (r *UserRepository) AddBookmark(ctx context.Context, userID int, questionID string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO bookmarks (user_id, question_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, question_id) DO NOTHING`, userID, questionID)
	return err
}

// RemoveBookmark drops a saved question.
func (r *UserRepository) RemoveBookmark(ctx context.Context, userID int, questionID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM bookmarks WHERE user_id = $1 AND question_id = $2`,
		userID, questionID)
	return err
}

// ListBookmarks returns the user's saved question IDs, most recent first.
func (r *UserRepository) ListBookmarks(ctx context.Context, userID int) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_id FROM bookmarks
		 WHERE user_id = $1
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Leaderboard returns the top users ranked by questions answered, with
// accuracy computed over their whole test history.
func (r *UserRepository) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.display_name, u.tests_completed, u.total_questions, u.streak,
		        COALESCE(SUM(th.correct), 0) AS total_correct,
		        COALESCE(SUM(th.attempted), 0) AS total_attempted
		 FROM users u
		 LEFT JOIN test_history th ON th.user_id = u.id
		 GROUP BY u.id
		 ORDER BY u.total_questions DESC, u.tests_completed DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.LeaderboardEntry
	for rows.Next() {
		var e model.LeaderboardEntry
		var correct, attempted int
		if err := rows.Scan(&e.UserID, &e.DisplayName, &e.TestsCompleted,
			&e.TotalQuestions, &e.Streak, &correct, &attempted); err != nil {
			return nil, err
		}
		if attempted > 0 {
			e.Accuracy = float64(correct) / float64(attempted) * 100
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
