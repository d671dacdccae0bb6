package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prepmed/prepmed-backend/internal/quiz"
)

// SnapshotRepository is the durable layer behind the Redis session store.
// One row per user, replaced wholesale on every write; it only needs to be
// good enough to survive a cache flush.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Upsert replaces the user's snapshot.
func (r *SnapshotRepository) Upsert(ctx context.Context, userID string, state *quiz.PersistedState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO quiz_snapshots (user_id, state, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET state = $2, updated_at = NOW()`,
		userID, data)
	return err
}

// LoadSnapshot retrieves the user's snapshot, or (nil, nil) when absent or
// unreadable. Implements sessionstore.SnapshotSource.
func (r *SnapshotRepository) LoadSnapshot(ctx context.Context, userID string) (*quiz.PersistedState, error) {
	var data []byte
	err := r.pool.QueryRow(ctx,
		`SELECT state FROM quiz_snapshots WHERE user_id = $1`, userID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ps quiz.PersistedState
	if err := json.Unmarshal(data, &ps); err != nil {
		// A snapshot that no longer parses is worthless; drop it.
		_ = r.Delete(ctx, userID)
		return nil, nil
	}
	return &ps, nil
}

// Delete removes the user's snapshot.
func (r *SnapshotRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM quiz_snapshots WHERE user_id = $1`, userID)
	return err
}
