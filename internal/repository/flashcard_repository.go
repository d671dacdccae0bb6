package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prepmed/prepmed-backend/internal/model"
)

// FlashcardRepository handles flashcard deck data access.
type FlashcardRepository struct {
	pool *pgxpool.Pool
}

// NewFlashcardRepository creates a new FlashcardRepository.
func NewFlashcardRepository(pool *pgxpool.Pool) *FlashcardRepository {
	return &FlashcardRepository{pool: pool}
}

// Create inserts a deck and fills in the generated ID.
func (r *FlashcardRepository) Create(ctx context.Context, d *model.FlashcardDeck) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO flashcard_decks (id, user_id, name, cards)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		d.ID, d.UserID, d.Name, d.Cards,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
}

// GetByID retrieves a deck owned by the user.
func (r *FlashcardRepository) GetByID(ctx context.Context, userID int, id uuid.UUID) (*model.FlashcardDeck, error) {
	d := &model.FlashcardDeck{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, name, cards, created_at, updated_at
		 FROM flashcard_decks WHERE id = $1 AND user_id = $2`, id, userID,
	).Scan(&d.ID, &d.UserID, &d.Name, &d.Cards, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ListByUser retrieves all of a user's decks, most recently updated first.
func (r *FlashcardRepository) ListByUser(ctx context.Context, userID int) ([]model.FlashcardDeck, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, name, cards, created_at, updated_at
		 FROM flashcard_decks
		 WHERE user_id = $1
		 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decks []model.FlashcardDeck
	for rows.Next() {
		var d model.FlashcardDeck
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.Cards,
			&d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

// Update replaces a deck's name and cards.
func (r *FlashcardRepository) Update(ctx context.Context, d *model.FlashcardDeck) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE flashcard_decks
		 SET name = $1, cards = $2, updated_at = NOW()
		 WHERE id = $3 AND user_id = $4`,
		d.Name, d.Cards, d.ID, d.UserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a deck owned by the user.
func (r *FlashcardRepository) Delete(ctx context.Context, userID int, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM flashcard_decks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
