package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prepmed/prepmed-backend/internal/ai"
	"github.com/prepmed/prepmed-backend/internal/model"
	"github.com/prepmed/prepmed-backend/internal/repository"
)

// FlashcardService manages user decks, including AI-generated ones.
type FlashcardService struct {
	decks *repository.FlashcardRepository
	aicli *ai.Client
	log   zerolog.Logger
}

// NewFlashcardService creates a new FlashcardService.
func NewFlashcardService(decks *repository.FlashcardRepository, aicli *ai.Client, log zerolog.Logger) *FlashcardService {
	return &FlashcardService{decks: decks, aicli: aicli, log: log}
}

// CreateDeck stores a user-authored deck.
func (s *FlashcardService) CreateDeck(ctx context.Context, userID int, req model.CreateDeckRequest) (*model.FlashcardDeck, error) {
	d := &model.FlashcardDeck{
		UserID: userID,
		Name:   req.Name,
		Cards:  req.Cards,
	}
	if d.Cards == nil {
		d.Cards = []model.Flashcard{}
	}
	if err := s.decks.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// GenerateDeck asks the AI for cards on a topic and stores them as a deck.
func (s *FlashcardService) GenerateDeck(ctx context.Context, userID int, req model.GenerateDeckRequest) (*model.FlashcardDeck, error) {
	cards, err := s.aicli.GenerateDeck(ctx, req.Topic, req.Count)
	if err != nil {
		return nil, err
	}
	d := &model.FlashcardDeck{
		UserID: userID,
		Name:   req.Topic,
		Cards:  cards,
	}
	if err := s.decks.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ListDecks returns the user's decks.
func (s *FlashcardService) ListDecks(ctx context.Context, userID int) ([]model.FlashcardDeck, error) {
	return s.decks.ListByUser(ctx, userID)
}

// GetDeck returns one deck owned by the user.
func (s *FlashcardService) GetDeck(ctx context.Context, userID int, id uuid.UUID) (*model.FlashcardDeck, error) {
	return s.decks.GetByID(ctx, userID, id)
}

// UpdateDeck replaces a deck's name and/or cards.
func (s *FlashcardService) UpdateDeck(ctx context.Context, userID int, id uuid.UUID, req model.UpdateDeckRequest) (*model.FlashcardDeck, error) {
	d, err := s.decks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		d.Name = req.Name
	}
	if req.Cards != nil {
		d.Cards = req.Cards
	}
	if err := s.decks.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// DeleteDeck removes a deck owned by the user.
func (s *FlashcardService) DeleteDeck(ctx context.Context, userID int, id uuid.UUID) error {
	return s.decks.Delete(ctx, userID, id)
}
