package model

import (
	"time"

	"github.com/google/uuid"
)

// Flashcard is a single cue/answer card inside a deck.
type Flashcard struct {
	Cue           string   `json:"cue"`
	Answer        string   `json:"answer"`
	HighYieldNote string   `json:"high_yield_note,omitempty"`
	Subject       string   `json:"subject,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// FlashcardDeck is a user-owned collection of flashcards.
type FlashcardDeck struct {
	ID        uuid.UUID   `json:"id"`
	UserID    int         `json:"user_id"`
	Name      string      `json:"name"`
	Cards     []Flashcard `json:"cards"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// CreateDeckRequest is the payload for creating a deck.
type CreateDeckRequest struct {
	Name  string      `json:"name" binding:"required,min=1,max=120"`
	Cards []Flashcard `json:"cards" binding:"omitempty,dive"`
}

// UpdateDeckRequest replaces a deck's name and/or cards.
type UpdateDeckRequest struct {
	Name  string      `json:"name" binding:"omitempty,min=1,max=120"`
	Cards []Flashcard `json:"cards" binding:"omitempty,dive"`
}

// GenerateDeckRequest asks the AI collaborator to build a deck on a topic.
type GenerateDeckRequest struct {
	Topic string `json:"topic" binding:"required,min=2,max=200"`
	Count int    `json:"count" binding:"omitempty,min=1,max=50"`
}
