package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prepmed/prepmed-backend/internal/ai"
	"github.com/prepmed/prepmed-backend/internal/encounter"
	"github.com/prepmed/prepmed-backend/internal/repository"
)

// ErrNoActiveEncounter is returned for decisions outside a running case.
var ErrNoActiveEncounter = errors.New("no active encounter")

// EncounterService owns one encounter engine per user and sources cases
// from the library or the AI generator.
type EncounterService struct {
	cases *repository.CaseRepository
	aicli *ai.Client
	log   zerolog.Logger

	mu      sync.Mutex
	engines map[int]*encounter.Engine
}

// NewEncounterService creates a new EncounterService.
func NewEncounterService(cases *repository.CaseRepository, aicli *ai.Client, log zerolog.Logger) *EncounterService {
	return &EncounterService{
		cases:   cases,
		aicli:   aicli,
		log:     log,
		engines: make(map[int]*encounter.Engine),
	}
}

func (s *EncounterService) engineFor(userID int) *encounter.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.engines[userID]; ok {
		return e
	}
	e := encounter.NewEngine(s.log.With().Int("user_id", userID).Logger())
	s.engines[userID] = e
	return e
}

// StartStored begins a traversal of a library case.
func (s *EncounterService) StartStored(ctx context.Context, userID int, caseID uuid.UUID) (*encounter.Run, error) {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	e := s.engineFor(userID)
	if err := e.Start(c); err != nil {
		return nil, err
	}
	return e.Snapshot(), nil
}

// StartRandom samples a library case, optionally narrowed to a subject.
func (s *EncounterService) StartRandom(ctx context.Context, userID int, subject string) (*encounter.Run, error) {
	c, err := s.cases.GetRandom(ctx, subject)
	if err != nil {
		return nil, err
	}
	e := s.engineFor(userID)
	if err := e.Start(c); err != nil {
		return nil, err
	}
	return e.Snapshot(), nil
}

// StartGenerated asks the AI for a fresh case, stores it in the library,
// and begins a traversal. Storage failure is tolerated; the run proceeds
// on the in-memory case.
func (s *EncounterService) StartGenerated(ctx context.Context, userID int, subject, difficulty string) (*encounter.Run, error) {
	c, err := s.aicli.GenerateCase(ctx, subject, difficulty)
	if err != nil {
		return nil, err
	}
	if err := s.cases.Create(ctx, c); err != nil {
		s.log.Warn().Err(err).Str("title", c.Title).Msg("Failed to store generated case")
	}

	e := s.engineFor(userID)
	if err := e.Start(c); err != nil {
		return nil, err
	}
	return e.Snapshot(), nil
}

// Act takes a decision in the user's running encounter.
func (s *EncounterService) Act(userID int, label string, nextStep int) (*encounter.Run, error) {
	e := s.engineFor(userID)
	if e.State() != encounter.StateInProgress {
		return nil, ErrNoActiveEncounter
	}
	e.Act(label, nextStep)
	return e.Snapshot(), nil
}

// GetRun returns the user's current run, or nil.
func (s *EncounterService) GetRun(userID int) *encounter.Run {
	return s.engineFor(userID).Snapshot()
}

// End abandons the user's current run.
func (s *EncounterService) End(userID int) {
	s.engineFor(userID).End()
}

// ListCases returns library case summaries for browsing.
func (s *EncounterService) ListCases(ctx context.Context, subject string) ([]encounter.Case, error) {
	return s.cases.List(ctx, subject)
}
