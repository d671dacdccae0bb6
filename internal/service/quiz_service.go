package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prepmed/prepmed-backend/internal/config"
	"github.com/prepmed/prepmed-backend/internal/model"
	"github.com/prepmed/prepmed-backend/internal/quiz"
	"github.com/prepmed/prepmed-backend/internal/repository"
	"github.com/prepmed/prepmed-backend/internal/sessionstore"
)

// QuizService owns one quiz engine per user. Engines are created lazily on
// first touch and hydrate themselves from the session store, so a process
// restart is invisible to an in-flight test.
type QuizService struct {
	cfg       *config.Config
	rdb       *redis.Client
	questions *repository.QuestionRepository
	snapshots *repository.SnapshotRepository
	log       zerolog.Logger

	mu      sync.Mutex
	engines map[int]*quiz.Engine
}

// NewQuizService creates a new QuizService.
func NewQuizService(cfg *config.Config, rdb *redis.Client, questions *repository.QuestionRepository, snapshots *repository.SnapshotRepository, log zerolog.Logger) *QuizService {
	return &QuizService{
		cfg:       cfg,
		rdb:       rdb,
		questions: questions,
		snapshots: snapshots,
		log:       log,
		engines:   make(map[int]*quiz.Engine),
	}
}

// engineFor returns the user's engine, constructing and hydrating it on
// first use.
func (s *QuizService) engineFor(userID int) *quiz.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.engines[userID]; ok {
		return e
	}

	uid := strconv.Itoa(userID)
	store := sessionstore.NewRedis(s.rdb, uid, s.cfg.SessionTTL, s.snapshots, s.log)
	supplier := &shufflingSupplier{questions: s.questions}
	sink := &queueSink{rdb: s.rdb, userID: userID}

	e := quiz.NewEngine(supplier, store, sink, s.log.With().Int("user_id", userID).Logger())
	s.engines[userID] = e
	return e
}

// StartTest begins a new session for the user.
func (s *QuizService) StartTest(ctx context.Context, userID int, cfg quiz.Config) error {
	err := s.engineFor(userID).Start(ctx, cfg)
	if err == nil {
		s.enqueueSnapshot(ctx, userID)
	}
	return err
}

// PauseTest freezes the user's active session into the saved slot.
func (s *QuizService) PauseTest(ctx context.Context, userID int) error {
	err := s.engineFor(userID).Pause(ctx)
	if err == nil {
		s.enqueueSnapshot(ctx, userID)
	}
	return err
}

// ResumeTest restores the user's saved session.
func (s *QuizService) ResumeTest(ctx context.Context, userID int) error {
	err := s.engineFor(userID).Resume(ctx)
	if err == nil {
		s.enqueueSnapshot(ctx, userID)
	}
	return err
}

// SubmitTest grades and finishes the user's active session.
func (s *QuizService) SubmitTest(ctx context.Context, userID int) (*quiz.Summary, error) {
	sum, err := s.engineFor(userID).Submit(ctx)
	if err == nil {
		s.enqueueSnapshot(ctx, userID)
	}
	return sum, err
}

// DiscardTest drops the user's session and saved slot without grading.
func (s *QuizService) DiscardTest(ctx context.Context, userID int) {
	s.engineFor(userID).Discard(ctx)
	if err := s.snapshots.Delete(ctx, strconv.Itoa(userID)); err != nil {
		s.log.Warn().Err(err).Int("user_id", userID).Msg("Failed to delete durable snapshot")
	}
}

// SelectAnswer records an answer in the user's active session.
func (s *QuizService) SelectAnswer(ctx context.Context, userID int, questionID string, optionIndex int) error {
	return s.engineFor(userID).SelectAnswer(ctx, questionID, optionIndex)
}

// ToggleMark flips the review flag on a question.
func (s *QuizService) ToggleMark(ctx context.Context, userID int, questionID string) error {
	return s.engineFor(userID).ToggleMark(ctx, questionID)
}

// ClearAnswer removes a recorded answer.
func (s *QuizService) ClearAnswer(ctx context.Context, userID int, questionID string) error {
	return s.engineFor(userID).ClearAnswer(ctx, questionID)
}

// SetCursor moves the user's question cursor.
func (s *QuizService) SetCursor(ctx context.Context, userID int, index int) error {
	return s.engineFor(userID).SetCursor(ctx, index)
}

// SessionState describes the user's quiz state for the client.
type SessionState struct {
	State   quiz.State    `json:"state"`
	Session *quiz.Session `json:"session,omitempty"`
	Saved   *quiz.Session `json:"saved,omitempty"`
	Results *quiz.Summary `json:"results,omitempty"`
}

// GetState returns the user's current engine state and session snapshots.
func (s *QuizService) GetState(userID int) SessionState {
	e := s.engineFor(userID)
	return SessionState{
		State:   e.State(),
		Session: e.Snapshot(),
		Saved:   e.SavedSnapshot(),
		Results: e.Results(),
	}
}

// Subjects lists the distinct subjects in the question bank.
func (s *QuizService) Subjects(ctx context.Context) ([]string, error) {
	return s.questions.Subjects(ctx)
}

// Close stops every engine's clock. Sessions survive in the store.
func (s *QuizService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.engines {
		e.Close()
	}
}

// enqueueSnapshot asks the snapshot worker to copy the user's session state
// from Redis into the durable store.
func (s *QuizService) enqueueSnapshot(ctx context.Context, userID int) {
	payload, _ := json.Marshal(snapshotJob{UserID: userID})
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistSnapshotsQueue, payload).Err(); err != nil {
		s.log.Warn().Err(err).Int("user_id", userID).Msg("Failed to enqueue snapshot job")
	}
}

type snapshotJob struct {
	UserID int `json:"user_id"`
}

// shufflingSupplier fetches an oversized candidate pull and re-shuffles it
// in-process before the engine trims to the requested count.
type shufflingSupplier struct {
	questions *repository.QuestionRepository
}

func (s *shufflingSupplier) FetchQuestions(ctx context.Context, filters model.QuestionFilters) ([]model.Question, error) {
	qs, err := s.questions.ListFiltered(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	rand.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
	return qs, nil
}

// queueSink hands graded results to the persistence worker via Redis, so a
// submission never waits on PostgreSQL.
type queueSink struct {
	rdb    *redis.Client
	userID int
}

func (q *queueSink) SaveResult(ctx context.Context, cfg quiz.Config, sum quiz.Summary) error {
	res := model.TestResult{
		UserID:             q.userID,
		Title:              cfg.Title,
		Source:             firstOf(cfg.Sources),
		Subject:            cfg.Subject,
		Score:              sum.Score,
		Correct:            sum.Correct,
		Incorrect:          sum.Incorrect,
		Attempted:          sum.Attempted,
		TotalQuestions:     sum.TotalQuestions,
		TimeSpentSeconds:   sum.TimeSpentSeconds,
		SubjectBreakdown:   sum.SubjectBreakdown,
		CognitiveBreakdown: sum.CognitiveBreakdown,
		GrandTest:          cfg.GrandTest,
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, payload).Err()
}

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
