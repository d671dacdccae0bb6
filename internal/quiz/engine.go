package quiz

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/prepmed/prepmed-backend/internal/model"
)

// State enumerates the session engine's lifecycle states.
type State string

const (
	StateIdle      State = "IDLE"
	StateActive    State = "ACTIVE"
	StatePaused    State = "PAUSED"
	StateSubmitted State = "SUBMITTED"
)

// QuestionSupplier provides the question snapshot a session is built from.
// Implementations must be safe to call repeatedly with the same filters.
type QuestionSupplier interface {
	FetchQuestions(ctx context.Context, filters model.QuestionFilters) ([]model.Question, error)
}

// ResultSink receives the graded result of a submitted session. Delivery is
// best-effort: a sink failure is logged and never blocks the submission.
type ResultSink interface {
	SaveResult(ctx context.Context, cfg Config, sum Summary) error
}

// Engine is the quiz session state machine for a single user. It owns the
// live session, the single saved-session slot, and the countdown timer, and
// persists every mutation through its Store so a process restart can
// reconstruct the session.
//
// All methods are safe for concurrent use; timer ticks and user mutations
// serialize on one mutex, and every exit from ACTIVE stops the timer and is
// additionally guarded by a state check so a stale tick can never fire a
// second submission.
type Engine struct {
	mu      sync.Mutex
	state   State
	session *Session
	saved   *Session
	summary *Summary

	supplier QuestionSupplier
	store    Store
	sink     ResultSink
	clock    *timer
	interval time.Duration
	log      zerolog.Logger
}

// NewEngine builds an engine and hydrates it from the store. A persisted
// state that claims ACTIVE but has no question snapshot is treated as
// corrupt: the engine self-heals to IDLE, discards the record, and logs the
// fault instead of presenting a broken session.
func NewEngine(supplier QuestionSupplier, store Store, sink ResultSink, log zerolog.Logger) *Engine {
	return newEngine(supplier, store, sink, log, tickInterval)
}

// NewEngineWithInterval is for tests that need a fast or manual clock.
func NewEngineWithInterval(supplier QuestionSupplier, store Store, sink ResultSink, log zerolog.Logger, interval time.Duration) *Engine {
	return newEngine(supplier, store, sink, log, interval)
}

func newEngine(supplier QuestionSupplier, store Store, sink ResultSink, log zerolog.Logger, interval time.Duration) *Engine {
	e := &Engine{
		state:    StateIdle,
		supplier: supplier,
		store:    store,
		sink:     sink,
		interval: interval,
		log:      log.With().Str("component", "quiz_engine").Logger(),
	}
	e.hydrate()
	return e
}

// hydrate restores persisted state. Runs once from the constructor, before
// the engine is shared, so no locking is needed.
func (e *Engine) hydrate() {
	ctx := context.Background()

	ps, err := e.store.Load(ctx)
	if err != nil {
		e.log.Warn().Err(err).Msg("Session store unreadable, starting idle")
		return
	}
	if ps == nil {
		return
	}

	e.saved = ps.Saved

	if !ps.Active {
		return
	}

	// Claimed active: verify the snapshot before trusting it.
	if ps.Session == nil || len(ps.Session.Questions) == 0 {
		e.log.Warn().Msg("Corrupted session state (active with no questions), resetting")
		e.saved = nil
		if err := e.store.Clear(ctx); err != nil {
			e.log.Warn().Err(err).Msg("Failed to clear corrupt session state")
		}
		return
	}

	e.session = ps.Session
	if e.session.Ledger == nil {
		e.session.Ledger = NewLedger(e.session.questionIDs())
	}
	e.state = StateActive
	e.log.Info().
		Int("questions", len(e.session.Questions)).
		Int("time_remaining", e.session.TimeRemaining).
		Msg("Session restored")
	e.armClock()

	if e.session.TimeRemaining <= 0 {
		// Clock had already run out when the process stopped.
		e.submitLocked(ctx, true)
	}
}

// Start builds a new session from cfg and activates it.
// Fails with ErrSessionAlreadySaved while the saved slot is occupied, and
// with ErrNoQuestionsAvailable when the supplier returns nothing after
// filtering. A failed start leaves the engine untouched.
func (e *Engine) Start(ctx context.Context, cfg Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.saved != nil {
		return ErrSessionAlreadySaved
	}
	if e.state == StateActive {
		return ErrSessionActive
	}

	questions, err := e.supplier.FetchQuestions(ctx, cfg.filters())
	if err != nil {
		return fmt.Errorf("fetch questions: %w", err)
	}

	if cfg.ExcludeImages {
		kept := questions[:0]
		for _, q := range questions {
			if !q.HasImage() {
				kept = append(kept, q)
			}
		}
		questions = kept
	}

	if len(questions) == 0 {
		return ErrNoQuestionsAvailable
	}

	if cfg.Count > 0 && len(questions) > cfg.Count {
		questions = questions[:cfg.Count]
	}

	total := cfg.duration(len(questions))
	e.session = &Session{
		Questions:     questions,
		Ledger:        NewLedger(questionIDsOf(questions)),
		Cursor:        0,
		TimeRemaining: total,
		TimeInitial:   total,
		Config:        cfg,
	}
	e.summary = nil
	e.state = StateActive
	e.persistLocked(ctx)

	e.log.Info().
		Str("title", cfg.Title).
		Int("questions", len(questions)).
		Int("duration_seconds", total).
		Bool("grand_test", cfg.GrandTest).
		Msg("Session started")

	e.armClock()
	if total <= 0 {
		e.submitLocked(ctx, true)
	}
	return nil
}

// Pause snapshots the active session into the saved slot and stops the
// clock. Rejected for strict-timing (including grand test) sessions.
func (e *Engine) Pause(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateActive {
		return ErrNoActiveSession
	}
	if e.session.Config.StrictTiming || e.session.Config.GrandTest {
		return ErrStrictTiming
	}

	e.stopClock()
	e.saved = e.session.clone()
	e.session = nil
	e.state = StatePaused
	e.persistLocked(ctx)

	e.log.Info().Int("time_remaining", e.saved.TimeRemaining).Msg("Session paused")
	return nil
}

// Resume restores the saved session verbatim, clears the slot, and re-arms
// the clock at the exact remaining time recorded at pause.
func (e *Engine) Resume(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateActive {
		return ErrSessionActive
	}
	if e.saved == nil {
		return ErrNoSavedSession
	}

	e.session = e.saved
	e.saved = nil
	e.summary = nil
	e.state = StateActive
	e.persistLocked(ctx)

	e.log.Info().Int("time_remaining", e.session.TimeRemaining).Msg("Session resumed")

	e.armClock()
	if e.session.TimeRemaining <= 0 {
		e.submitLocked(ctx, true)
	}
	return nil
}

// Submit grades the active session and finishes it. Idempotent with respect
// to timer expiry: whichever path reaches submission first wins and the
// other becomes a no-op.
func (e *Engine) Submit(ctx context.Context) (*Summary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateActive {
		return nil, ErrNoActiveSession
	}
	e.submitLocked(ctx, false)
	return e.summary, nil
}

// submitLocked performs the ACTIVE -> SUBMITTED transition. Caller holds the
// lock and has verified state == StateActive (or is finishing hydration).
func (e *Engine) submitLocked(ctx context.Context, auto bool) {
	e.stopClock()
	e.saved = nil

	sum := Grade(e.session.Questions, e.session.Ledger, e.session.TimeInitial, e.session.TimeRemaining)
	e.summary = &sum
	e.state = StateSubmitted
	e.persistLocked(ctx)

	e.log.Info().
		Bool("auto", auto).
		Int("score", sum.Score).
		Int("attempted", sum.Attempted).
		Msg("Session submitted")

	if e.sink != nil {
		if err := e.sink.SaveResult(ctx, e.session.Config, sum); err != nil {
			// Best-effort persistence: the user still gets their results.
			e.log.Warn().Err(err).Msg("Result persistence failed")
		}
	}
}

// Tick advances the countdown by one second. A tick arriving after the
// session left ACTIVE is discarded; when the clock reaches zero the session
// auto-submits exactly once.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateActive {
		return
	}

	if e.session.TimeRemaining > 0 {
		e.session.TimeRemaining--
	}
	if e.session.TimeRemaining <= 0 {
		e.log.Info().Msg("Time expired, auto-submitting")
		e.submitLocked(context.Background(), true)
		return
	}
	e.persistLocked(context.Background())
}

// SelectAnswer records an answer for a question in the active session.
func (e *Engine) SelectAnswer(ctx context.Context, questionID string, optionIndex int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateActive {
		return ErrNoActiveSession
	}
	if optionIndex < 0 || optionIndex >= model.QuestionOptionCount {
		return fmt.Errorf("option index %d out of range", optionIndex)
	}
	if !e.hasQuestion(questionID) {
		return fmt.Errorf("question %q not in session", questionID)
	}
	e.session.Ledger.SelectAnswer(questionID, optionIndex)
	e.persistLocked(ctx)
	return nil
}

// ToggleMark flips the review flag for a question in the active session.
func (e *Engine) ToggleMark(ctx context.Context, questionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateActive {
		return ErrNoActiveSession
	}
	if !e.hasQuestion(questionID) {
		return fmt.Errorf("question %q not in session", questionID)
	}
	e.session.Ledger.ToggleMark(questionID)
	e.persistLocked(ctx)
	return nil
}

// ClearAnswer removes the recorded answer for a question.
func (e *Engine) ClearAnswer(ctx context.Context, questionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateActive {
		return ErrNoActiveSession
	}
	if !e.hasQuestion(questionID) {
		return fmt.Errorf("question %q not in session", questionID)
	}
	e.session.Ledger.Clear(questionID)
	e.persistLocked(ctx)
	return nil
}

// SetCursor changes which question is displayed. Navigation never
// transitions the state machine; the index is clamped into range.
func (e *Engine) SetCursor(ctx context.Context, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return ErrNoActiveSession
	}
	if index < 0 {
		index = 0
	}
	if max := len(e.session.Questions) - 1; index > max {
		index = max
	}
	e.session.Cursor = index
	e.persistLocked(ctx)
	return nil
}

// Discard drops the active session and any saved slot without grading.
func (e *Engine) Discard(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopClock()
	e.session = nil
	e.saved = nil
	e.summary = nil
	e.state = StateIdle
	if err := e.store.Clear(ctx); err != nil {
		e.log.Warn().Err(err).Msg("Failed to clear session store")
	}
	e.log.Info().Msg("Session discarded")
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Snapshot returns a copy of the live (or just-submitted) session, or nil.
func (e *Engine) Snapshot() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	return e.session.clone()
}

// SavedSnapshot returns a copy of the saved-session slot, or nil.
func (e *Engine) SavedSnapshot() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.saved == nil {
		return nil
	}
	return e.saved.clone()
}

// Results returns the grading summary of the last submitted session, or nil.
func (e *Engine) Results() *Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.summary
}

// Close stops the countdown without touching persisted state. Used on
// process shutdown; the session itself survives in the store.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopClock()
}

func (e *Engine) armClock() {
	e.stopClock()
	if e.interval <= 0 {
		return // manual clock: tests drive Tick directly
	}
	e.clock = startTimer(e.interval, e.Tick)
}

func (e *Engine) stopClock() {
	if e.clock != nil {
		e.clock.Stop()
		e.clock = nil
	}
}

func (e *Engine) hasQuestion(id string) bool {
	for i := range e.session.Questions {
		if e.session.Questions[i].ID == id {
			return true
		}
	}
	return false
}

func (e *Engine) persistLocked(ctx context.Context) {
	ps := &PersistedState{
		Active:  e.state == StateActive,
		Session: e.session,
		Saved:   e.saved,
	}
	if err := e.store.Save(ctx, ps); err != nil {
		e.log.Warn().Err(err).Msg("Failed to persist session state")
	}
}

func questionIDsOf(questions []model.Question) []string {
	ids := make([]string, len(questions))
	for i := range questions {
		ids[i] = questions[i].ID
	}
	return ids
}
