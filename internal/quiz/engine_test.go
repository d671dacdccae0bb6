package quiz

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/prepmed/prepmed-backend/internal/model"
)

// stubSupplier returns a fixed question set (or error).
type stubSupplier struct {
	questions []model.Question
	err       error
	calls     int
}

func (s *stubSupplier) FetchQuestions(_ context.Context, _ model.QuestionFilters) ([]model.Question, error) {
	s.calls++
	return append([]model.Question(nil), s.questions...), s.err
}

// stubStore keeps persisted state in memory.
type stubStore struct {
	state   *PersistedState
	loadErr error
	saves   int
}

func (s *stubStore) Load(context.Context) (*PersistedState, error) {
	return s.state, s.loadErr
}

func (s *stubStore) Save(_ context.Context, ps *PersistedState) error {
	s.saves++
	s.state = ps
	return nil
}

func (s *stubStore) Clear(context.Context) error {
	s.state = nil
	return nil
}

// stubSink records submitted results.
type stubSink struct {
	results []Summary
	err     error
}

func (s *stubSink) SaveResult(_ context.Context, _ Config, sum Summary) error {
	s.results = append(s.results, sum)
	return s.err
}

func testQuestions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			ID:            string(rune('a' + i)),
			CorrectOption: 1,
			Subject:       "Medicine",
		}
	}
	return qs
}

// newTestEngine builds an engine with a manual clock (interval 0): tests
// drive the countdown via Tick.
func newTestEngine(sup QuestionSupplier, store Store, sink ResultSink) *Engine {
	return NewEngineWithInterval(sup, store, sink, zerolog.Nop(), 0)
}

func TestStartActivatesSession(t *testing.T) {
	sup := &stubSupplier{questions: testQuestions(5)}
	store := &stubStore{}
	e := newTestEngine(sup, store, &stubSink{})

	err := e.Start(context.Background(), Config{Count: 3, Title: "Medicine Mini"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if e.State() != StateActive {
		t.Fatalf("state = %v, want ACTIVE", e.State())
	}

	snap := e.Snapshot()
	if len(snap.Questions) != 3 {
		t.Fatalf("questions = %d, want 3 (trimmed to count)", len(snap.Questions))
	}
	if snap.TimeInitial != 3*TimePerQuestionSeconds || snap.TimeRemaining != snap.TimeInitial {
		t.Fatalf("timer = %d/%d, want %d", snap.TimeRemaining, snap.TimeInitial, 3*TimePerQuestionSeconds)
	}
	if snap.Cursor != 0 {
		t.Fatalf("cursor = %d, want 0", snap.Cursor)
	}
	if store.state == nil || !store.state.Active {
		t.Fatal("session not persisted as active")
	}
}

func TestStartTimerPrecedence(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want int
	}{
		{"explicit timer wins", Config{Count: 10, TimerSeconds: 600, GrandTest: true}, 600},
		{"grand test fixed duration", Config{Count: 10, GrandTest: true}, GrandTestMinutes * 60},
		{"per-question default", Config{Count: 10}, 10 * TimePerQuestionSeconds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(&stubSupplier{questions: testQuestions(10)}, &stubStore{}, &stubSink{})
			if err := e.Start(context.Background(), tt.cfg); err != nil {
				t.Fatalf("Start: %v", err)
			}
			if got := e.Snapshot().TimeInitial; got != tt.want {
				t.Errorf("TimeInitial = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStartFailsWithNoQuestions(t *testing.T) {
	e := newTestEngine(&stubSupplier{}, &stubStore{}, &stubSink{})

	err := e.Start(context.Background(), Config{Subject: "Nephrology", Sources: []string{"Marrow"}, Count: 10})
	if !errors.Is(err, ErrNoQuestionsAvailable) {
		t.Fatalf("err = %v, want ErrNoQuestionsAvailable", err)
	}
	if e.State() != StateIdle {
		t.Fatalf("state = %v, want IDLE (no partial mutation)", e.State())
	}
	if e.Snapshot() != nil {
		t.Fatal("no session should exist after failed start")
	}
}

func TestStartExcludesImageQuestionsBeforeEmptyCheck(t *testing.T) {
	qs := testQuestions(2)
	qs[0].ImageURL = "img/a.png"
	qs[1].ImageURL = "img/b.png"
	e := newTestEngine(&stubSupplier{questions: qs}, &stubStore{}, &stubSink{})

	err := e.Start(context.Background(), Config{Count: 2, ExcludeImages: true})
	if !errors.Is(err, ErrNoQuestionsAvailable) {
		t.Fatalf("err = %v, want ErrNoQuestionsAvailable after image exclusion", err)
	}
}

func TestStartRejectedWhileSaved(t *testing.T) {
	sup := &stubSupplier{questions: testQuestions(4)}
	store := &stubStore{}
	e := newTestEngine(sup, store, &stubSink{})
	ctx := context.Background()

	if err := e.Start(ctx, Config{Count: 4}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := e.SelectAnswer(ctx, "a", 0); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if err := e.Pause(ctx); err != nil {
		t.Fatalf("Pause: %v", err)
	}

	err := e.Start(ctx, Config{Count: 4})
	if !errors.Is(err, ErrSessionAlreadySaved) {
		t.Fatalf("err = %v, want ErrSessionAlreadySaved", err)
	}

	// The paused session must be untouched.
	saved := e.SavedSnapshot()
	if saved == nil || len(saved.Questions) != 4 {
		t.Fatal("saved session mutated by rejected start")
	}
	if ans, ok := saved.Ledger.Answer("a"); !ok || ans != 0 {
		t.Fatal("saved ledger mutated by rejected start")
	}
	if e.State() != StatePaused {
		t.Fatalf("state = %v, want PAUSED", e.State())
	}
}

func TestPauseResumeRestoresExactTimer(t *testing.T) {
	e := newTestEngine(&stubSupplier{questions: testQuestions(4)}, &stubStore{}, &stubSink{})
	ctx := context.Background()

	if err := e.Start(ctx, Config{Count: 4}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 37; i++ {
		e.Tick()
	}
	before := e.Snapshot().TimeRemaining

	if err := e.Pause(ctx); err != nil {
		t.Fatalf("Pause: %v", err)
	}

	// Ticks while paused must not move the clock.
	for i := 0; i < 10; i++ {
		e.Tick()
	}
	if got := e.SavedSnapshot().TimeRemaining; got != before {
		t.Fatalf("paused timer = %d, want frozen at %d", got, before)
	}

	if err := e.Resume(ctx); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if got := e.Snapshot().TimeRemaining; got != before {
		t.Fatalf("resumed timer = %d, want %d", got, before)
	}
	if e.SavedSnapshot() != nil {
		t.Fatal("saved slot should be cleared after resume")
	}
}

func TestTimerMonotonicWhileActive(t *testing.T) {
	e := newTestEngine(&stubSupplier{questions: testQuestions(2)}, &stubStore{}, &stubSink{})
	if err := e.Start(context.Background(), Config{Count: 2}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	prev := e.Snapshot().TimeRemaining
	for i := 0; i < 50; i++ {
		e.Tick()
		cur := e.Snapshot().TimeRemaining
		if cur > prev {
			t.Fatalf("timer increased: %d -> %d", prev, cur)
		}
		prev = cur
	}
}

func TestPauseRejectedForStrictTiming(t *testing.T) {
	for _, cfg := range []Config{
		{Count: 2, StrictTiming: true},
		{Count: 2, GrandTest: true},
	} {
		e := newTestEngine(&stubSupplier{questions: testQuestions(2)}, &stubStore{}, &stubSink{})
		if err := e.Start(context.Background(), cfg); err != nil {
			t.Fatalf("Start: %v", err)
		}
		if err := e.Pause(context.Background()); !errors.Is(err, ErrStrictTiming) {
			t.Fatalf("Pause err = %v, want ErrStrictTiming", err)
		}
		if e.State() != StateActive {
			t.Fatalf("state = %v, want still ACTIVE", e.State())
		}
	}
}

func TestAutoSubmitFiresExactlyOnce(t *testing.T) {
	sink := &stubSink{}
	e := newTestEngine(&stubSupplier{questions: testQuestions(10)}, &stubStore{}, sink)
	if err := e.Start(context.Background(), Config{Count: 10, TimerSeconds: 600, Title: "Timed"}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// 600 simulated ticks expire the clock; extra ticks must be no-ops.
	for i := 0; i < 650; i++ {
		e.Tick()
	}

	if e.State() != StateSubmitted {
		t.Fatalf("state = %v, want SUBMITTED", e.State())
	}
	if len(sink.results) != 1 {
		t.Fatalf("results persisted %d times, want exactly once", len(sink.results))
	}
	sum := sink.results[0]
	if sum.Attempted != 0 || sum.Score != 0 {
		t.Fatalf("attempted/score = %d/%d, want 0/0", sum.Attempted, sum.Score)
	}
	if sum.TimeSpentSeconds != 600 {
		t.Fatalf("time spent = %d, want 600", sum.TimeSpentSeconds)
	}
}

func TestManualSubmitThenTickDoesNotDoubleFire(t *testing.T) {
	sink := &stubSink{}
	e := newTestEngine(&stubSupplier{questions: testQuestions(2)}, &stubStore{}, sink)
	ctx := context.Background()
	if err := e.Start(ctx, Config{Count: 2, TimerSeconds: 1}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := e.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	// A stale tick arriving after submission must be discarded.
	e.Tick()
	e.Tick()

	if len(sink.results) != 1 {
		t.Fatalf("results persisted %d times, want 1", len(sink.results))
	}
	if _, err := e.Submit(ctx); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("second Submit err = %v, want ErrNoActiveSession", err)
	}
}

func TestSubmitSurvivesSinkFailure(t *testing.T) {
	sink := &stubSink{err: errors.New("backend down")}
	e := newTestEngine(&stubSupplier{questions: testQuestions(2)}, &stubStore{}, sink)
	ctx := context.Background()
	if err := e.Start(ctx, Config{Count: 2}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	sum, err := e.Submit(ctx)
	if err != nil {
		t.Fatalf("Submit should succeed despite sink failure: %v", err)
	}
	if sum == nil || e.Results() == nil {
		t.Fatal("locally-computed results must be available")
	}
}

func TestZeroTimeActiveSessionExpiresImmediately(t *testing.T) {
	sink := &stubSink{}
	store := &stubStore{state: &PersistedState{
		Active: true,
		Session: &Session{
			Questions:     testQuestions(3),
			Ledger:        NewLedger([]string{"a", "b", "c"}),
			TimeRemaining: 0,
			TimeInitial:   270,
		},
	}}

	e := newTestEngine(&stubSupplier{}, store, sink)
	if e.State() != StateSubmitted {
		t.Fatalf("state = %v, want SUBMITTED (immediate expiry)", e.State())
	}
	if len(sink.results) != 1 {
		t.Fatalf("expiry fired %d times, want once", len(sink.results))
	}
}

func TestHydrateRestoresActiveSession(t *testing.T) {
	l := NewLedger([]string{"a", "b"})
	l.SelectAnswer("a", 1)
	store := &stubStore{state: &PersistedState{
		Active: true,
		Session: &Session{
			Questions:     testQuestions(2),
			Ledger:        l,
			Cursor:        1,
			TimeRemaining: 42,
			TimeInitial:   180,
		},
	}}

	e := newTestEngine(&stubSupplier{}, store, &stubSink{})
	if e.State() != StateActive {
		t.Fatalf("state = %v, want ACTIVE", e.State())
	}
	snap := e.Snapshot()
	if snap.TimeRemaining != 42 || snap.Cursor != 1 {
		t.Fatalf("restored timer/cursor = %d/%d, want 42/1", snap.TimeRemaining, snap.Cursor)
	}
	if ans, ok := snap.Ledger.Answer("a"); !ok || ans != 1 {
		t.Fatal("restored ledger lost an answer")
	}
}

func TestHydrateSelfHealsCorruptState(t *testing.T) {
	// Claims active but the question snapshot is empty.
	store := &stubStore{state: &PersistedState{
		Active:  true,
		Session: &Session{TimeRemaining: 100},
	}}

	e := newTestEngine(&stubSupplier{}, store, &stubSink{})
	if e.State() != StateIdle {
		t.Fatalf("state = %v, want IDLE after self-heal", e.State())
	}
	if store.state != nil {
		t.Fatal("corrupt record should be discarded")
	}

	// The engine must be fully usable afterwards.
	e2 := newTestEngine(&stubSupplier{questions: testQuestions(2)}, store, &stubSink{})
	if err := e2.Start(context.Background(), Config{Count: 2}); err != nil {
		t.Fatalf("Start after self-heal: %v", err)
	}
}

func TestHydrateToleratesUnreadableStore(t *testing.T) {
	store := &stubStore{loadErr: errors.New("corrupt payload")}
	e := newTestEngine(&stubSupplier{questions: testQuestions(1)}, store, &stubSink{})
	if e.State() != StateIdle {
		t.Fatalf("state = %v, want IDLE", e.State())
	}
}

func TestSetCursorClamps(t *testing.T) {
	e := newTestEngine(&stubSupplier{questions: testQuestions(5)}, &stubStore{}, &stubSink{})
	ctx := context.Background()
	if err := e.Start(ctx, Config{Count: 5}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	tests := []struct{ in, want int }{
		{3, 3},
		{-2, 0},
		{99, 4},
	}
	for _, tt := range tests {
		if err := e.SetCursor(ctx, tt.in); err != nil {
			t.Fatalf("SetCursor(%d): %v", tt.in, err)
		}
		if got := e.Snapshot().Cursor; got != tt.want {
			t.Errorf("cursor after SetCursor(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMutationsRejectedOutsideActive(t *testing.T) {
	e := newTestEngine(&stubSupplier{questions: testQuestions(2)}, &stubStore{}, &stubSink{})
	ctx := context.Background()

	if err := e.SelectAnswer(ctx, "a", 0); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("SelectAnswer while idle: %v", err)
	}
	if err := e.Pause(ctx); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("Pause while idle: %v", err)
	}
	if err := e.Resume(ctx); !errors.Is(err, ErrNoSavedSession) {
		t.Fatalf("Resume with empty slot: %v", err)
	}
}

func TestDiscardReturnsToIdle(t *testing.T) {
	store := &stubStore{}
	e := newTestEngine(&stubSupplier{questions: testQuestions(2)}, store, &stubSink{})
	ctx := context.Background()
	if err := e.Start(ctx, Config{Count: 2}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	e.Discard(ctx)
	if e.State() != StateIdle {
		t.Fatalf("state = %v, want IDLE", e.State())
	}
	if store.state != nil {
		t.Fatal("store should be cleared on discard")
	}
}
