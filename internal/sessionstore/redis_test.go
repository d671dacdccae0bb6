package sessionstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prepmed/prepmed-backend/internal/config"
	"github.com/prepmed/prepmed-backend/internal/model"
	"github.com/prepmed/prepmed-backend/internal/quiz"
)

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb, mr
}

func sampleState() *quiz.PersistedState {
	ledger := quiz.NewLedger([]string{"q1", "q2"})
	ledger.SelectAnswer("q1", 2)
	ledger.ToggleMark("q2")
	return &quiz.PersistedState{
		Active: true,
		Session: &quiz.Session{
			Questions: []model.Question{
				{ID: "q1", Prompt: "First", CorrectOption: 3, Subject: "Medicine"},
				{ID: "q2", Prompt: "Second", CorrectOption: 1, Subject: "Surgery"},
			},
			Ledger:        ledger,
			Cursor:        1,
			TimeRemaining: 140,
			TimeInitial:   180,
			Config:        quiz.Config{Title: "Medicine Mini", Subject: "Medicine", Count: 2},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	rdb, _ := newTestRedis(t)
	store := NewRedis(rdb, "u1", time.Hour, nil, zerolog.Nop())
	ctx := context.Background()

	if err := store.Save(ctx, sampleState()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil || !got.Active || got.Session == nil {
		t.Fatalf("loaded state = %+v, want active session", got)
	}
	if len(got.Session.Questions) != 2 || got.Session.Questions[0].ID != "q1" {
		t.Fatalf("questions = %+v", got.Session.Questions)
	}
	if got.Session.TimeRemaining != 140 || got.Session.TimeInitial != 180 || got.Session.Cursor != 1 {
		t.Fatalf("timer/cursor = %d/%d/%d", got.Session.TimeRemaining, got.Session.TimeInitial, got.Session.Cursor)
	}
	if ans, ok := got.Session.Ledger.Answer("q1"); !ok || ans != 2 {
		t.Fatalf("answer q1 = %d/%v", ans, ok)
	}
	if got.Session.Ledger.Marking("q2") != quiz.MarkingMarkedOnly {
		t.Fatalf("marking q2 = %v", got.Session.Ledger.Marking("q2"))
	}
	if got.Session.Config.Title != "Medicine Mini" {
		t.Fatalf("config = %+v", got.Session.Config)
	}
}

func TestLoadAbsentStateReturnsNil(t *testing.T) {
	rdb, _ := newTestRedis(t)
	store := NewRedis(rdb, "u1", time.Hour, nil, zerolog.Nop())

	got, err := store.Load(context.Background())
	if err != nil || got != nil {
		t.Fatalf("Load = %+v, %v; want nil, nil", got, err)
	}
}

func TestSavedSlotRoundTrip(t *testing.T) {
	rdb, _ := newTestRedis(t)
	store := NewRedis(rdb, "u1", time.Hour, nil, zerolog.Nop())
	ctx := context.Background()

	st := sampleState()
	st.Active = false
	st.Saved = st.Session
	st.Session = nil
	if err := store.Save(ctx, st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Active || got.Session != nil {
		t.Fatalf("state = %+v, want paused shape", got)
	}
	if got.Saved == nil || got.Saved.TimeRemaining != 140 {
		t.Fatalf("saved slot = %+v", got.Saved)
	}
}

func TestLoadToleratesCorruptFields(t *testing.T) {
	rdb, mr := newTestRedis(t)
	store := NewRedis(rdb, "u1", time.Hour, nil, zerolog.Nop())
	ctx := context.Background()

	if err := store.Save(ctx, sampleState()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Mangle individual values behind the store's back.
	mr.Set(config.CacheKey.QuizQuestionsKey("u1"), "{not json")
	mr.Set(config.CacheKey.QuizAnswersKey("u1"), "also broken")
	mr.Set(config.CacheKey.QuizTimerKey("u1"), "NaN")

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load should degrade, not fail: %v", err)
	}
	if got.Session == nil {
		t.Fatal("session shell should survive corrupt fields")
	}
	// Active with no questions is exactly the shape the engine self-heals.
	if len(got.Session.Questions) != 0 {
		t.Fatalf("questions = %+v, want dropped", got.Session.Questions)
	}
	if len(got.Session.Ledger.Answers) != 0 {
		t.Fatalf("answers = %+v, want reset", got.Session.Ledger.Answers)
	}
	if got.Session.TimeRemaining != 0 {
		t.Fatalf("timer = %d, want 0 default", got.Session.TimeRemaining)
	}
}

type stubSnapshots struct {
	state *quiz.PersistedState
	calls int
}

func (s *stubSnapshots) LoadSnapshot(_ context.Context, _ string) (*quiz.PersistedState, error) {
	s.calls++
	return s.state, nil
}

func TestLoadFallsBackToSnapshotAndHeals(t *testing.T) {
	rdb, _ := newTestRedis(t)
	snaps := &stubSnapshots{state: sampleState()}
	store := NewRedis(rdb, "u1", time.Hour, snaps, zerolog.Nop())
	ctx := context.Background()

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil || got.Session == nil || len(got.Session.Questions) != 2 {
		t.Fatalf("fallback state = %+v", got)
	}
	if snaps.calls != 1 {
		t.Fatalf("snapshot source called %d times, want 1", snaps.calls)
	}

	// Second load must come from the healed cache, not the fallback.
	if _, err := store.Load(ctx); err != nil {
		t.Fatalf("Load after heal: %v", err)
	}
	if snaps.calls != 1 {
		t.Fatalf("snapshot source called %d times after heal, want still 1", snaps.calls)
	}
}

func TestClearRemovesEverything(t *testing.T) {
	rdb, _ := newTestRedis(t)
	store := NewRedis(rdb, "u1", time.Hour, nil, zerolog.Nop())
	ctx := context.Background()

	if err := store.Save(ctx, sampleState()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil || got != nil {
		t.Fatalf("Load after clear = %+v, %v; want nil, nil", got, err)
	}
}

func TestStoresAreUserScoped(t *testing.T) {
	rdb, _ := newTestRedis(t)
	ctx := context.Background()
	a := NewRedis(rdb, "alice", time.Hour, nil, zerolog.Nop())
	b := NewRedis(rdb, "bob", time.Hour, nil, zerolog.Nop())

	if err := a.Save(ctx, sampleState()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := b.Load(ctx)
	if err != nil || got != nil {
		t.Fatalf("bob sees alice's state: %+v, %v", got, err)
	}
}
