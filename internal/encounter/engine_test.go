package encounter

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func testCase() *Case {
	return &Case{
		Title:   "Crushing Chest Pain",
		Subject: "Cardiology",
		Steps: []Step{
			{
				Title:  "Initial Assessment",
				Prompt: "A 58-year-old man presents with crushing chest pain.",
				Options: []Option{
					{Label: "Obtain ECG", NextStep: 1},
					{Label: "Discharge home", NextStep: StepFailure},
				},
			},
			{
				Title:  "ECG Review",
				Prompt: "ECG shows ST elevation in II, III, aVF.",
				Options: []Option{
					{Label: "Activate cath lab", NextStep: StepSuccess},
					{Label: "Repeat ECG in 1 hour", NextStep: 0},
					{Label: "Give only aspirin and observe", NextStep: StepFailure},
				},
			},
		},
	}
}

func TestStartEntersAtStepZero(t *testing.T) {
	e := NewEngine(zerolog.Nop())
	if err := e.Start(testCase()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if e.State() != StateInProgress {
		t.Fatalf("state = %v, want IN_PROGRESS", e.State())
	}

	run := e.Snapshot()
	if run.CurrentStep != 0 {
		t.Fatalf("current step = %d, want 0", run.CurrentStep)
	}
	if run.Outcome != OutcomeInProgress {
		t.Fatalf("outcome = %v, want IN_PROGRESS", run.Outcome)
	}
	if len(run.History) != 0 {
		t.Fatalf("history = %d entries, want empty", len(run.History))
	}
}

func TestStartRejectsInvalidCases(t *testing.T) {
	tests := []struct {
		name string
		c    *Case
	}{
		{"nil case", nil},
		{"no steps", &Case{Title: "Empty"}},
		{"step without options", &Case{Steps: []Step{{Title: "Dead End"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(zerolog.Nop())
			if err := e.Start(tt.c); !errors.Is(err, ErrInvalidCaseData) {
				t.Fatalf("err = %v, want ErrInvalidCaseData", err)
			}
			if e.State() != StateNotStarted {
				t.Fatalf("state = %v, want NOT_STARTED", e.State())
			}
		})
	}
}

func TestActAdvancesAndResolvesSuccess(t *testing.T) {
	e := NewEngine(zerolog.Nop())
	if err := e.Start(testCase()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	e.Act("Obtain ECG", 1)
	run := e.Snapshot()
	if run.CurrentStep != 1 || run.Outcome != OutcomeInProgress {
		t.Fatalf("after advance: step=%d outcome=%v", run.CurrentStep, run.Outcome)
	}

	e.Act("Activate cath lab", StepSuccess)
	run = e.Snapshot()
	if run.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %v, want SUCCESS", run.Outcome)
	}
	if e.State() != StateResolved {
		t.Fatalf("state = %v, want RESOLVED", e.State())
	}

	want := []HistoryEntry{
		{StepTitle: "Initial Assessment", ActionTaken: "Obtain ECG"},
		{StepTitle: "ECG Review", ActionTaken: "Activate cath lab"},
	}
	if len(run.History) != len(want) {
		t.Fatalf("history = %d entries, want %d", len(run.History), len(want))
	}
	for i, h := range want {
		if run.History[i] != h {
			t.Errorf("history[%d] = %+v, want %+v", i, run.History[i], h)
		}
	}
}

func TestActResolvesFailureOnFirstStep(t *testing.T) {
	e := NewEngine(zerolog.Nop())
	if err := e.Start(testCase()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	e.Act("Discharge home", StepFailure)
	run := e.Snapshot()
	if run.Outcome != OutcomeFailure {
		t.Fatalf("outcome = %v, want FAILURE", run.Outcome)
	}
	if len(run.History) != 1 {
		t.Fatalf("failure decision must still be recorded, history = %d", len(run.History))
	}
}

func TestTerminalAboveFailureResolvesFailure(t *testing.T) {
	// Any reference >= 99 that is not exactly 100 is a failure terminal.
	e := NewEngine(zerolog.Nop())
	if err := e.Start(testCase()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	e.Act("Unknown escalation", 101)
	if got := e.Snapshot().Outcome; got != OutcomeFailure {
		t.Fatalf("outcome = %v, want FAILURE", got)
	}
}

func TestRetryLoopRevisitsEarlierStep(t *testing.T) {
	e := NewEngine(zerolog.Nop())
	if err := e.Start(testCase()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	e.Act("Obtain ECG", 1)
	e.Act("Repeat ECG in 1 hour", 0)
	run := e.Snapshot()
	if run.CurrentStep != 0 {
		t.Fatalf("current step = %d, want cycled back to 0", run.CurrentStep)
	}
	if len(run.History) != 2 {
		t.Fatalf("history = %d entries, want 2 (loop decisions recorded)", len(run.History))
	}
	if e.State() != StateInProgress {
		t.Fatalf("state = %v, want still IN_PROGRESS", e.State())
	}
}

func TestDanglingReferenceResolvesSuccess(t *testing.T) {
	e := NewEngine(zerolog.Nop())
	if err := e.Start(testCase()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// References a step the generator never wrote.
	e.Act("Consult specialist", 7)

	run := e.Snapshot()
	if run.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %v, want SUCCESS (graceful recovery)", run.Outcome)
	}
	if e.State() != StateResolved {
		t.Fatalf("state = %v, want RESOLVED", e.State())
	}
	if len(run.History) != 1 || run.History[0].ActionTaken != "Consult specialist" {
		t.Fatalf("dangling decision must be recorded, history = %+v", run.History)
	}
}

func TestActAfterResolveIsNoOp(t *testing.T) {
	e := NewEngine(zerolog.Nop())
	if err := e.Start(testCase()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	e.Act("Discharge home", StepFailure)
	before := e.Snapshot()

	e.Act("Obtain ECG", 1)
	e.Act("Activate cath lab", StepSuccess)

	after := e.Snapshot()
	if after.Outcome != before.Outcome {
		t.Fatalf("outcome changed after resolution: %v -> %v", before.Outcome, after.Outcome)
	}
	if len(after.History) != len(before.History) {
		t.Fatalf("history grew after resolution: %d -> %d", len(before.History), len(after.History))
	}
}

func TestHistoryIsAppendOnly(t *testing.T) {
	e := NewEngine(zerolog.Nop())
	if err := e.Start(testCase()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var lengths []int
	for _, act := range []struct {
		label string
		next  int
	}{
		{"Obtain ECG", 1},
		{"Repeat ECG in 1 hour", 0},
		{"Obtain ECG", 1},
		{"Activate cath lab", StepSuccess},
	} {
		e.Act(act.label, act.next)
		run := e.Snapshot()
		lengths = append(lengths, len(run.History))
		// Every earlier entry must be intact.
		if run.History[len(run.History)-1].ActionTaken != act.label {
			t.Fatalf("latest entry = %q, want %q", run.History[len(run.History)-1].ActionTaken, act.label)
		}
	}
	for i := 1; i < len(lengths); i++ {
		if lengths[i] != lengths[i-1]+1 {
			t.Fatalf("history lengths %v not strictly growing by one", lengths)
		}
	}
}

func TestSnapshotHistoryIsACopy(t *testing.T) {
	e := NewEngine(zerolog.Nop())
	if err := e.Start(testCase()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	e.Act("Obtain ECG", 1)

	run := e.Snapshot()
	run.History[0].ActionTaken = "tampered"

	if got := e.Snapshot().History[0].ActionTaken; got != "Obtain ECG" {
		t.Fatalf("engine history mutated through snapshot: %q", got)
	}
}

func TestEndResetsEngine(t *testing.T) {
	e := NewEngine(zerolog.Nop())
	if err := e.Start(testCase()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	e.Act("Obtain ECG", 1)

	e.End()
	if e.State() != StateNotStarted {
		t.Fatalf("state = %v, want NOT_STARTED", e.State())
	}
	if e.Snapshot() != nil {
		t.Fatal("snapshot should be nil after End")
	}

	// A fresh run starts clean.
	if err := e.Start(testCase()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if run := e.Snapshot(); len(run.History) != 0 || run.CurrentStep != 0 {
		t.Fatalf("stale run state survived End: %+v", run)
	}
}
