package encounter

import (
	"sync"

	"github.com/rs/zerolog"
)

// Outcome is the terminal disposition of an encounter run.
type Outcome string

const (
	OutcomeInProgress Outcome = "IN_PROGRESS"
	OutcomeSuccess    Outcome = "SUCCESS"
	OutcomeFailure    Outcome = "FAILURE"
)

// State enumerates the encounter engine's lifecycle states.
type State string

const (
	StateNotStarted State = "NOT_STARTED"
	StateInProgress State = "IN_PROGRESS"
	StateResolved   State = "RESOLVED"
)

// HistoryEntry records one decision taken during a run.
type HistoryEntry struct {
	StepTitle   string `json:"step"`
	ActionTaken string `json:"action_taken"`
}

// Run is a read-only snapshot of an encounter traversal.
type Run struct {
	Case        *Case          `json:"case"`
	CurrentStep int            `json:"current_step"`
	History     []HistoryEntry `json:"history"`
	Outcome     Outcome        `json:"outcome"`
}

// Engine traverses a clinical case graph for a single user: it holds the
// current step, appends every decision to the history, and resolves the run
// when a terminal reference is taken.
type Engine struct {
	mu      sync.Mutex
	state   State
	active  *Case
	current int
	history []HistoryEntry
	outcome Outcome
	log     zerolog.Logger
}

// NewEngine returns an engine in NOT_STARTED.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		state:   StateNotStarted,
		outcome: OutcomeInProgress,
		log:     log.With().Str("component", "encounter_engine").Logger(),
	}
}

// Start begins a traversal of c at step 0. The case must already be
// normalized; structurally invalid cases are rejected with
// ErrInvalidCaseData and the engine stays in its prior state.
func (e *Engine) Start(c *Case) error {
	if c == nil {
		return ErrInvalidCaseData
	}
	if err := c.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.active = c
	e.current = 0
	e.history = nil
	e.outcome = OutcomeInProgress
	e.state = StateInProgress

	e.log.Info().Str("title", c.Title).Int("steps", len(c.Steps)).Msg("Encounter started")
	return nil
}

// Act takes the option labeled label leading to nextStep. The decision is
// appended to the history first; then the run either resolves (terminal
// sentinel), advances (valid step index), or, for a dangling reference the
// generator hallucinated, resolves as SUCCESS with the fault logged rather
// than crashing the run. Acting outside IN_PROGRESS is a no-op.
func (e *Engine) Act(label string, nextStep int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateInProgress {
		return
	}

	e.history = append(e.history, HistoryEntry{
		StepTitle:   e.active.Steps[e.current].Title,
		ActionTaken: label,
	})

	switch {
	case nextStep >= StepFailure:
		if nextStep == StepSuccess {
			e.outcome = OutcomeSuccess
		} else {
			e.outcome = OutcomeFailure
		}
		e.state = StateResolved
		e.log.Info().Str("outcome", string(e.outcome)).Int("decisions", len(e.history)).Msg("Encounter resolved")
	case nextStep >= 0 && nextStep < len(e.active.Steps):
		e.current = nextStep
	default:
		// Generator referenced a step that does not exist. Recover
		// gracefully instead of stranding the run.
		e.outcome = OutcomeSuccess
		e.state = StateResolved
		e.log.Warn().
			Int("next_step", nextStep).
			Int("steps", len(e.active.Steps)).
			Msg("Dangling step reference, resolving encounter")
	}
}

// End discards the run and returns the engine to NOT_STARTED.
func (e *Engine) End() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.active = nil
	e.current = 0
	e.history = nil
	e.outcome = OutcomeInProgress
	e.state = StateNotStarted
}

// State returns the engine's lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Snapshot returns the current run, or nil when no run exists.
func (e *Engine) Snapshot() *Run {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == nil {
		return nil
	}
	history := append([]HistoryEntry(nil), e.history...)
	return &Run{
		Case:        e.active,
		CurrentStep: e.current,
		History:     history,
		Outcome:     e.outcome,
	}
}
