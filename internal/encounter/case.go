package encounter

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// Terminal nextStep sentinels. Any value >= StepFailure ends the run;
// only StepSuccess resolves it successfully.
const (
	StepFailure = 99
	StepSuccess = 100
)

// ErrInvalidCaseData is returned when a case has missing or empty steps,
// or cannot be normalized into the internal schema.
var ErrInvalidCaseData = errors.New("invalid case data: missing or empty steps")

// Option is one decision available at a step. NextStep either references
// another step index or a terminal sentinel.
type Option struct {
	Label    string `json:"label"`
	NextStep int    `json:"next_step"`
}

// Step is one node of the decision graph: a narrative prompt and the
// decisions that leave it.
type Step struct {
	Title       string   `json:"title"`
	Prompt      string   `json:"prompt"`
	ActionLabel string   `json:"action"`
	Options     []Option `json:"options"`
}

// Case is a rooted directed decision graph. Step 0 is the unique entry
// point; cycles (retry loops back to earlier steps) are permitted.
type Case struct {
	ID          uuid.UUID `json:"id,omitempty"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	Subject     string    `json:"subject"`
	Difficulty  string    `json:"difficulty,omitempty"`
	Description string    `json:"description"`
	Steps       []Step    `json:"steps"`
}

// Validate checks the structural invariants the engine relies on: at least
// one step, and at least one option on every step.
func (c *Case) Validate() error {
	if len(c.Steps) == 0 {
		return ErrInvalidCaseData
	}
	for i := range c.Steps {
		if len(c.Steps[i].Options) == 0 {
			return ErrInvalidCaseData
		}
	}
	return nil
}

// rawStep mirrors the loose shapes the case generator produces. Generators
// are inconsistent about where the narrative text lives (prompt vs
// description vs text), so every alias is captured and reconciled here.
type rawStep struct {
	Title       string   `json:"title"`
	Prompt      string   `json:"prompt"`
	Description string   `json:"description"`
	Text        string   `json:"text"`
	Action      string   `json:"action"`
	Options     []Option `json:"options"`
}

type rawCase struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	Subject     string    `json:"subject"`
	Difficulty  string    `json:"difficulty"`
	Description string    `json:"description"`
	Steps       []rawStep `json:"steps"`
}

const (
	fallbackPrompt = "Scenario details missing."
	fallbackAction = "Make Decision"
)

// Normalize converts loosely-structured generator output into the strict
// internal schema, applying the prompt fallback chain and default action
// label. Anything that does not normalize cleanly is rejected with
// ErrInvalidCaseData; the loose shape never propagates past this boundary.
func Normalize(data []byte) (*Case, error) {
	var raw rawCase
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ErrInvalidCaseData
	}
	if len(raw.Steps) == 0 {
		return nil, ErrInvalidCaseData
	}

	c := &Case{
		Title:       raw.Title,
		Source:      raw.Source,
		Subject:     raw.Subject,
		Difficulty:  raw.Difficulty,
		Description: raw.Description,
		Steps:       make([]Step, len(raw.Steps)),
	}
	for i, rs := range raw.Steps {
		prompt := rs.Prompt
		if prompt == "" {
			prompt = rs.Description
		}
		if prompt == "" {
			prompt = rs.Text
		}
		if prompt == "" {
			prompt = fallbackPrompt
		}
		action := rs.Action
		if action == "" {
			action = fallbackAction
		}
		c.Steps[i] = Step{
			Title:       rs.Title,
			Prompt:      prompt,
			ActionLabel: action,
			Options:     rs.Options,
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
