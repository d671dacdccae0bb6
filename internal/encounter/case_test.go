package encounter

import (
	"errors"
	"testing"
)

func TestNormalizePromptFallbackChain(t *testing.T) {
	tests := []struct {
		name string
		step string
		want string
	}{
		{
			"prompt preferred",
			`{"title":"A","prompt":"from prompt","description":"from description","text":"from text","options":[{"label":"go","next_step":100}]}`,
			"from prompt",
		},
		{
			"description when prompt empty",
			`{"title":"A","description":"from description","text":"from text","options":[{"label":"go","next_step":100}]}`,
			"from description",
		},
		{
			"text as last alias",
			`{"title":"A","text":"from text","options":[{"label":"go","next_step":100}]}`,
			"from text",
		},
		{
			"placeholder when all missing",
			`{"title":"A","options":[{"label":"go","next_step":100}]}`,
			"Scenario details missing.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Normalize([]byte(`{"title":"Case","steps":[` + tt.step + `]}`))
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if got := c.Steps[0].Prompt; got != tt.want {
				t.Errorf("prompt = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeDefaultActionLabel(t *testing.T) {
	c, err := Normalize([]byte(`{
		"title": "Case",
		"steps": [
			{"title": "A", "prompt": "p", "options": [{"label": "go", "next_step": 1}]},
			{"title": "B", "prompt": "p", "action": "Choose Treatment", "options": [{"label": "go", "next_step": 100}]}
		]
	}`))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got := c.Steps[0].ActionLabel; got != "Make Decision" {
		t.Errorf("default action = %q, want %q", got, "Make Decision")
	}
	if got := c.Steps[1].ActionLabel; got != "Choose Treatment" {
		t.Errorf("explicit action = %q, want preserved", got)
	}
}

func TestNormalizeCarriesCaseMetadata(t *testing.T) {
	c, err := Normalize([]byte(`{
		"title": "Status Epilepticus",
		"source": "NEET PG",
		"subject": "Neurology",
		"difficulty": "hard",
		"description": "ED presentation",
		"steps": [{"title": "A", "prompt": "p", "options": [{"label": "go", "next_step": 100}]}]
	}`))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if c.Title != "Status Epilepticus" || c.Source != "NEET PG" || c.Subject != "Neurology" || c.Difficulty != "hard" {
		t.Fatalf("metadata dropped: %+v", c)
	}
}

func TestNormalizeRejectsBrokenPayloads(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"title": "oops"`},
		{"no steps key", `{"title": "Case"}`},
		{"empty steps", `{"title": "Case", "steps": []}`},
		{"step without options", `{"title": "Case", "steps": [{"title": "A", "prompt": "p"}]}`},
		{"step with empty options", `{"title": "Case", "steps": [{"title": "A", "prompt": "p", "options": []}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Normalize([]byte(tt.data)); !errors.Is(err, ErrInvalidCaseData) {
				t.Fatalf("err = %v, want ErrInvalidCaseData", err)
			}
		})
	}
}

func TestNormalizedCaseStartsCleanly(t *testing.T) {
	c, err := Normalize([]byte(`{
		"title": "Case",
		"steps": [
			{"title": "A", "text": "loose shape", "options": [{"label": "next", "next_step": 1}]},
			{"title": "B", "options": [{"label": "done", "next_step": 100}]}
		]
	}`))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate after Normalize: %v", err)
	}
}

func TestValidate(t *testing.T) {
	ok := &Case{Steps: []Step{{Options: []Option{{Label: "x", NextStep: 100}}}}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	bad := &Case{Steps: []Step{
		{Options: []Option{{Label: "x", NextStep: 1}}},
		{},
	}}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidCaseData) {
		t.Fatalf("err = %v, want ErrInvalidCaseData", err)
	}
}
