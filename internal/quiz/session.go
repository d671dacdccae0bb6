package quiz

import "github.com/prepmed/prepmed-backend/internal/model"

// Session timing defaults.
const (
	// TimePerQuestionSeconds sizes the clock for ordinary filter-built tests.
	TimePerQuestionSeconds = 90
	// GrandTestMinutes is the fixed duration of a full-length grand test.
	GrandTestMinutes = 180
)

// Config holds the filter and generation parameters a session is built from.
// It is immutable for the session's lifetime and is carried into the result
// record for reporting.
type Config struct {
	Title          string   `json:"title"`
	Subject        string   `json:"subject"`
	Modules        []string `json:"modules,omitempty"`
	Subtopics      []string `json:"subtopics,omitempty"`
	Difficulty     string   `json:"difficulty,omitempty"`
	CognitiveSkill string   `json:"cognitive_skill,omitempty"`
	Sources        []string `json:"sources,omitempty"`
	Count          int      `json:"count"`
	// TimerSeconds, when positive, overrides the computed duration.
	TimerSeconds int `json:"timer,omitempty"`
	GrandTest    bool `json:"is_grand_test,omitempty"`
	// StrictTiming disallows pausing for the session's lifetime.
	StrictTiming bool `json:"strict_timing,omitempty"`
	// ExcludeImages drops image-bearing questions after fetch.
	ExcludeImages bool `json:"exclude_images,omitempty"`
}

// filters converts the config into a supplier fetch request.
func (c Config) filters() model.QuestionFilters {
	return model.QuestionFilters{
		Subject:        c.Subject,
		Modules:        c.Modules,
		Subtopics:      c.Subtopics,
		Difficulty:     c.Difficulty,
		CognitiveSkill: c.CognitiveSkill,
		Sources:        c.Sources,
		Count:          c.Count,
		GrandTest:      c.GrandTest,
	}
}

// duration returns the session clock in seconds: an explicit timer wins,
// grand tests get the fixed exam length, everything else is sized per question.
func (c Config) duration(questionCount int) int {
	if c.TimerSeconds > 0 {
		return c.TimerSeconds
	}
	if c.GrandTest {
		return GrandTestMinutes * 60
	}
	return questionCount * TimePerQuestionSeconds
}

// Session is one in-progress or paused quiz attempt: a fixed question
// snapshot, the answer/marking ledger, the cursor, and the countdown clock.
type Session struct {
	Questions []model.Question `json:"questions"`
	Ledger    *Ledger          `json:"ledger"`
	Cursor    int              `json:"cursor"`
	// TimeRemaining and TimeInitial are seconds; TimeRemaining <= TimeInitial.
	TimeRemaining int    `json:"time_remaining"`
	TimeInitial   int    `json:"time_initial"`
	Config        Config `json:"config"`
}

// questionIDs returns the ordered IDs of the session's question snapshot.
func (s *Session) questionIDs() []string {
	ids := make([]string, len(s.Questions))
	for i, q := range s.Questions {
		ids[i] = q.ID
	}
	return ids
}

// clone deep-copies the session for the saved-session slot.
func (s *Session) clone() *Session {
	c := *s
	c.Questions = append([]model.Question(nil), s.Questions...)
	c.Ledger = s.Ledger.clone()
	return &c
}
