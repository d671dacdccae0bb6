package quiz

// Ledger records each question's selected answer and review-flag state for
// one session. All transitions are pure state changes with no side effects;
// the engine is responsible for persisting the ledger after mutating it.
type Ledger struct {
	// Answers maps question ID to the selected option index (0-based).
	// Absence of a key means the question is unattempted.
	Answers map[string]int `json:"answers"`
	// Markings maps question ID to its review-flag state.
	Markings map[string]Marking `json:"markings"`
}

// NewLedger returns an empty ledger with every given question at MarkingNone.
func NewLedger(questionIDs []string) *Ledger {
	l := &Ledger{
		Answers:  make(map[string]int, len(questionIDs)),
		Markings: make(map[string]Marking, len(questionIDs)),
	}
	for _, id := range questionIDs {
		l.Markings[id] = MarkingNone
	}
	return l
}

// SelectAnswer records optionIndex as the answer for questionID.
// Last write wins; the marking transitions per Marking.onSelect.
func (l *Ledger) SelectAnswer(questionID string, optionIndex int) {
	l.Answers[questionID] = optionIndex
	l.Markings[questionID] = l.Markings[questionID].onSelect()
}

// ToggleMark flips the review flag for questionID. This is a four-state
// toggle, not a boolean: the resulting state depends on whether an answer
// currently exists.
func (l *Ledger) ToggleMark(questionID string) {
	_, answered := l.Answers[questionID]
	l.Markings[questionID] = l.Markings[questionID].onToggle(answered)
}

// Clear removes the answer for questionID, keeping any review flag.
func (l *Ledger) Clear(questionID string) {
	delete(l.Answers, questionID)
	l.Markings[questionID] = l.Markings[questionID].onClear()
}

// Answer returns the recorded answer for questionID, if any.
func (l *Ledger) Answer(questionID string) (int, bool) {
	idx, ok := l.Answers[questionID]
	return idx, ok
}

// Marking returns the review-flag state for questionID.
func (l *Ledger) Marking(questionID string) Marking {
	return l.Markings[questionID]
}

// AttemptedCount returns the number of answered questions.
func (l *Ledger) AttemptedCount() int {
	return len(l.Answers)
}

// clone returns a deep copy, used when snapshotting a session for pause.
func (l *Ledger) clone() *Ledger {
	c := &Ledger{
		Answers:  make(map[string]int, len(l.Answers)),
		Markings: make(map[string]Marking, len(l.Markings)),
	}
	for k, v := range l.Answers {
		c.Answers[k] = v
	}
	for k, v := range l.Markings {
		c.Markings[k] = v
	}
	return c
}
