package quiz

import "testing"

func TestSelectAnswerMarkingTransitions(t *testing.T) {
	tests := []struct {
		name string
		from Marking
		want Marking
	}{
		{"none becomes answered", MarkingNone, MarkingAnswered},
		{"answered stays answered", MarkingAnswered, MarkingAnswered},
		{"answered+marked keeps flag", MarkingAnsweredAndMarked, MarkingAnsweredAndMarked},
		{"marked-only becomes answered", MarkingMarkedOnly, MarkingAnswered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLedger([]string{"q1"})
			l.Markings["q1"] = tt.from
			if tt.from == MarkingAnswered || tt.from == MarkingAnsweredAndMarked {
				l.Answers["q1"] = 0
			}
			l.SelectAnswer("q1", 2)
			if got := l.Marking("q1"); got != tt.want {
				t.Errorf("marking after select = %v, want %v", got, tt.want)
			}
			if ans, ok := l.Answer("q1"); !ok || ans != 2 {
				t.Errorf("answer = %d, %v, want 2, true", ans, ok)
			}
		})
	}
}

func TestToggleMarkAllFourTransitions(t *testing.T) {
	tests := []struct {
		name     string
		from     Marking
		answered bool
		want     Marking
	}{
		{"none unanswered -> marked-only", MarkingNone, false, MarkingMarkedOnly},
		{"none answered -> answered+marked", MarkingNone, true, MarkingAnsweredAndMarked},
		{"answered -> answered+marked", MarkingAnswered, true, MarkingAnsweredAndMarked},
		{"answered+marked -> answered", MarkingAnsweredAndMarked, true, MarkingAnswered},
		{"marked-only -> none", MarkingMarkedOnly, false, MarkingNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLedger([]string{"q1"})
			l.Markings["q1"] = tt.from
			if tt.answered {
				l.Answers["q1"] = 1
			}
			l.ToggleMark("q1")
			if got := l.Marking("q1"); got != tt.want {
				t.Errorf("marking after toggle = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToggleMarkTwiceFromAnsweredRoundTrips(t *testing.T) {
	l := NewLedger([]string{"q1"})
	l.SelectAnswer("q1", 0)

	l.ToggleMark("q1")
	if got := l.Marking("q1"); got != MarkingAnsweredAndMarked {
		t.Fatalf("after first toggle = %v, want ANSWERED_AND_MARKED", got)
	}
	l.ToggleMark("q1")
	if got := l.Marking("q1"); got != MarkingAnswered {
		t.Fatalf("after second toggle = %v, want ANSWERED", got)
	}
}

func TestClearAnswerMarkingTransitions(t *testing.T) {
	tests := []struct {
		name string
		from Marking
		want Marking
	}{
		{"answered+marked keeps flag", MarkingAnsweredAndMarked, MarkingMarkedOnly},
		{"answered -> none", MarkingAnswered, MarkingNone},
		{"marked-only unchanged", MarkingMarkedOnly, MarkingMarkedOnly},
		{"none unchanged", MarkingNone, MarkingNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLedger([]string{"q1"})
			l.Markings["q1"] = tt.from
			l.Answers["q1"] = 3
			l.Clear("q1")
			if got := l.Marking("q1"); got != tt.want {
				t.Errorf("marking after clear = %v, want %v", got, tt.want)
			}
			if _, ok := l.Answer("q1"); ok {
				t.Error("answer should be removed after clear")
			}
		})
	}
}

// The marking state space is closed: no sequence of operations can leave
// the four defined states.
func TestMarkingStateSpaceIsClosed(t *testing.T) {
	valid := func(m Marking) bool {
		return m >= MarkingNone && m <= MarkingMarkedOnly
	}

	l := NewLedger([]string{"q1"})
	ops := []func(){
		func() { l.SelectAnswer("q1", 0) },
		func() { l.ToggleMark("q1") },
		func() { l.Clear("q1") },
		func() { l.ToggleMark("q1") },
		func() { l.SelectAnswer("q1", 3) },
		func() { l.ToggleMark("q1") },
		func() { l.Clear("q1") },
		func() { l.SelectAnswer("q1", 1) },
	}
	for i, op := range ops {
		op()
		if m := l.Marking("q1"); !valid(m) {
			t.Fatalf("op %d produced out-of-range marking %d", i, m)
		}
	}
}

func TestLastAnswerWins(t *testing.T) {
	l := NewLedger([]string{"q1"})
	l.SelectAnswer("q1", 0)
	l.SelectAnswer("q1", 3)
	if ans, _ := l.Answer("q1"); ans != 3 {
		t.Fatalf("answer = %d, want 3 (last write wins)", ans)
	}
	if l.AttemptedCount() != 1 {
		t.Fatalf("attempted = %d, want 1", l.AttemptedCount())
	}
}
