package quiz

// Marking is the per-question review-flag state. The values are fixed
// small integers because they are persisted and read back across restarts.
type Marking int

const (
	MarkingNone              Marking = 0
	MarkingAnswered          Marking = 1
	MarkingAnsweredAndMarked Marking = 2
	MarkingMarkedOnly        Marking = 3
)

// String implements fmt.Stringer for log output.
func (m Marking) String() string {
	switch m {
	case MarkingNone:
		return "NONE"
	case MarkingAnswered:
		return "ANSWERED"
	case MarkingAnsweredAndMarked:
		return "ANSWERED_AND_MARKED"
	case MarkingMarkedOnly:
		return "MARKED_ONLY"
	default:
		return "UNKNOWN"
	}
}

// Marked reports whether the question is flagged for review.
func (m Marking) Marked() bool {
	return m == MarkingAnsweredAndMarked || m == MarkingMarkedOnly
}

// onSelect returns the marking after an answer is recorded.
// NONE and MARKED_ONLY move to ANSWERED; ANSWERED_AND_MARKED keeps its flag.
func (m Marking) onSelect() Marking {
	if m == MarkingAnsweredAndMarked {
		return MarkingAnsweredAndMarked
	}
	return MarkingAnswered
}

// onToggle returns the marking after the review flag is toggled.
// answered tells whether an answer currently exists for the question.
func (m Marking) onToggle(answered bool) Marking {
	switch m {
	case MarkingAnsweredAndMarked:
		return MarkingAnswered
	case MarkingMarkedOnly:
		return MarkingNone
	default:
		if answered {
			return MarkingAnsweredAndMarked
		}
		return MarkingMarkedOnly
	}
}

// onClear returns the marking after the answer is removed.
func (m Marking) onClear() Marking {
	switch m {
	case MarkingAnsweredAndMarked:
		return MarkingMarkedOnly
	case MarkingAnswered:
		return MarkingNone
	default:
		return m
	}
}
