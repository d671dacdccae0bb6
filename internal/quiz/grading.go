package quiz

import "github.com/prepmed/prepmed-backend/internal/model"

// Scoring weights: +4 per correct answer, -1 per wrong answer, 0 unattempted.
const (
	PointsCorrect   = 4
	PointsIncorrect = -1
)

// Summary is the output of grading one session: the overall score plus
// per-subject and per-cognitive-skill breakdowns for reporting.
type Summary struct {
	Score              int                             `json:"score"`
	Correct            int                             `json:"correct"`
	Incorrect          int                             `json:"incorrect"`
	Attempted          int                             `json:"attempted"`
	TotalQuestions     int                             `json:"total_questions"`
	TimeSpentSeconds   int                             `json:"time_spent_seconds"`
	SubjectBreakdown   map[string]model.BreakdownEntry `json:"subject_breakdown"`
	CognitiveBreakdown map[string]model.BreakdownEntry `json:"cognitive_breakdown"`
}

// Grade computes the score breakdown for a question snapshot and ledger.
// Answers are 0-based; Question.CorrectOption is stored 1-based. Grade is
// pure: it reads the ledger and never feeds anything back into it.
func Grade(questions []model.Question, ledger *Ledger, timeInitial, timeRemaining int) Summary {
	s := Summary{
		TotalQuestions:     len(questions),
		TimeSpentSeconds:   timeInitial - timeRemaining,
		SubjectBreakdown:   make(map[string]model.BreakdownEntry),
		CognitiveBreakdown: make(map[string]model.BreakdownEntry),
	}

	for _, q := range questions {
		choice, attempted := ledger.Answer(q.ID)
		correct := attempted && choice == q.CorrectOption-1

		if attempted {
			s.Attempted++
			if correct {
				s.Correct++
				s.Score += PointsCorrect
			} else {
				s.Incorrect++
				s.Score += PointsIncorrect
			}
		}

		tally(s.SubjectBreakdown, q.Subject, attempted, correct)
		tally(s.CognitiveBreakdown, q.CognitiveSkill, attempted, correct)
	}

	return s
}

func tally(breakdown map[string]model.BreakdownEntry, key string, attempted, correct bool) {
	if key == "" {
		key = "Unspecified"
	}
	e := breakdown[key]
	e.Total++
	switch {
	case !attempted:
		e.Unattempted++
	case correct:
		e.Correct++
	default:
		e.Incorrect++
	}
	breakdown[key] = e
}
