package quiz

import (
	"testing"

	"github.com/prepmed/prepmed-backend/internal/model"
)

func gradingQuestions() []model.Question {
	return []model.Question{
		{ID: "q1", CorrectOption: 2, Subject: "Medicine", CognitiveSkill: "Recall"},
		{ID: "q2", CorrectOption: 1, Subject: "Medicine", CognitiveSkill: "Applied"},
		{ID: "q3", CorrectOption: 4, Subject: "Surgery", CognitiveSkill: "Recall"},
		{ID: "q4", CorrectOption: 3, Subject: "Surgery", CognitiveSkill: "Diagnostic Reasoning"},
	}
}

func TestGradeScoring(t *testing.T) {
	qs := gradingQuestions()
	l := NewLedger([]string{"q1", "q2", "q3", "q4"})
	l.SelectAnswer("q1", 1) // correct (2-1)
	l.SelectAnswer("q2", 2) // wrong
	l.SelectAnswer("q3", 3) // correct (4-1)
	// q4 unattempted

	sum := Grade(qs, l, 600, 150)

	if sum.Correct != 2 || sum.Incorrect != 1 || sum.Attempted != 3 {
		t.Fatalf("correct/incorrect/attempted = %d/%d/%d, want 2/1/3", sum.Correct, sum.Incorrect, sum.Attempted)
	}
	if want := PointsCorrect*2 + PointsIncorrect*1; sum.Score != want {
		t.Fatalf("score = %d, want %d", sum.Score, want)
	}
	if sum.Score != 4*sum.Correct-sum.Incorrect {
		t.Fatalf("score identity violated: %d != 4*%d-%d", sum.Score, sum.Correct, sum.Incorrect)
	}
	if sum.TotalQuestions != 4 {
		t.Fatalf("total = %d, want 4", sum.TotalQuestions)
	}
	if sum.TimeSpentSeconds != 450 {
		t.Fatalf("time spent = %d, want 450", sum.TimeSpentSeconds)
	}
}

func TestGradeScoreCanBeNegative(t *testing.T) {
	qs := gradingQuestions()
	l := NewLedger([]string{"q1", "q2", "q3", "q4"})
	// All wrong.
	l.SelectAnswer("q1", 0)
	l.SelectAnswer("q2", 1)
	l.SelectAnswer("q3", 0)
	l.SelectAnswer("q4", 0)

	sum := Grade(qs, l, 100, 0)
	if sum.Score != -4 {
		t.Fatalf("score = %d, want -4", sum.Score)
	}
}

func TestGradeNoAnswersScoresZero(t *testing.T) {
	sum := Grade(gradingQuestions(), NewLedger([]string{"q1", "q2", "q3", "q4"}), 600, 0)
	if sum.Score != 0 || sum.Attempted != 0 || sum.Correct != 0 || sum.Incorrect != 0 {
		t.Fatalf("empty ledger graded as %+v, want all zero", sum)
	}
	if sum.TimeSpentSeconds != 600 {
		t.Fatalf("time spent = %d, want 600", sum.TimeSpentSeconds)
	}
}

// Changing an answer from correct to incorrect counts only the final choice.
func TestGradeLastWriteWins(t *testing.T) {
	qs := gradingQuestions()[:1]
	l := NewLedger([]string{"q1"})
	l.SelectAnswer("q1", 1) // correct
	l.SelectAnswer("q1", 0) // changed to wrong

	sum := Grade(qs, l, 90, 30)
	if sum.Correct != 0 || sum.Incorrect != 1 {
		t.Fatalf("correct/incorrect = %d/%d, want 0/1", sum.Correct, sum.Incorrect)
	}
}

func TestGradeBreakdowns(t *testing.T) {
	qs := gradingQuestions()
	l := NewLedger([]string{"q1", "q2", "q3", "q4"})
	l.SelectAnswer("q1", 1) // Medicine correct, Recall correct
	l.SelectAnswer("q2", 2) // Medicine wrong, Applied wrong

	sum := Grade(qs, l, 600, 0)

	med := sum.SubjectBreakdown["Medicine"]
	if med.Total != 2 || med.Correct != 1 || med.Incorrect != 1 || med.Unattempted != 0 {
		t.Fatalf("Medicine breakdown = %+v", med)
	}
	sur := sum.SubjectBreakdown["Surgery"]
	if sur.Total != 2 || sur.Unattempted != 2 {
		t.Fatalf("Surgery breakdown = %+v", sur)
	}
	rec := sum.CognitiveBreakdown["Recall"]
	if rec.Total != 2 || rec.Correct != 1 || rec.Unattempted != 1 {
		t.Fatalf("Recall breakdown = %+v", rec)
	}
}

func TestGradeEmptySkillBucketsAsUnspecified(t *testing.T) {
	qs := []model.Question{{ID: "q1", CorrectOption: 1, Subject: "Medicine"}}
	l := NewLedger([]string{"q1"})
	l.SelectAnswer("q1", 0)

	sum := Grade(qs, l, 90, 0)
	if e := sum.CognitiveBreakdown["Unspecified"]; e.Total != 1 || e.Correct != 1 {
		t.Fatalf("Unspecified bucket = %+v", e)
	}
}
