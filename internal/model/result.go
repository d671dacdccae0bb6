package model

import (
	"time"

	"github.com/google/uuid"
)

// BreakdownEntry aggregates outcomes for one reporting dimension value
// (a subject or a cognitive skill).
type BreakdownEntry struct {
	Total       int `json:"total"`
	Correct     int `json:"correct"`
	Incorrect   int `json:"incorrect"`
	Unattempted int `json:"unattempted"`
}

// TestResult is the persisted record of one completed quiz session.
type TestResult struct {
	ID                 uuid.UUID                 `json:"id"`
	UserID             int                       `json:"user_id"`
	Title              string                    `json:"test_title"`
	Source             string                    `json:"source"`
	Subject            string                    `json:"subject"`
	Score              int                       `json:"score"`
	Correct            int                       `json:"correct"`
	Incorrect          int                       `json:"incorrect"`
	Attempted          int                       `json:"attempted"`
	TotalQuestions     int                       `json:"total_questions"`
	TimeSpentSeconds   int                       `json:"time_spent_seconds"`
	SubjectBreakdown   map[string]BreakdownEntry `json:"subject_breakdown"`
	CognitiveBreakdown map[string]BreakdownEntry `json:"cognitive_breakdown"`
	GrandTest          bool                      `json:"is_grand_test"`
	TakenAt            time.Time                 `json:"taken_at"`
}
