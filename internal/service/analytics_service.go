package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/prepmed/prepmed-backend/internal/model"
	"github.com/prepmed/prepmed-backend/internal/quiz"
	"github.com/prepmed/prepmed-backend/internal/repository"
)

// Adaptive-strategy thresholds: a subject needs a minimum sample before it
// can be called weak, and below-threshold accuracy flags it.
const (
	weakSubjectMinAttempts = 5
	weakSubjectAccuracyPct = 70.0
	weakSubjectLimit       = 3
)

// SubjectStats aggregates a user's performance in one subject.
type SubjectStats struct {
	Subject   string  `json:"subject"`
	Total     int     `json:"total"`
	Correct   int     `json:"correct"`
	Incorrect int     `json:"incorrect"`
	Attempted int     `json:"attempted"`
	Accuracy  float64 `json:"accuracy"`
}

// Overview is the analytics dashboard payload.
type Overview struct {
	TestsTaken       int            `json:"tests_taken"`
	QuestionsSolved  int            `json:"questions_solved"`
	TotalScore       int            `json:"total_score"`
	Accuracy         float64        `json:"accuracy"`
	StudyTimeMinutes int            `json:"study_time_minutes"`
	WeeklyGoal       int            `json:"weekly_goal"`
	WeeklyProgress   int            `json:"weekly_progress"`
	Streak           int            `json:"streak"`
	Subjects         []SubjectStats `json:"subjects"`
	CognitiveSkills  []SubjectStats `json:"cognitive_skills"`
	Sources          []SubjectStats `json:"sources"`
}

// Strategy is the adaptive recommendation derived from weak subjects.
type Strategy struct {
	WeakSubjects []SubjectStats `json:"weak_subjects"`
	Message      string         `json:"message"`
	// SuggestedTest is a ready-to-start config targeting the weakest
	// subject, or nil when there is nothing to recommend.
	SuggestedTest *quiz.Config `json:"suggested_test,omitempty"`
}

// AnalyticsService computes performance aggregates from test history.
type AnalyticsService struct {
	results *repository.ResultRepository
	users   *repository.UserRepository
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(results *repository.ResultRepository, users *repository.UserRepository) *AnalyticsService {
	return &AnalyticsService{results: results, users: users}
}

// History returns the user's test history, most recent first.
func (s *AnalyticsService) History(ctx context.Context, userID int, limit int) ([]model.TestResult, error) {
	return s.results.ListByUser(ctx, userID, limit)
}

// GetOverview assembles the dashboard aggregates for a user.
func (s *AnalyticsService) GetOverview(ctx context.Context, userID int) (*Overview, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	history, err := s.results.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	weekly, err := s.results.CountSince(ctx, userID, startOfWeek(time.Now()))
	if err != nil {
		return nil, err
	}

	ov := &Overview{
		TestsTaken:       len(history),
		StudyTimeMinutes: u.StudyTimeMinutes,
		WeeklyGoal:       u.WeeklyGoal,
		WeeklyProgress:   weekly,
		Streak:           u.Streak,
	}

	var correct, attempted int
	subjectAgg := map[string]*SubjectStats{}
	cognitiveAgg := map[string]*SubjectStats{}
	sourceAgg := map[string]*SubjectStats{}

	for i := range history {
		res := &history[i]
		ov.QuestionsSolved += res.TotalQuestions
		ov.TotalScore += res.Score
		correct += res.Correct
		attempted += res.Attempted

		mergeBreakdown(subjectAgg, res.SubjectBreakdown)
		mergeBreakdown(cognitiveAgg, res.CognitiveBreakdown)

		src := res.Source
		if src == "" {
			src = "Mixed"
		}
		st, ok := sourceAgg[src]
		if !ok {
			st = &SubjectStats{Subject: src}
			sourceAgg[src] = st
		}
		st.Total += res.TotalQuestions
		st.Correct += res.Correct
		st.Incorrect += res.Incorrect
		st.Attempted += res.Attempted
	}

	if attempted > 0 {
		ov.Accuracy = float64(correct) / float64(attempted) * 100
	}
	ov.Subjects = flattenStats(subjectAgg)
	ov.CognitiveSkills = flattenStats(cognitiveAgg)
	ov.Sources = flattenStats(sourceAgg)
	return ov, nil
}

// GetStrategy flags subjects with enough attempts and sub-threshold
// accuracy, worst first, and proposes a focused practice test.
func (s *AnalyticsService) GetStrategy(ctx context.Context, userID int) (*Strategy, error) {
	ov, err := s.GetOverview(ctx, userID)
	if err != nil {
		return nil, err
	}

	var weak []SubjectStats
	for _, st := range ov.Subjects {
		if st.Attempted >= weakSubjectMinAttempts && st.Accuracy < weakSubjectAccuracyPct {
			weak = append(weak, st)
		}
	}
	sort.Slice(weak, func(i, j int) bool { return weak[i].Accuracy < weak[j].Accuracy })
	if len(weak) > weakSubjectLimit {
		weak = weak[:weakSubjectLimit]
	}

	strategy := &Strategy{WeakSubjects: weak}
	if len(weak) == 0 {
		strategy.Message = "No weak areas detected yet. Keep practicing across subjects."
		return strategy, nil
	}

	worst := weak[0]
	strategy.Message = fmt.Sprintf("Your accuracy in %s is %.0f%%. A focused block is recommended.", worst.Subject, worst.Accuracy)
	strategy.SuggestedTest = &quiz.Config{
		Title:   "Focus: " + worst.Subject,
		Subject: worst.Subject,
		Count:   20,
	}
	return strategy, nil
}

// PerformanceSummary renders the overview as compact text for the planner
// prompt.
func (s *AnalyticsService) PerformanceSummary(ctx context.Context, userID int) (string, error) {
	ov, err := s.GetOverview(ctx, userID)
	if err != nil {
		return "", err
	}

	summary := fmt.Sprintf("Tests taken: %d. Questions solved: %d. Overall accuracy: %.1f%%. Current streak: %d days. Weekly goal: %d questions, progress %d.\n",
		ov.TestsTaken, ov.QuestionsSolved, ov.Accuracy, ov.Streak, ov.WeeklyGoal, ov.WeeklyProgress)
	for _, st := range ov.Subjects {
		summary += fmt.Sprintf("%s: %d attempted, %.1f%% accuracy.\n", st.Subject, st.Attempted, st.Accuracy)
	}
	return summary, nil
}

func mergeBreakdown(agg map[string]*SubjectStats, bd map[string]model.BreakdownEntry) {
	for name, entry := range bd {
		st, ok := agg[name]
		if !ok {
			st = &SubjectStats{Subject: name}
			agg[name] = st
		}
		st.Total += entry.Total
		st.Correct += entry.Correct
		st.Incorrect += entry.Incorrect
		st.Attempted += entry.Correct + entry.Incorrect
	}
}

func flattenStats(agg map[string]*SubjectStats) []SubjectStats {
	out := make([]SubjectStats, 0, len(agg))
	for _, st := range agg {
		if st.Attempted > 0 {
			st.Accuracy = float64(st.Correct) / float64(st.Attempted) * 100
		}
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subject < out[j].Subject })
	return out
}

// startOfWeek returns the most recent Monday at midnight local time.
func startOfWeek(now time.Time) time.Time {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	day := now.AddDate(0, 0, -(weekday - 1))
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
}
