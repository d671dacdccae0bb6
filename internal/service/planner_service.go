package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prepmed/prepmed-backend/internal/ai"
)

// PlannerService builds AI study plans from a user's performance history.
type PlannerService struct {
	analytics *AnalyticsService
	aicli     *ai.Client
	log       zerolog.Logger
}

// NewPlannerService creates a new PlannerService.
func NewPlannerService(analytics *AnalyticsService, aicli *ai.Client, log zerolog.Logger) *PlannerService {
	return &PlannerService{analytics: analytics, aicli: aicli, log: log}
}

// GeneratePlan summarizes the user's performance and asks the model for a
// plan sized to the remaining runway. daysUntilExam of 0 means no exam date
// is known and the plan defaults to a one-week horizon.
func (s *PlannerService) GeneratePlan(ctx context.Context, userID int, daysUntilExam int) (*ai.StudyPlan, error) {
	summary, err := s.analytics.PerformanceSummary(ctx, userID)
	if err != nil {
		return nil, err
	}
	if daysUntilExam > 0 {
		summary += fmt.Sprintf("Days until the exam: %d.\n", daysUntilExam)
	}
	return s.aicli.GeneratePlan(ctx, summary)
}
