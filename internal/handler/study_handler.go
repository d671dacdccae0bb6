package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prepmed/prepmed-backend/internal/ai"
	"github.com/prepmed/prepmed-backend/internal/middleware"
	"github.com/prepmed/prepmed-backend/internal/response"
	"github.com/prepmed/prepmed-backend/internal/service"
	"github.com/prepmed/prepmed-backend/internal/validator"
)

// StudyHandler groups the daily question, analytics, strategy, and planner
// endpoints.
type StudyHandler struct {
	dailyService     *service.DailyService
	analyticsService *service.AnalyticsService
	plannerService   *service.PlannerService
}

// NewStudyHandler creates a new StudyHandler.
func NewStudyHandler(daily *service.DailyService, analytics *service.AnalyticsService, planner *service.PlannerService) *StudyHandler {
	return &StudyHandler{
		dailyService:     daily,
		analyticsService: analytics,
		plannerService:   planner,
	}
}

// DailyAnswerRequest is the user's pick for the question of the day.
type DailyAnswerRequest struct {
	// Option is 1-based, matching the question's answer field.
	Option *int `json:"option" binding:"required,min=1,max=4"`
}

// GetDaily godoc
// GET /api/v1/daily
func (h *StudyHandler) GetDaily(c *gin.Context) {
	daily, err := h.dailyService.GetDaily(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, daily)
}

// AnswerDaily godoc
// POST /api/v1/daily/answer
func (h *StudyHandler) AnswerDaily(c *gin.Context) {
	var req DailyAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	daily, err := h.dailyService.AnswerDaily(c.Request.Context(), middleware.UserID(c), *req.Option)
	if errors.Is(err, service.ErrAlreadyAnswered) {
		response.Fail(c, http.StatusConflict, response.ErrConflict)
		return
	}
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, daily)
}

// GetHistory godoc
// GET /api/v1/analytics/history?limit=...
func (h *StudyHandler) GetHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	history, err := h.analyticsService.History(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"history": history})
}

// GetOverview godoc
// GET /api/v1/analytics/overview
func (h *StudyHandler) GetOverview(c *gin.Context) {
	overview, err := h.analyticsService.GetOverview(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, overview)
}

// GetStrategy godoc
// GET /api/v1/analytics/strategy
func (h *StudyHandler) GetStrategy(c *gin.Context) {
	strategy, err := h.analyticsService.GetStrategy(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, strategy)
}

// PlannerRequest scopes a study plan to the remaining days before the exam.
// An empty body is valid; the plan then defaults to a one-week horizon.
type PlannerRequest struct {
	DaysUntilExam int `json:"days_until_exam" binding:"omitempty,min=1,max=365"`
}

// GeneratePlan godoc
// POST /api/v1/planner
func (h *StudyHandler) GeneratePlan(c *gin.Context) {
	var req PlannerRequest
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	plan, err := h.plannerService.GeneratePlan(c.Request.Context(), middleware.UserID(c), req.DaysUntilExam)
	if errors.Is(err, ai.ErrNotConfigured) {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrAIUnavailable)
		return
	}
	if err != nil {
		response.Fail(c, http.StatusBadGateway, response.ErrGenerationFailed)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"plan": plan})
}
