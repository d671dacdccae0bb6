package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prepmed/prepmed-backend/internal/ai"
	"github.com/prepmed/prepmed-backend/internal/encounter"
	"github.com/prepmed/prepmed-backend/internal/middleware"
	"github.com/prepmed/prepmed-backend/internal/repository"
	"github.com/prepmed/prepmed-backend/internal/response"
	"github.com/prepmed/prepmed-backend/internal/service"
	"github.com/prepmed/prepmed-backend/internal/validator"
)

// EncounterHandler exposes the clinical encounter engine over HTTP.
type EncounterHandler struct {
	encounterService *service.EncounterService
}

// NewEncounterHandler creates a new EncounterHandler.
func NewEncounterHandler(encounterService *service.EncounterService) *EncounterHandler {
	return &EncounterHandler{encounterService: encounterService}
}

// StartEncounterRequest begins a case. Exactly one source is used: a case
// ID when given, otherwise a generated or random case on the subject.
type StartEncounterRequest struct {
	CaseID     string `json:"case_id" binding:"omitempty,uuid"`
	Subject    string `json:"subject" binding:"omitempty,max=100"`
	Difficulty string `json:"difficulty" binding:"omitempty,max=40"`
	Generate   bool   `json:"generate"`
}

// ActRequest takes a decision in the running encounter.
type ActRequest struct {
	Label    string `json:"label" binding:"required,max=300"`
	NextStep *int   `json:"next_step" binding:"required,min=0"`
}

func failEncounter(c *gin.Context, err error) {
	switch {
	case errors.Is(err, encounter.ErrInvalidCaseData):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidCaseData)
	case errors.Is(err, service.ErrNoActiveEncounter):
		response.Fail(c, http.StatusConflict, response.ErrNoActiveEncounter)
	case errors.Is(err, repository.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, ai.ErrNotConfigured):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrAIUnavailable)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// Start godoc
// POST /api/v1/encounters/start
func (h *EncounterHandler) Start(c *gin.Context) {
	var req StartEncounterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	userID := middleware.UserID(c)
	ctx := c.Request.Context()

	var run *encounter.Run
	var err error
	switch {
	case req.CaseID != "":
		var caseID uuid.UUID
		caseID, err = uuid.Parse(req.CaseID)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		run, err = h.encounterService.StartStored(ctx, userID, caseID)
	case req.Generate:
		run, err = h.encounterService.StartGenerated(ctx, userID, req.Subject, req.Difficulty)
	default:
		run, err = h.encounterService.StartRandom(ctx, userID, req.Subject)
	}
	if err != nil {
		failEncounter(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"run": run})
}

// Act godoc
// POST /api/v1/encounters/act
func (h *EncounterHandler) Act(c *gin.Context) {
	var req ActRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	run, err := h.encounterService.Act(middleware.UserID(c), req.Label, *req.NextStep)
	if err != nil {
		failEncounter(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"run": run})
}

// GetRun godoc
// GET /api/v1/encounters/current
func (h *EncounterHandler) GetRun(c *gin.Context) {
	run := h.encounterService.GetRun(middleware.UserID(c))
	response.Success(c, http.StatusOK, gin.H{"run": run})
}

// End godoc
// DELETE /api/v1/encounters/current
func (h *EncounterHandler) End(c *gin.Context) {
	h.encounterService.End(middleware.UserID(c))
	response.Success(c, http.StatusOK, gin.H{})
}

// ListCases godoc
// GET /api/v1/encounters/cases?subject=...
func (h *EncounterHandler) ListCases(c *gin.Context) {
	cases, err := h.encounterService.ListCases(c.Request.Context(), c.Query("subject"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cases": cases})
}
