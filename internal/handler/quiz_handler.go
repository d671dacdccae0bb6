package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepmed/prepmed-backend/internal/middleware"
	"github.com/prepmed/prepmed-backend/internal/quiz"
	"github.com/prepmed/prepmed-backend/internal/response"
	"github.com/prepmed/prepmed-backend/internal/service"
	"github.com/prepmed/prepmed-backend/internal/validator"
)

// QuizHandler exposes the quiz session engine over HTTP.
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// StartTestRequest configures a new session.
type StartTestRequest struct {
	Title          string   `json:"title" binding:"omitempty,max=200"`
	Subject        string   `json:"subject" binding:"omitempty,max=100"`
	Modules        []string `json:"modules"`
	Subtopics      []string `json:"subtopics"`
	Difficulty     string   `json:"difficulty" binding:"omitempty,max=40"`
	CognitiveSkill string   `json:"cognitive_skill" binding:"omitempty,max=60"`
	Sources        []string `json:"sources"`
	Count          int      `json:"count" binding:"required,min=1,max=300"`
	TimerSeconds   int      `json:"timer" binding:"omitempty,min=1"`
	GrandTest      bool     `json:"is_grand_test"`
	StrictTiming   bool     `json:"strict_timing"`
	ExcludeImages  bool     `json:"exclude_images"`
}

// AnswerRequest records an answer for a question.
type AnswerRequest struct {
	QuestionID  string `json:"question_id" binding:"required"`
	OptionIndex *int   `json:"option_index" binding:"required,min=0,max=3"`
}

// QuestionRequest names a question for mark/clear operations.
type QuestionRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
}

// CursorRequest moves the question cursor.
type CursorRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

// failQuiz maps engine errors onto the response catalog.
func failQuiz(c *gin.Context, err error) {
	switch {
	case errors.Is(err, quiz.ErrNoQuestionsAvailable):
		response.Fail(c, http.StatusNotFound, response.ErrNoQuestionsAvailable)
	case errors.Is(err, quiz.ErrSessionAlreadySaved):
		response.Fail(c, http.StatusConflict, response.ErrSessionAlreadySaved)
	case errors.Is(err, quiz.ErrSessionActive):
		response.Fail(c, http.StatusConflict, response.ErrSessionActive)
	case errors.Is(err, quiz.ErrNoActiveSession):
		response.Fail(c, http.StatusConflict, response.ErrNoActiveSession)
	case errors.Is(err, quiz.ErrNoSavedSession):
		response.Fail(c, http.StatusConflict, response.ErrNoSavedSession)
	case errors.Is(err, quiz.ErrStrictTiming):
		response.Fail(c, http.StatusConflict, response.ErrStrictTiming)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// Start godoc
// POST /api/v1/quiz/start
func (h *QuizHandler) Start(c *gin.Context) {
	var req StartTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	cfg := quiz.Config{
		Title:          req.Title,
		Subject:        req.Subject,
		Modules:        req.Modules,
		Subtopics:      req.Subtopics,
		Difficulty:     req.Difficulty,
		CognitiveSkill: req.CognitiveSkill,
		Sources:        req.Sources,
		Count:          req.Count,
		TimerSeconds:   req.TimerSeconds,
		GrandTest:      req.GrandTest,
		StrictTiming:   req.StrictTiming,
		ExcludeImages:  req.ExcludeImages,
	}

	userID := middleware.UserID(c)
	if err := h.quizService.StartTest(c.Request.Context(), userID, cfg); err != nil {
		failQuiz(c, err)
		return
	}

	response.Success(c, http.StatusCreated, h.quizService.GetState(userID))
}

// GetState godoc
// GET /api/v1/quiz/session
func (h *QuizHandler) GetState(c *gin.Context) {
	response.Success(c, http.StatusOK, h.quizService.GetState(middleware.UserID(c)))
}

// Answer godoc
// POST /api/v1/quiz/answer
func (h *QuizHandler) Answer(c *gin.Context) {
	var req AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	userID := middleware.UserID(c)
	if err := h.quizService.SelectAnswer(c.Request.Context(), userID, req.QuestionID, *req.OptionIndex); err != nil {
		failQuiz(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// ToggleMark godoc
// POST /api/v1/quiz/mark
func (h *QuizHandler) ToggleMark(c *gin.Context) {
	var req QuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	userID := middleware.UserID(c)
	if err := h.quizService.ToggleMark(c.Request.Context(), userID, req.QuestionID); err != nil {
		failQuiz(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// ClearAnswer godoc
// POST /api/v1/quiz/clear
func (h *QuizHandler) ClearAnswer(c *gin.Context) {
	var req QuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	userID := middleware.UserID(c)
	if err := h.quizService.ClearAnswer(c.Request.Context(), userID, req.QuestionID); err != nil {
		failQuiz(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// SetCursor godoc
// POST /api/v1/quiz/cursor
func (h *QuizHandler) SetCursor(c *gin.Context) {
	var req CursorRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	userID := middleware.UserID(c)
	if err := h.quizService.SetCursor(c.Request.Context(), userID, *req.Index); err != nil {
		failQuiz(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// Pause godoc
// POST /api/v1/quiz/pause
func (h *QuizHandler) Pause(c *gin.Context) {
	userID := middleware.UserID(c)
	if err := h.quizService.PauseTest(c.Request.Context(), userID); err != nil {
		failQuiz(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.quizService.GetState(userID))
}

// Resume godoc
// POST /api/v1/quiz/resume
func (h *QuizHandler) Resume(c *gin.Context) {
	userID := middleware.UserID(c)
	if err := h.quizService.ResumeTest(c.Request.Context(), userID); err != nil {
		failQuiz(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.quizService.GetState(userID))
}

// Submit godoc
// POST /api/v1/quiz/submit
func (h *QuizHandler) Submit(c *gin.Context) {
	userID := middleware.UserID(c)
	summary, err := h.quizService.SubmitTest(c.Request.Context(), userID)
	if err != nil {
		failQuiz(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": summary})
}

// Discard godoc
// DELETE /api/v1/quiz/session
func (h *QuizHandler) Discard(c *gin.Context) {
	h.quizService.DiscardTest(c.Request.Context(), middleware.UserID(c))
	response.Success(c, http.StatusOK, gin.H{})
}

// Subjects godoc
// GET /api/v1/quiz/subjects
func (h *QuizHandler) Subjects(c *gin.Context) {
	subjects, err := h.quizService.Subjects(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subjects": subjects})
}
