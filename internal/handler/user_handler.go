package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepmed/prepmed-backend/internal/middleware"
	"github.com/prepmed/prepmed-backend/internal/model"
	"github.com/prepmed/prepmed-backend/internal/repository"
	"github.com/prepmed/prepmed-backend/internal/response"
	"github.com/prepmed/prepmed-backend/internal/service"
	"github.com/prepmed/prepmed-backend/internal/validator"
)

// UserHandler handles goals, bookmarks, and the leaderboard.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// BookmarkRequest names a question to save or drop.
type BookmarkRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
}

// UpdateGoal godoc
// PUT /api/v1/users/me/goal
func (h *UserHandler) UpdateGoal(c *gin.Context) {
	var req model.UpdateGoalRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.userService.UpdateWeeklyGoal(c.Request.Context(), middleware.UserID(c), req.WeeklyGoal); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"weekly_goal": req.WeeklyGoal})
}

// AddBookmark godoc
// POST /api/v1/bookmarks
func (h *UserHandler) AddBookmark(c *gin.Context) {
	var req BookmarkRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	err := h.userService.AddBookmark(c.Request.Context(), middleware.UserID(c), req.QuestionID)
	if errors.Is(err, repository.ErrNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{})
}

// RemoveBookmark godoc
// DELETE /api/v1/bookmarks/:questionID
func (h *UserHandler) RemoveBookmark(c *gin.Context) {
	questionID := c.Param("questionID")
	if questionID == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.userService.RemoveBookmark(c.Request.Context(), middleware.UserID(c), questionID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// ListBookmarks godoc
// GET /api/v1/bookmarks
func (h *UserHandler) ListBookmarks(c *gin.Context) {
	questions, err := h.userService.ListBookmarks(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookmarks": questions})
}

// GetLeaderboard godoc
// GET /api/v1/leaderboard
func (h *UserHandler) GetLeaderboard(c *gin.Context) {
	entries, err := h.userService.GetLeaderboard(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"leaderboard": entries})
}
