package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prepmed/prepmed-backend/internal/ai"
	"github.com/prepmed/prepmed-backend/internal/middleware"
	"github.com/prepmed/prepmed-backend/internal/model"
	"github.com/prepmed/prepmed-backend/internal/repository"
	"github.com/prepmed/prepmed-backend/internal/response"
	"github.com/prepmed/prepmed-backend/internal/service"
	"github.com/prepmed/prepmed-backend/internal/validator"
)

// FlashcardHandler handles deck CRUD and AI deck generation.
type FlashcardHandler struct {
	flashcardService *service.FlashcardService
}

// NewFlashcardHandler creates a new FlashcardHandler.
func NewFlashcardHandler(flashcardService *service.FlashcardService) *FlashcardHandler {
	return &FlashcardHandler{flashcardService: flashcardService}
}

func deckID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("deckID"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// Create godoc
// POST /api/v1/flashcards
func (h *FlashcardHandler) Create(c *gin.Context) {
	var req model.CreateDeckRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	deck, err := h.flashcardService.CreateDeck(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"deck": deck})
}

// Generate godoc
// POST /api/v1/flashcards/generate
func (h *FlashcardHandler) Generate(c *gin.Context) {
	var req model.GenerateDeckRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	deck, err := h.flashcardService.GenerateDeck(c.Request.Context(), middleware.UserID(c), req)
	if errors.Is(err, ai.ErrNotConfigured) {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrAIUnavailable)
		return
	}
	if err != nil {
		response.Fail(c, http.StatusBadGateway, response.ErrGenerationFailed)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"deck": deck})
}

// List godoc
// GET /api/v1/flashcards
func (h *FlashcardHandler) List(c *gin.Context) {
	decks, err := h.flashcardService.ListDecks(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"decks": decks})
}

// Get godoc
// GET /api/v1/flashcards/:deckID
func (h *FlashcardHandler) Get(c *gin.Context) {
	id, ok := deckID(c)
	if !ok {
		return
	}

	deck, err := h.flashcardService.GetDeck(c.Request.Context(), middleware.UserID(c), id)
	if errors.Is(err, repository.ErrNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deck": deck})
}

// Update godoc
// PUT /api/v1/flashcards/:deckID
func (h *FlashcardHandler) Update(c *gin.Context) {
	id, ok := deckID(c)
	if !ok {
		return
	}

	var req model.UpdateDeckRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	deck, err := h.flashcardService.UpdateDeck(c.Request.Context(), middleware.UserID(c), id, req)
	if errors.Is(err, repository.ErrNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deck": deck})
}

// Delete godoc
// DELETE /api/v1/flashcards/:deckID
func (h *FlashcardHandler) Delete(c *gin.Context) {
	id, ok := deckID(c)
	if !ok {
		return
	}

	err := h.flashcardService.DeleteDeck(c.Request.Context(), middleware.UserID(c), id)
	if errors.Is(err, repository.ErrNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
