package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/prepmed/prepmed-backend/internal/ai"
	"github.com/prepmed/prepmed-backend/internal/middleware"
	ws "github.com/prepmed/prepmed-backend/internal/websocket"
)

// tutorHistoryLimit caps the turns carried into each completion so a long
// conversation does not blow the prompt budget.
const tutorHistoryLimit = 20

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// TutorHandler streams a tutoring conversation over WebSocket. History
// lives only for the life of the connection.
type TutorHandler struct {
	aicli    *ai.Client
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewTutorHandler creates a new TutorHandler.
func NewTutorHandler(aicli *ai.Client, log zerolog.Logger, allowedOrigins []string) *TutorHandler {
	return &TutorHandler{
		aicli:    aicli,
		log:      log.With().Str("component", "tutor_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// TutorStream godoc
// WS /ws/v1/tutor?token=...
func (h *TutorHandler) TutorStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if !h.aicli.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "tutor unavailable"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	h.log.Info().Int("user_id", claims.UserID).Msg("Tutor session opened")

	var history []ai.Message
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var envelope ws.RequestEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			ws.WriteError(conn, "invalid message")
			continue
		}

		switch envelope.Action {
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.AckResponse{Event: ws.EventPong})

		case ws.ActionReset:
			history = nil
			ws.WriteTyped(conn, ws.AckResponse{Event: ws.EventReset})

		case ws.ActionAsk:
			var req ws.AskRequest
			if err := json.Unmarshal(raw, &req); err != nil || strings.TrimSpace(req.Content) == "" {
				ws.WriteError(conn, "empty question")
				continue
			}

			history = append(history, ai.Message{Role: "user", Content: req.Content})
			if len(history) > tutorHistoryLimit {
				history = history[len(history)-tutorHistoryLimit:]
			}

			reply, err := h.aicli.TutorReply(c.Request.Context(), history)
			if err != nil {
				h.log.Warn().Err(err).Msg("Tutor completion failed")
				ws.WriteError(conn, "tutor unavailable, try again")
				continue
			}

			history = append(history, ai.Message{Role: "assistant", Content: reply})
			ws.WriteTyped(conn, ws.ReplyResponse{Event: ws.EventReply, Content: reply})

		default:
			ws.WriteError(conn, "unknown action")
		}
	}
}
