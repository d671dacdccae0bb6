package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAsk   Action = "ask"
	ActionReset Action = "reset"
	ActionPing  Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AskRequest is one student question in a tutoring conversation.
type AskRequest struct {
	Action  Action `json:"action"`
	Content string `json:"content"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError Event = "error"
	EventReply Event = "reply"
	EventReset Event = "reset"
	EventPong  Event = "pong"
)

// ReplyResponse carries the tutor's answer.
type ReplyResponse struct {
	Event   Event  `json:"event"`
	Content string `json:"content"`
}

// AckResponse acknowledges reset and ping actions.
type AckResponse struct {
	Event Event `json:"event"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}
