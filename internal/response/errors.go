package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Quiz session ──────────────────────────────────────────────────
	ErrNoQuestionsAvailable ErrCode = "NO_QUESTIONS_AVAILABLE"
	ErrSessionAlreadySaved  ErrCode = "SESSION_ALREADY_SAVED"
	ErrSessionActive        ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrNoActiveSession      ErrCode = "NO_ACTIVE_SESSION"
	ErrNoSavedSession       ErrCode = "NO_SAVED_SESSION"
	ErrStrictTiming         ErrCode = "STRICT_TIMING"

	// ─── Encounter ─────────────────────────────────────────────────────
	ErrInvalidCaseData   ErrCode = "INVALID_CASE_DATA"
	ErrNoActiveEncounter ErrCode = "NO_ACTIVE_ENCOUNTER"

	// ─── AI ────────────────────────────────────────────────────────────
	ErrGenerationFailed ErrCode = "GENERATION_FAILED"
	ErrAIUnavailable    ErrCode = "AI_UNAVAILABLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrEmailTaken:
		return "An account with this email already exists."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Quiz session ──────────────────────────────────────────────────
	case ErrNoQuestionsAvailable:
		return "No questions match the selected filters."
	case ErrSessionAlreadySaved:
		return "A paused test is already saved. Resume or discard it first."
	case ErrSessionActive:
		return "A test is already in progress."
	case ErrNoActiveSession:
		return "No test is currently in progress."
	case ErrNoSavedSession:
		return "There is no paused test to resume."
	case ErrStrictTiming:
		return "This test cannot be paused."

	// ─── Encounter ─────────────────────────────────────────────────────
	case ErrInvalidCaseData:
		return "The clinical case could not be loaded."
	case ErrNoActiveEncounter:
		return "No clinical encounter is currently in progress."

	// ─── AI ────────────────────────────────────────────────────────────
	case ErrGenerationFailed:
		return "Content generation failed. Please try again."
	case ErrAIUnavailable:
		return "The AI service is not configured."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
