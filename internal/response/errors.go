package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrTeacherAccessOnly ErrCode = "TEACHER_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidMode    ErrCode = "INVALID_MODE"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Exam lifecycle ────────────────────────────────────────────────
	ErrRegistrationClosed   ErrCode = "REGISTRATION_CLOSED"
	ErrUnregistrationClosed ErrCode = "UNREGISTRATION_CLOSED"
	ErrExamNotStartable     ErrCode = "EXAM_NOT_STARTABLE"
	ErrSessionActive        ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrTaskIndexOutOfRange  ErrCode = "TASK_INDEX_OUT_OF_RANGE"

	// ─── Grading ───────────────────────────────────────────────────────
	ErrExecutorUnavailable ErrCode = "EXECUTOR_UNAVAILABLE"
	ErrExecutorTimeout     ErrCode = "EXECUTOR_TIMEOUT"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid or expired."
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrTeacherAccessOnly:
		return "This resource is restricted to teachers and administrators."
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidMode:
		return "Unknown task mode."
	case ErrInvalidPayload:
		return "The request payload is invalid."
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "The resource already exists."
	case ErrRegistrationClosed:
		return "Registration for this exam has closed."
	case ErrUnregistrationClosed:
		return "Unregistration for this exam has closed."
	case ErrExamNotStartable:
		return "This exam cannot be started right now."
	case ErrSessionActive:
		return "You already have an exam in progress."
	case ErrTaskIndexOutOfRange:
		return "The requested task index is out of range."
	case ErrExecutorUnavailable:
		return "The code execution service is unavailable. Your progress is unchanged; please retry."
	case ErrExecutorTimeout:
		return "The code execution service timed out. Your progress is unchanged; please retry."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
