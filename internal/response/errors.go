package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrPermissionDenied ErrCode = "PERMISSION_DENIED"
	ErrStaffAccessOnly  ErrCode = "STAFF_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation      ErrCode = "VALIDATION_ERROR"
	ErrInvalidRole     ErrCode = "INVALID_ROLE"
	ErrInvalidPayload  ErrCode = "INVALID_PAYLOAD"
	ErrPayloadTooLarge ErrCode = "PAYLOAD_TOO_LARGE"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound            ErrCode = "NOT_FOUND"
	ErrEmailTaken          ErrCode = "EMAIL_TAKEN"
	ErrAlreadyBootstrapped ErrCode = "ALREADY_BOOTSTRAPPED"

	// ─── Storage ───────────────────────────────────────────────────────
	ErrStorageQuotaExceeded ErrCode = "STORAGE_QUOTA_EXCEEDED"
	ErrStorageWriteFailed   ErrCode = "STORAGE_WRITE_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidCredentials:
		return "Invalid email or password."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."
	case ErrSessionInvalidated:
		return "This account was deactivated or removed. Please sign in again."

	case ErrPermissionDenied:
		return "Your role cannot manage this account."
	case ErrStaffAccessOnly:
		return "This action is limited to staff accounts."

	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidRole:
		return "Unknown role."
	case ErrInvalidPayload:
		return "Request body must be a JSON object."
	case ErrPayloadTooLarge:
		return "Request body is too large."

	case ErrNotFound:
		return "Resource not found."
	case ErrEmailTaken:
		return "That email is already registered."
	case ErrAlreadyBootstrapped:
		return "An admin account already exists."

	case ErrStorageQuotaExceeded:
		return "Storage is full. Delete some records and try again."
	case ErrStorageWriteFailed:
		return "The change could not be saved."

	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
