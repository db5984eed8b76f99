package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrFirstLoginRequired ErrCode = "FIRST_LOGIN_REQUIRED"
	ErrPasswordExpired    ErrCode = "PASSWORD_EXPIRED"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── OTP / password reset ──────────────────────────────────────────
	ErrOTPExpired         ErrCode = "OTP_EXPIRED"
	ErrOTPMismatch        ErrCode = "OTP_MISMATCH"
	ErrPasswordMismatch   ErrCode = "PASSWORD_MISMATCH"
	ErrAlreadyVerified    ErrCode = "ALREADY_VERIFIED"
	ErrResetNotAuthorized ErrCode = "RESET_NOT_AUTHORIZED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden      ErrCode = "FORBIDDEN"
	ErrInvalidRole    ErrCode = "INVALID_ROLE"
	ErrInvalidPairing ErrCode = "INVALID_PAIRING"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrUpstream ErrCode = "UPSTREAM_ERROR"
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid email or password."
	case ErrFirstLoginRequired:
		return "First login required. Please set a new password before signing in."
	case ErrPasswordExpired:
		return "Your temporary password has expired. Please reset your password."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid or expired."

	// ─── OTP / password reset ──────────────────────────────────────────
	case ErrOTPExpired:
		return "The verification code has expired. Please request a new one."
	case ErrOTPMismatch:
		return "The verification code is incorrect."
	case ErrPasswordMismatch:
		return "Passwords do not match."
	case ErrAlreadyVerified:
		return "This account is already verified."
	case ErrResetNotAuthorized:
		return "Verify the password reset code before setting a new password."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrInvalidRole:
		return "This action is not available for your role."
	case ErrInvalidPairing:
		return "A pairing must link a mentor and a student."

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

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "Unsupported file type."
	case ErrFileTooLarge:
		return "File size exceeds the limit."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrUpstream:
		return "An upstream service failed. Please try again later."
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
