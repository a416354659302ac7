package errors

import (
	stderrors "errors"
	"net/http"
)

// Kind classifies a domain error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindNotFound
	KindConflict
	KindRateLimited
	KindUpstream
)

// DomainError is a sentinel carrying its kind and a stable client code.
type DomainError struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func newDomain(kind Kind, code, message string) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message}
}

var (
	// ErrInvalidCredentials is returned for unknown email and wrong password alike.
	ErrInvalidCredentials = newDomain(KindAuthentication, "INVALID_CREDENTIALS", "Invalid credentials")
	// ErrInvalidToken covers malformed, tampered and expired access tokens.
	ErrInvalidToken = newDomain(KindAuthentication, "INVALID_TOKEN", "Invalid or expired token")
	// ErrInvalidRefreshToken is the single refresh failure; it never says why.
	ErrInvalidRefreshToken = newDomain(KindAuthentication, "INVALID_REFRESH_TOKEN", "Invalid or expired refresh token")
	// ErrWrongPassword is returned when a password confirmation does not match.
	ErrWrongPassword = newDomain(KindAuthentication, "INCORRECT_PASSWORD", "Incorrect password")
	// ErrUserNotFound is returned when the authenticated user no longer exists.
	ErrUserNotFound = newDomain(KindNotFound, "USER_NOT_FOUND", "User not found")
	// ErrEmailTaken is returned on signup or email change to a registered address.
	ErrEmailTaken = newDomain(KindConflict, "EMAIL_TAKEN", "User already exists with this email")
	// ErrEmailInUse is returned when a profile update targets a registered address.
	ErrEmailInUse = newDomain(KindConflict, "EMAIL_IN_USE", "Email is already in use")
	// ErrWrongCurrentPassword is returned when change-password gets a bad current password.
	ErrWrongCurrentPassword = newDomain(KindAuthentication, "INCORRECT_PASSWORD", "Current password is incorrect")
	// ErrAlreadyVerified is returned when resending verification for a verified email.
	ErrAlreadyVerified = newDomain(KindValidation, "ALREADY_VERIFIED", "Email is already verified")
	// ErrInvalidVerificationToken is returned for unknown or expired verification tokens.
	ErrInvalidVerificationToken = newDomain(KindValidation, "INVALID_VERIFICATION_TOKEN", "Invalid or expired verification token")
	// ErrInvalidResetToken is returned for unknown or expired reset tokens.
	ErrInvalidResetToken = newDomain(KindValidation, "INVALID_RESET_TOKEN", "Invalid or expired reset token")
	// ErrDailyLimitReached is returned when the plan's daily post quota is used up.
	ErrDailyLimitReached = newDomain(KindRateLimited, "DAILY_LIMIT_REACHED", "Daily post limit reached for your plan")
	// ErrNotificationFailed is returned when a synchronous email send fails.
	ErrNotificationFailed = newDomain(KindUpstream, "NOTIFICATION_FAILED", "Error sending email")
	// ErrOAuthNoCode is returned when a provider callback carries no code.
	ErrOAuthNoCode = newDomain(KindUpstream, "no_code", "authorization code missing")
	// ErrOAuthFailed covers every other OAuth failure.
	ErrOAuthFailed = newDomain(KindUpstream, "oauth_failed", "oauth login failed")
	// ErrOAuthState is returned when the callback state is missing, unknown or reused.
	ErrOAuthState = newDomain(KindUpstream, "oauth_failed", "oauth state mismatch")
	// ErrOAuthProviderDisabled is returned when the provider is not configured.
	ErrOAuthProviderDisabled = newDomain(KindUpstream, "oauth_failed", "oauth provider not configured")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when request input fails validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return e.Fields[0].Message
	}
	return "Validation failed"
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// ErrorResponse represents a standardized error response. Message repeats
// Error for clients that read the message key.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Code    string       `json:"code"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Fields     []FieldError
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Message: e.Message,
		Code:    e.Code,
		Errors:  e.Fields,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything unrecognised
// becomes a generic 500 so internal detail never reaches the client.
func MapErrorToHTTP(err error) *HTTPError {
	var verr *ValidationError
	if As(err, &verr) {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    verr.Error(),
			Code:       "VALIDATION_FAILED",
			Fields:     verr.Fields,
		}
	}

	var derr *DomainError
	if As(err, &derr) {
		return NewHTTPError(statusFor(derr.Kind), derr.Message, derr.Code)
	}

	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}

func statusFor(kind Kind) int {
	switch kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Is wraps the standard errors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As wraps the standard errors.As.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// New wraps the standard errors.New.
func New(text string) error {
	return stderrors.New(text)
}
