package utils

import "fmt"

// AppError is the tagged error type shared by every layer. Callers switch
// on Code, never on message text.
type AppError struct {
	Code    string
	Message string
	Origin  error // Original error that caused this error, if any
}

func (appErr *AppError) Error() string {
	if appErr.Origin != nil {
		return appErr.Message + ": " + appErr.Origin.Error()
	}
	return appErr.Message
}

// Standard error codes for the application
const (
	// Resource errors
	ErrNotFound     = "NOT_FOUND"
	ErrDuplicate    = "DUPLICATE"
	ErrInvalidInput = "INVALID_INPUT"

	// Authentication/Authorization errors
	ErrUnauthorized = "UNAUTHORIZED"
	ErrForbidden    = "FORBIDDEN" // Authenticated but not permitted
	ErrInvalidToken = "INVALID_TOKEN"
	ErrBanned       = "BANNED"

	// User-specific errors
	ErrUserNotFound       = "USER_NOT_FOUND"
	ErrUserAlreadyExists  = "USER_ALREADY_EXISTS"
	ErrInvalidCredentials = "INVALID_CREDENTIALS"

	// Entity-specific errors
	ErrReviewNotFound  = "REVIEW_NOT_FOUND"
	ErrAlbumNotFound   = "ALBUM_NOT_FOUND"
	ErrCommentNotFound = "COMMENT_NOT_FOUND"
	ErrReplyNotFound   = "REPLY_NOT_FOUND"
	ErrNewsNotFound    = "NEWS_NOT_FOUND"

	// Moderation errors
	ErrInvalidTransition = "INVALID_STATUS_TRANSITION"

	// Subscription errors
	ErrSelfSubscribe     = "SELF_SUBSCRIBE"
	ErrAlreadySubscribed = "ALREADY_SUBSCRIBED"
	ErrNotSubscribed     = "NOT_SUBSCRIBED"

	// Actor communication errors
	ErrActorTimeout = "ACTOR_TIMEOUT"

	// Upload/proxy errors
	ErrFileTooLarge    = "FILE_TOO_LARGE"
	ErrFileType        = "UNSUPPORTED_FILE_TYPE"
	ErrDisallowedProxy = "DISALLOWED_PROXY_TARGET"

	ErrDatabase = "DATABASE_ERROR"
)

// NewAppError builds an AppError carrying an error code, a human-readable
// message and the originating error, if any.
func NewAppError(code string, message string, originalErr error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Origin:  originalErr,
	}
}

// AsAppError passes an already-coded error through unchanged and wraps
// anything else as a database failure, so callers always receive an
// error that maps to an HTTP status.
func AsAppError(err error, message string) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return NewAppError(ErrDatabase, message, err)
}

// Specific error creators for common cases
func NewUserNotFoundError(userID string) *AppError {
	return &AppError{
		Code:    ErrUserNotFound,
		Message: "User not found: " + userID,
	}
}

func NewBannedError() *AppError {
	return &AppError{
		Code:    ErrBanned,
		Message: "Account is banned",
	}
}

func NewForbiddenError(action string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: "Not permitted to " + action,
	}
}

func NewActorTimeoutError(actorName string) *AppError {
	return &AppError{
		Code:    ErrActorTimeout,
		Message: "Actor communication timeout: " + actorName,
	}
}

func NewInvalidTransitionError(from, to string) *AppError {
	return &AppError{
		Code:    ErrInvalidTransition,
		Message: fmt.Sprintf("Cannot change review status from %s to %s", from, to),
	}
}

// IsErrorCode reports whether err is an AppError with the given code.
func IsErrorCode(err error, code string) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// IsAuthError reports whether err is an authentication/authorization failure.
func IsAuthError(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrUnauthorized ||
			appErr.Code == ErrForbidden ||
			appErr.Code == ErrInvalidToken ||
			appErr.Code == ErrBanned
	}
	return false
}

// AppErrorToHTTPStatus converts an AppError code to an HTTP status code.
func AppErrorToHTTPStatus(errorCode string) int {
	switch errorCode {
	case ErrNotFound, ErrUserNotFound, ErrReviewNotFound, ErrAlbumNotFound,
		ErrCommentNotFound, ErrReplyNotFound, ErrNewsNotFound:
		return 404 // http.StatusNotFound
	case ErrInvalidInput, ErrInvalidCredentials, ErrFileType, ErrDisallowedProxy:
		return 400 // http.StatusBadRequest
	case ErrUnauthorized, ErrInvalidToken:
		return 401 // http.StatusUnauthorized
	case ErrForbidden, ErrBanned:
		return 403 // http.StatusForbidden
	case ErrDuplicate, ErrUserAlreadyExists, ErrAlreadySubscribed,
		ErrNotSubscribed, ErrSelfSubscribe, ErrInvalidTransition:
		return 409 // http.StatusConflict
	case ErrFileTooLarge:
		return 413 // http.StatusRequestEntityTooLarge
	case ErrDatabase, ErrActorTimeout:
		return 500 // http.StatusInternalServerError
	default:
		return 500 // http.StatusInternalServerError for unknown errors
	}
}
