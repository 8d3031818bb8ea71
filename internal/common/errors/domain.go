package commonerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCategory string

const (
	CategoryValidation     ErrorCategory = "VALIDATION"
	CategoryNotFound       ErrorCategory = "NOT_FOUND"
	CategoryConflict       ErrorCategory = "CONFLICT"
	CategoryAuthentication ErrorCategory = "AUTHENTICATION"
	CategoryUnauthorized   ErrorCategory = "UNAUTHORIZED"
	CategoryInternal       ErrorCategory = "INTERNAL"
)

// DomainError is the failure half of every service Result. The category maps
// directly onto the API response union; the cause stays server-side.
type DomainError interface {
	error
	Code() string
	Category() ErrorCategory
	HTTPStatus() int
	Message() string
	Unwrap() error
	WithCause(cause error) DomainError
}

type domainError struct {
	code     string
	category ErrorCategory
	status   int
	message  string
	cause    error
}

func (e *domainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *domainError) Code() string {
	return e.code
}

func (e *domainError) Category() ErrorCategory {
	return e.category
}

func (e *domainError) HTTPStatus() int {
	return e.status
}

func (e *domainError) Message() string {
	return e.message
}

func (e *domainError) Unwrap() error {
	return e.cause
}

func (e *domainError) WithCause(cause error) DomainError {
	return &domainError{
		code:     e.code,
		category: e.category,
		status:   e.status,
		message:  e.message,
		cause:    cause,
	}
}

func NewDomainError(code string, category ErrorCategory, status int, message string) DomainError {
	return &domainError{
		code:     code,
		category: category,
		status:   status,
		message:  message,
	}
}

func IsDomainError(err error) bool {
	var de DomainError
	return errors.As(err, &de)
}

func AsDomainError(err error) (DomainError, bool) {
	var de DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// NewValidationError carries a constraint-violation message surfaced by the
// storage schema or the request validator.
func NewValidationError(message string) DomainError {
	return NewDomainError(
		"VALIDATION_FAILED",
		CategoryValidation,
		http.StatusBadRequest,
		message,
	)
}

var (
	ErrMissingRequiredEnv = NewDomainError(
		"MISSING_REQUIRED_ENV",
		CategoryValidation,
		http.StatusInternalServerError,
		"missing required environment variable",
	)

	ErrInvalidJWTSecret = NewDomainError(
		"INVALID_JWT_SECRET",
		CategoryValidation,
		http.StatusInternalServerError,
		"JWT_SECRET must be at least 32 bytes",
	)

	ErrUserAlreadyExists = NewDomainError(
		"USER_ALREADY_EXISTS",
		CategoryConflict,
		http.StatusConflict,
		"User already exists",
	)

	ErrNoSuchUser = NewDomainError(
		"NO_SUCH_USER",
		CategoryNotFound,
		http.StatusNotFound,
		"No such user exists",
	)

	ErrNoSuchPost = NewDomainError(
		"NO_SUCH_POST",
		CategoryNotFound,
		http.StatusNotFound,
		"No such post exists",
	)

	ErrIncorrectCredentials = NewDomainError(
		"INCORRECT_CREDENTIALS",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"Incorrect username or password",
	)

	ErrAuthenticationRequired = NewDomainError(
		"AUTHENTICATION_REQUIRED",
		CategoryAuthentication,
		http.StatusUnauthorized,
		"You must be logged in to perform this action",
	)

	ErrInternal = NewDomainError(
		"INTERNAL_ERROR",
		CategoryInternal,
		http.StatusInternalServerError,
		"Something went wrong",
	)
)
