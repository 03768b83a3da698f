package service

import (
	"errors"

	"taskboard/internal/repository"
)

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// ValidationError rejects malformed input before any storage access.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + " " + e.Message
}

// ErrorKind is the transport independent class of an error.
type ErrorKind string

const (
	KindValidation      ErrorKind = "BAD_REQUEST"
	KindUnauthenticated ErrorKind = "UNAUTHORIZED"
	KindConflict        ErrorKind = "CONFLICT"
	KindInternal        ErrorKind = "INTERNAL_SERVER_ERROR"
)

// Classify maps err onto the error taxonomy; anything unknown is Internal.
func Classify(err error) ErrorKind {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return KindValidation
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidToken):
		return KindUnauthenticated
	case errors.Is(err, repository.ErrEmailTaken):
		return KindConflict
	}
	return KindInternal
}
