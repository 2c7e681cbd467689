package domain

import "errors"

// Domain errors
var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrNoDocument           = errors.New("no document uploaded")
	ErrInvalidFile          = errors.New("invalid file")
	ErrPageNotFound         = errors.New("page not found")
	ErrInvalidPageRange     = errors.New("invalid page range")
	ErrPageOutOfRange       = errors.New("page range beyond document extent")
	ErrUnreadableDocument   = errors.New("document could not be read")
	ErrConversionInProgress = errors.New("conversion already in progress")
	ErrNoResults            = errors.New("no converted pages")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
