package service

import (
	"errors"

	"NetIntelAPI/internal/monitor"
)

var (
	ErrStoreUnavailable    = errors.New("database not available")
	ErrNotFound            = errors.New("not found")
	ErrEmbedderUnavailable = errors.New("embedding provider not configured")
	ErrAdvisorUnavailable  = errors.New("guidance provider not configured")

	ErrInvalidStatus     = monitor.ErrInvalidStatus
	ErrInvalidTransition = monitor.ErrInvalidTransition
)

// ValidationError is a client input problem; Message is safe to return verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func missingField(field string) error {
	return invalid(field, "Missing required field: "+field)
}
