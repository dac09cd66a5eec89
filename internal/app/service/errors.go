package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials   = errors.New("Invalid email or password")
	ErrEmailAlreadyExists   = errors.New("Email already registered")
	ErrNotAuthenticated     = errors.New("Not authenticated")
	ErrCandidateNotFound    = errors.New("Candidate not found")
	ErrRequestNotFound      = errors.New("Request not found")
	ErrCompanyNotFound      = errors.New("Company not found")
	ErrOrderNotFound        = errors.New("Order not found")
	ErrInvalidTransition    = errors.New("Invalid status transition")
	ErrRejectionReason      = errors.New("Rejection reason is required")
	ErrReceiptNotAvailable  = errors.New("Receipt not available")
	ErrForbidden            = errors.New("Access denied")
	ErrInvalidPaymentStatus = errors.New("Payment status must be PAID or FAILED")
)

// ValidationError carries one message per offending input field
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "Validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}
