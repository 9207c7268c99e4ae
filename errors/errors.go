// Package errors provides the error handling layer for the aiengine HTTP service.
// It includes structured error types, JSON response formatting, request ID tracking,
// and integrated logging with Uber's zap logger.
//
// Two response shapes are produced:
//
//   - Typed envelopes for request-level failures (validation, panics, unknown routes):
//     {"type": "...", "message": "...", "request_id": "...", "details": {...}}
//   - Detail envelopes for document extraction failures on the report route:
//     {"detail": "..."}
//
// Basic usage:
//
//	errors.WriteError(w, errors.NewValidationError(requestID, "Request validation failed", details))
//
//	// Extraction failure on the report route
//	errors.WriteDetail(w, http.StatusInternalServerError, err.Error())
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the categories of errors the service reports to clients.
type ErrorType string

const (
	// ValidationError represents request bodies that are missing fields or carry wrong types
	ValidationError ErrorType = "validation_error"

	// BadRequestError represents bodies that cannot be parsed at all
	BadRequestError ErrorType = "bad_request"

	// InternalError represents unexpected internal server errors
	InternalError ErrorType = "internal_error"

	// ExtractionError represents documents that could not be turned into text
	ExtractionError ErrorType = "extraction_error"

	// ProviderError represents errors from the model provider
	ProviderError ErrorType = "provider_error"

	// NotFoundError represents unknown routes
	NotFoundError ErrorType = "not_found"

	// MethodNotAllowedError represents a known route hit with the wrong method
	MethodNotAllowedError ErrorType = "method_not_allowed"
)

// EngineError is the service's error type. It implements the error interface
// and serializes to the typed JSON envelope, keeping the wrapped cause and the
// HTTP status out of the body.
type EngineError struct {
	// Type categorizes the error for client handling
	Type ErrorType `json:"type"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Code is the HTTP status code (not exposed in JSON)
	Code int `json:"-"`

	// RequestID links the error to a specific request
	RequestID string `json:"request_id"`

	// Details contains additional error context
	Details map[string]interface{} `json:"details,omitempty"`

	err error
}

// Error combines the error type, message, and underlying error (if any).
func (e *EngineError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *EngineError) Unwrap() error {
	return e.err
}

// Is matches on error type only, so errors.Is(err, &EngineError{Type: ValidationError})
// works regardless of message or request ID.
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WriteError formats and writes an EngineError to an http.ResponseWriter.
func WriteError(w http.ResponseWriter, err *EngineError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
}

// ErrorResponse mirrors the JSON shape written for an EngineError and is
// what clients decode.
type ErrorResponse struct {
	Type      ErrorType              `json:"type"`
	Message   string                 `json:"message"`
	RequestID string                 `json:"request_id"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// As and Is forward to the standard library so callers importing this
// package under its default name need no second import.
func As(err error, target interface{}) bool { return errors.As(err, target) }

func Is(err, target error) bool { return errors.Is(err, target) }

// DetailResponse is the {"detail": "..."} envelope returned when a document
// cannot be processed.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// WriteDetail writes a DetailResponse with the given status code.
func WriteDetail(w http.ResponseWriter, code int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(DetailResponse{Detail: detail})
}
