package errors

import (
	"errors"
	"fmt"
	"time"
)

// Error types for the descriptor reference search
type ErrorType string

const (
	// Input errors
	ErrorTypeDescriptor ErrorType = "descriptor"
	ErrorTypeManifest   ErrorType = "manifest"
	ErrorTypeParse      ErrorType = "parse"

	// Query errors
	ErrorTypeSearch   ErrorType = "search"
	ErrorTypeCanceled ErrorType = "canceled"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// ErrCanceled is matched by every error produced when a search is canceled.
var ErrCanceled = errors.New("operation canceled")

// ErrNotBundle is returned for locations without an OSGi bundle manifest.
var ErrNotBundle = errors.New("not an OSGi bundle")

// DescriptorError represents a component descriptor that could not be loaded
type DescriptorError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewDescriptorError creates a new descriptor error
func NewDescriptorError(op, path string, err error) *DescriptorError {
	return &DescriptorError{
		Type:       ErrorTypeDescriptor,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *DescriptorError) Error() string {
	return fmt.Sprintf("descriptor %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *DescriptorError) Unwrap() error {
	return e.Underlying
}

// ManifestError represents a bundle manifest that could not be read
type ManifestError struct {
	Type       ErrorType
	Location   string
	Underlying error
	Timestamp  time.Time
}

// NewManifestError creates a new manifest error
func NewManifestError(location string, err error) *ManifestError {
	return &ManifestError{
		Type:       ErrorTypeManifest,
		Location:   location,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest of %s: %v", e.Location, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ManifestError) Unwrap() error {
	return e.Underlying
}

// ParseError represents a Java source file that could not be parsed
type ParseError struct {
	Type       ErrorType
	FilePath   string
	Line       int
	Column     int
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error
func NewParseError(path string, line, column int, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		FilePath:   path,
		Line:       line,
		Column:     column,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s:%d:%d: %v", e.FilePath, e.Line, e.Column, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// SearchError represents an invalid search request
type SearchError struct {
	Type       ErrorType
	Pattern    string
	Underlying error
	Timestamp  time.Time
}

// NewSearchError creates a new search error
func NewSearchError(pattern string, err error) *SearchError {
	return &SearchError{
		Type:       ErrorTypeSearch,
		Pattern:    pattern,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *SearchError) Error() string {
	return fmt.Sprintf("search failed for pattern %q: %v", e.Pattern, e.Underlying)
}

// Unwrap returns the underlying error
func (e *SearchError) Unwrap() error {
	return e.Underlying
}

// CanceledError reports where a search stopped after cancellation.
// It matches ErrCanceled and the context error that caused it.
type CanceledError struct {
	Type      ErrorType
	Stage     string
	Cause     error
	Timestamp time.Time
}

// NewCanceledError creates a new cancellation error
func NewCanceledError(stage string, cause error) *CanceledError {
	return &CanceledError{
		Type:      ErrorTypeCanceled,
		Stage:     stage,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *CanceledError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("canceled during %s", e.Stage)
	}
	return fmt.Sprintf("canceled during %s: %v", e.Stage, e.Cause)
}

// Unwrap returns ErrCanceled and the cause
func (e *CanceledError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrCanceled}
	}
	return []error{ErrCanceled, e.Cause}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// ErrorOrNil returns nil when no errors were collected
func (e *MultiError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// IsCanceled reports whether err stems from a canceled search.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// IsNotBundle reports whether err was returned for a location that is not
// an OSGi bundle.
func IsNotBundle(err error) bool {
	return errors.Is(err, ErrNotBundle)
}
