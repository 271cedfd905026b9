// Package errors provides domain-specific error types and sentinel errors
// shared by the catalog loader and the chat transports.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrCatalogUnavailable indicates the catalog could not be loaded and the
	// process is serving from an empty stand-in.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrMissingColumn indicates the catalog header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")

	// ErrUnsupportedFormat indicates the catalog file extension is not recognised.
	ErrUnsupportedFormat = errors.New("unsupported catalog format")
)

// CatalogError describes why a catalog source could not be read.
type CatalogError struct {
	Source string
	Err    error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.Source, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrCatalogUnavailable) match any catalog failure.
func (e *CatalogError) Is(target error) bool {
	return target == ErrCatalogUnavailable
}

// NewCatalogError creates a new catalog error.
func NewCatalogError(source string, err error) *CatalogError {
	return &CatalogError{Source: source, Err: err}
}

// SendError represents an outbound message the transport rejected.
type SendError struct {
	Platform string // "telegram" or "line"
	Kind     string // payload kind: "plain", "text", "photo"
	Err      error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send %s message via %s: %v", e.Kind, e.Platform, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// NewSendError creates a new send error.
func NewSendError(platform, kind string, err error) *SendError {
	return &SendError{Platform: platform, Kind: kind, Err: err}
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsCatalogUnavailable reports whether err describes a failed catalog load.
func IsCatalogUnavailable(err error) bool {
	return errors.Is(err, ErrCatalogUnavailable)
}
