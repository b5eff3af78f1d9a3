package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidServiceData is returned when a service document has no paths.
	ErrInvalidServiceData = errors.New("invalid service data")
	// ErrNoAvailableService is returned when every candidate service failed.
	ErrNoAvailableService = errors.New("no available service")
	// ErrCacheNotFound is returned when a read expects a warmed cache entry.
	ErrCacheNotFound = errors.New("cache entry not found")
	// ErrServiceDisabled is returned when selecting a service marked unavailable.
	ErrServiceDisabled = errors.New("service is disabled")
	// ErrServiceNotFound is returned for a URL that is not part of the service list.
	ErrServiceNotFound = errors.New("service not found")
	// ErrPayloadTooLarge is returned when a response body exceeds the fetch limit.
	ErrPayloadTooLarge = errors.New("payload exceeds limit")
)

// FetchError reports a failed document retrieval.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseErrorCode classifies payload decoding failures.
type ParseErrorCode string

const (
	CodeEmptyPayload    ParseErrorCode = "EMPTY_PAYLOAD"
	CodeInvalidDocument ParseErrorCode = "INVALID_DOCUMENT"
	CodeInvalidConfig   ParseErrorCode = "INVALID_CONFIG"
)

// ParseError reports a payload that could not be decoded.
type ParseError struct {
	Code    ParseErrorCode
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error [%s]: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("parse error [%s]: %s", e.Code, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
