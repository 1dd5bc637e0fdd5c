package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAuthentication     = errors.New("authentication failed")
	ErrValidation         = errors.New("validation failed")
	ErrRequest            = errors.New("request failed")
	ErrFileNotFound       = errors.New("file not found")
	ErrIO                 = errors.New("io error")
	ErrMissingAccessToken = errors.New("token response missing access_token")
	ErrSecretNotFound     = errors.New("secret not found")
)

// StatusError reports a non-success HTTP status. Kind is one of
// ErrAuthentication, ErrValidation or ErrRequest.
type StatusError struct {
	Kind       error
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s with status code: %d. Response: %s", e.Op, e.describe(), e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return e.Kind
}

func (e *StatusError) describe() string {
	switch {
	case errors.Is(e.Kind, ErrAuthentication):
		return "authentication failed"
	case errors.Is(e.Kind, ErrValidation) && e.StatusCode == 413:
		return "file too large"
	case errors.Is(e.Kind, ErrValidation):
		return "validation failed"
	default:
		return "request failed"
	}
}

// TransportError wraps a network-level failure: refused connection,
// timeout, DNS or TLS errors. It matches ErrRequest.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: request error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrRequest, e.Err}
}

// FileError reports a local file problem. Kind is ErrFileNotFound or ErrIO.
type FileError struct {
	Kind error
	Path string
	Err  error
}

func (e *FileError) Error() string {
	if errors.Is(e.Kind, ErrFileNotFound) {
		return fmt.Sprintf("csv file not found: %s", e.Path)
	}
	if e.Err == nil {
		return fmt.Sprintf("io error while handling file %s", e.Path)
	}
	return fmt.Sprintf("io error while handling file %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// StatusCode returns the HTTP status carried by err, or 0 if it has none.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}
