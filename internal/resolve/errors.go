package resolve

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingEndpointInfo is wrapped by an EndpointError for route facts,
	// a handler or a referenced type that could not be found.
	ErrMissingEndpointInfo = errors.New("missing critical endpoint information")
	// ErrNameCollision is wrapped by an EndpointError when a generated
	// component name is already used by a declared type.
	ErrNameCollision = errors.New("component name collision")
)

// EndpointError reports why an endpoint could not be documented.
type EndpointError struct {
	Endpoint string
	Detail   string
	Err      error
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Err, e.Endpoint, e.Detail)
}

func (e *EndpointError) Unwrap() error { return e.Err }

func missing(endpoint, format string, args ...any) error {
	return &EndpointError{Endpoint: endpoint, Detail: fmt.Sprintf(format, args...), Err: ErrMissingEndpointInfo}
}

func collision(endpoint, format string, args ...any) error {
	return &EndpointError{Endpoint: endpoint, Detail: fmt.Sprintf(format, args...), Err: ErrNameCollision}
}
