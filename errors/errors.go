package errors

import (
	"errors"
	"fmt"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorTransport represents network-level failures on the push connection
	ErrorTransport ErrorClass = iota
	// ErrorProtocol represents malformed or unexpected pub/sub protocol replies
	ErrorProtocol
	// ErrorFetch represents failed REST calls underlying a pagination walk
	ErrorFetch
	// ErrorInvalid represents errors due to invalid input or configuration
	ErrorInvalid
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransport:
		return "transport"
	case ErrorProtocol:
		return "protocol"
	case ErrorFetch:
		return "fetch"
	case ErrorInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Push connection errors
	ErrConnectionClosed = errors.New("connection closed")
	ErrNotConnected     = errors.New("not connected")
	ErrAlreadyConnected = errors.New("already connected")

	// Protocol errors
	ErrNoSessionID      = errors.New("no session id in handshake reply")
	ErrSubscribeFailed  = errors.New("subscribe rejected by server")
	ErrHandshakeFailed  = errors.New("handshake rejected by server")
	ErrUnexpectedReply  = errors.New("unexpected protocol reply")
	ErrStreamTerminated = errors.New("event stream terminated")

	// REST errors
	ErrRequestFailed = errors.New("request failed")
	ErrEmptyResponse = errors.New("empty response body")
	ErrNotFound      = errors.New("resource not found")
	ErrUnauthorized  = errors.New("unauthorized")

	// Configuration errors
	ErrMissingToken  = errors.New("missing access token")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// classOf returns the class of a classified error, or ok=false
func classOf(err error) (ErrorClass, bool) {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class, true
	}
	return 0, false
}

// IsTransport checks if an error originated in the push transport layer
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	if class, ok := classOf(err); ok {
		return class == ErrorTransport
	}
	return errors.Is(err, ErrConnectionClosed) || errors.Is(err, ErrNotConnected)
}

// IsProtocol checks if an error is a pub/sub protocol violation
func IsProtocol(err error) bool {
	if err == nil {
		return false
	}
	if class, ok := classOf(err); ok {
		return class == ErrorProtocol
	}
	return errors.Is(err, ErrNoSessionID) ||
		errors.Is(err, ErrSubscribeFailed) ||
		errors.Is(err, ErrHandshakeFailed) ||
		errors.Is(err, ErrUnexpectedReply)
}

// IsFetch checks if an error is a failed REST fetch
func IsFetch(err error) bool {
	if err == nil {
		return false
	}
	if class, ok := classOf(err); ok {
		return class == ErrorFetch
	}
	return errors.Is(err, ErrRequestFailed)
}

// IsInvalid checks if an error is due to invalid input or configuration
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}
	if class, ok := classOf(err); ok {
		return class == ErrorInvalid
	}
	return errors.Is(err, ErrInvalidConfig) || errors.Is(err, ErrMissingToken)
}

// Classify returns the error class for an error. Unclassified errors
// default to ErrorFetch since most surface from REST calls.
func Classify(err error) ErrorClass {
	if class, ok := classOf(err); ok {
		return class
	}
	switch {
	case IsTransport(err):
		return ErrorTransport
	case IsProtocol(err):
		return ErrorProtocol
	case IsInvalid(err):
		return ErrorInvalid
	default:
		return ErrorFetch
	}
}

// newClassified creates a new classified error.
// Internal helper - use the Wrap* variants instead.
func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapTransport wraps an error as a transport failure with context
func WrapTransport(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorTransport, wrappedErr, component, method, wrappedErr.Error())
}

// WrapProtocol wraps an error as a protocol violation with context
func WrapProtocol(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorProtocol, wrappedErr, component, method, wrappedErr.Error())
}

// WrapFetch wraps an error as a failed fetch with context
func WrapFetch(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorFetch, wrappedErr, component, method, wrappedErr.Error())
}

// WrapInvalid wraps an error as invalid input with context
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorInvalid, wrappedErr, component, method, wrappedErr.Error())
}
