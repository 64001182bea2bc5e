package playback

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindDeviceNotFound    Kind = "DeviceNotFound"
	KindInvalidPayload    Kind = "InvalidPayload"
	KindNotPaused         Kind = "NotPaused"
	KindProtocolViolation Kind = "ProtocolViolation"
	KindTransportFailure  Kind = "TransportFailure"
	KindContentFailure    Kind = "ContentFailure"
)

// Error is the structured failure returned across the controller boundary.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

var (
	ErrDeviceNotFound   = &Error{Kind: KindDeviceNotFound}
	ErrInvalidPayload   = &Error{Kind: KindInvalidPayload}
	ErrNotPaused        = &Error{Kind: KindNotPaused}
	ErrTransportFailure = &Error{Kind: KindTransportFailure}
)

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the package-level sentinels
// work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

func InvalidPayload(format string, args ...any) *Error {
	return newError(KindInvalidPayload, format, args...)
}
