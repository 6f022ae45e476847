package trans2

import (
	"errors"
	"fmt"

	"github.com/marmos91/dittocifs/internal/smb/types"
)

// ErrorCode classifies a TRANS2 failure.
type ErrorCode int

const (
	// ErrTransport indicates a send or receive did not complete.
	ErrTransport ErrorCode = iota + 1

	// ErrAllocation indicates a response declared a buffer larger than the
	// client is willing to allocate.
	ErrAllocation

	// ErrMalformed indicates a response that is too short or contradicts
	// itself, e.g. a frame overrunning the declared transaction total.
	ErrMalformed

	// ErrTextDecode indicates a name, pattern or path that could not be
	// converted to or from UTF-16LE. It has malformed-response semantics.
	ErrTextDecode

	// ErrStatus indicates the server answered with a failing status code.
	ErrStatus

	// ErrNotSupported indicates an NT-level query on a session without the
	// NT feature set.
	ErrNotSupported
)

// String returns a human-readable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrTransport:
		return "Transport"
	case ErrAllocation:
		return "Allocation"
	case ErrMalformed:
		return "Malformed"
	case ErrTextDecode:
		return "TextDecode"
	case ErrStatus:
		return "Status"
	case ErrNotSupported:
		return "NotSupported"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// Error is returned by every Client operation.
type Error struct {
	Code ErrorCode

	// Op is the failing operation: FIND_FIRST2, FIND_NEXT2,
	// QUERY_PATH_INFORMATION or QUERY_INFORMATION.
	Op string

	// Path is the pattern or path the operation was issued for.
	Path string

	// Status is set for ErrStatus.
	Status types.Status

	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s", e.Op, e.Code)
	if e.Path != "" {
		msg += fmt.Sprintf(" (path: %s)", e.Path)
	}
	if e.Code == ErrStatus {
		msg += ": " + e.Status.String()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, op, path string, err error) *Error {
	return &Error{Code: code, Op: op, Path: path, Err: err}
}

func newTransportError(op, path string, err error) *Error {
	return newError(ErrTransport, op, path, err)
}

func newMalformedError(op, path string, format string, args ...any) *Error {
	return newError(ErrMalformed, op, path, fmt.Errorf(format, args...))
}

func newTextDecodeError(op, path string, err error) *Error {
	return newError(ErrTextDecode, op, path, err)
}

func newStatusError(op, path string, status types.Status) *Error {
	return &Error{Code: ErrStatus, Op: op, Path: path, Status: status}
}

func newNotSupportedError(op, path string) *Error {
	return newError(ErrNotSupported, op, path, errors.New("session lacks NT SMB support"))
}

func codeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// IsMalformed reports whether err is a malformed-response failure. Text
// decode failures count as malformed.
func IsMalformed(err error) bool {
	c := codeOf(err)
	return c == ErrMalformed || c == ErrTextDecode
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool { return codeOf(err) == ErrTransport }

// IsAllocation reports whether err is an allocation failure.
func IsAllocation(err error) bool { return codeOf(err) == ErrAllocation }

// IsNotSupported reports whether err was caused by a missing session capability.
func IsNotSupported(err error) bool { return codeOf(err) == ErrNotSupported }

// IsStatus reports whether err carries a failing server status.
func IsStatus(err error) bool { return codeOf(err) == ErrStatus }

// StatusOf returns the server status carried by err, if any.
func StatusOf(err error) (types.Status, bool) {
	var e *Error
	if errors.As(err, &e) && e.Code == ErrStatus {
		return e.Status, true
	}
	return 0, false
}
