package platform

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures of the window-system binding layer.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindInvalidQuery means class and title were both empty.
	KindInvalidQuery
	// KindNotFound means no live window matched a query.
	KindNotFound
	// KindWindowNotExist means a handle no longer refers to a live window.
	KindWindowNotExist
	// KindPlatformCallFailed means an OS call reported failure.
	KindPlatformCallFailed
	// KindUnsupported means the operation has no implementation on this OS.
	KindUnsupported
)

var kindNames = map[ErrorKind]string{
	KindUnknown:            "unknown",
	KindInvalidQuery:       "invalid_query",
	KindNotFound:           "not_found",
	KindWindowNotExist:     "window_not_exist",
	KindPlatformCallFailed: "platform_call_failed",
	KindUnsupported:        "unsupported",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseErrorKind is the inverse of ErrorKind.String. Unrecognized names map to KindUnknown.
func ParseErrorKind(s string) ErrorKind {
	for k, name := range kindNames {
		if name == s {
			return k
		}
	}
	return KindUnknown
}

// Error is the single error type returned by every backend operation.
type Error struct {
	Kind   ErrorKind
	Op     string // OS call or backend operation, e.g. "GetWindowRect"
	Class  string
	Title  string
	Handle Handle
	Code   int64 // OS error code when one is available
	Err    error
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrInvalidQuery       = &Error{Kind: KindInvalidQuery}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrWindowNotExist     = &Error{Kind: KindWindowNotExist}
	ErrPlatformCallFailed = &Error{Kind: KindPlatformCallFailed}
	ErrUnsupported        = &Error{Kind: KindUnsupported}
)

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case KindInvalidQuery:
		if e.Err != nil {
			if e.Op != "" {
				return fmt.Sprintf("invalid %s request: %v", e.Op, e.Err)
			}
			return e.Err.Error()
		}
		return "window class and title are both empty"
	case KindNotFound:
		return fmt.Sprintf("cannot find window class: %q, window title: %q", e.Class, e.Title)
	case KindWindowNotExist:
		return fmt.Sprintf("window does not exist: %s", e.Handle)
	case KindPlatformCallFailed:
		msg := fmt.Sprintf("%s failed", e.Op)
		if e.Handle != 0 {
			msg += fmt.Sprintf(" for window %s", e.Handle)
		}
		if e.Code != 0 {
			msg += fmt.Sprintf(" (code %d)", e.Code)
		}
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
		return msg
	case KindUnsupported:
		if e.Op != "" {
			return fmt.Sprintf("%s is not supported on this platform", e.Op)
		}
		return "window management is not supported on this platform"
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "window operation failed"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinel errors by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

func invalidQuery() error {
	return &Error{Kind: KindInvalidQuery}
}

// InvalidArgument builds a KindInvalidQuery error for a malformed request to op.
func InvalidArgument(op string, err error) error {
	return &Error{Kind: KindInvalidQuery, Op: op, Err: err}
}

// NotFound builds a KindNotFound error for the given query.
func NotFound(class, title string) error {
	return &Error{Kind: KindNotFound, Class: class, Title: title}
}

// WindowNotExist builds a KindWindowNotExist error for h.
func WindowNotExist(h Handle) error {
	return &Error{Kind: KindWindowNotExist, Handle: h}
}

// CallFailed builds a KindPlatformCallFailed error.
func CallFailed(op string, h Handle, code int64, err error) error {
	return &Error{Kind: KindPlatformCallFailed, Op: op, Handle: h, Code: code, Err: err}
}

// Unsupported builds a KindUnsupported error for op.
func Unsupported(op string) error {
	return &Error{Kind: KindUnsupported, Op: op}
}
