package errdefs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateName         = errors.New("duplicate name")
	ErrInvalidName           = errors.New("invalid name")
	ErrUnknownPassType       = errors.New("unknown pass type")
	ErrInvalidConfig         = errors.New("invalid config")
	ErrPassLibraryNotFound   = errors.New("pass library not found")
	ErrUnknownPass           = errors.New("unknown pass")
	ErrUnknownPort           = errors.New("unknown port")
	ErrPortDirectionMismatch = errors.New("port direction mismatch")
	ErrPortAlreadyConnected  = errors.New("port already connected")

	ErrUnsatisfiedInput = errors.New("unsatisfied input")
	ErrPortTypeMismatch = errors.New("port type mismatch")
	ErrCyclicDependency = errors.New("cyclic dependency")

	ErrPassExecutionFailed = errors.New("pass execution failed")
	ErrStalePlan           = errors.New("stale plan")
	ErrNotCompiled         = errors.New("graph not compiled")
	ErrFrameInFlight       = errors.New("frame in flight")
	ErrNoExecutionYet      = errors.New("no execution yet")
	ErrNotFound            = errors.New("not found")
)

// Error is the concrete error value for every kind above.
type Error struct {
	Kind  error
	Pass  string
	Port  string
	Ref   string   // the raw reference string as the caller wrote it, if any
	Cycle []string // pass names forming a cycle, first == last
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())

	var subject []string
	if e.Pass != "" {
		subject = append(subject, fmt.Sprintf("pass %q", e.Pass))
	}
	if e.Port != "" {
		subject = append(subject, fmt.Sprintf("port %q", e.Port))
	}
	if e.Ref != "" && e.Pass == "" {
		subject = append(subject, fmt.Sprintf("reference %q", e.Ref))
	}
	if len(subject) > 0 {
		sb.WriteString(": ")
		sb.WriteString(strings.Join(subject, ", "))
	}
	if len(e.Cycle) > 0 {
		sb.WriteString(": ")
		sb.WriteString(strings.Join(e.Cycle, " -> "))
	}
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Is matches the error kind, so errors.Is(err, ErrUnknownPort) works on
// an *Error without unwrapping to the cause.
func (e *Error) Is(target error) bool {
	return e != nil && e.Kind == target
}

// Unwrap returns the cause, which for PassExecutionFailed is the error the
// pass returned, forwarded verbatim.
func (e *Error) Unwrap() error { return e.Cause }

// New returns an *Error of the given kind with a formatted message.
func New(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// ForPass returns an *Error of the given kind about a pass.
func ForPass(kind error, pass string) *Error {
	return &Error{Kind: kind, Pass: pass}
}

// ForPort returns an *Error of the given kind about a port of a pass.
func ForPort(kind error, pass, port string) *Error {
	return &Error{Kind: kind, Pass: pass, Port: port}
}

// PassFailed wraps a pass's own error into PassExecutionFailed.
func PassFailed(pass string, cause error) *Error {
	return &Error{Kind: ErrPassExecutionFailed, Pass: pass, Cause: cause}
}

// Cyclic returns a CyclicDependency error naming the cycle.
func Cyclic(cycle []string) *Error {
	return &Error{Kind: ErrCyclicDependency, Cycle: cycle}
}

// WithMsg sets the message and returns the receiver, for chaining.
func (e *Error) WithMsg(format string, args ...any) *Error {
	e.Msg = fmt.Sprintf(format, args...)
	return e
}

// WithRef records the raw reference string and returns the receiver.
func (e *Error) WithRef(ref string) *Error {
	e.Ref = ref
	return e
}

// WithCause sets the cause and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
