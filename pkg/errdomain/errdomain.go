// Package errdomain defines the error taxonomy surfaced to the CLI layer.
package errdomain

import (
	"fmt"

	"github.com/go-errors/errors"
	"golang.org/x/xerrors"
)

// Category is the stable classification attached to every error the
// orchestrator reports. The CLI layer formats on category, never on message
// text.
type Category int

const (
	// ConfigError covers malformed manifests, invalid names, duplicate
	// services, dependency cycles, unresolved include paths, invalid
	// durations.
	ConfigError Category = iota
	// EngineError covers engine-unavailable, image-pull-failed, and
	// container-creation-rejected conditions.
	EngineError
	// StartupFailed covers exhausted health-check retry budgets.
	StartupFailed
	// UserAbort covers SIGINT during an interruptible operation.
	UserAbort
	// MissingContainer covers ensure_running called against a
	// NotCreated service.
	MissingContainer
)

func (c Category) String() string {
	switch c {
	case ConfigError:
		return "ConfigError"
	case EngineError:
		return "EngineError"
	case StartupFailed:
		return "StartupFailed"
	case UserAbort:
		return "UserAbort"
	case MissingContainer:
		return "MissingContainer"
	default:
		return "UnknownError"
	}
}

// Error is the single error type that crosses package boundaries in devobox.
// It carries a Category for programmatic dispatch, a human Message, and
// optionally the Stderr text captured from a failed engine invocation. Kind
// holds the finer-grained engine error kind (NotFound, AlreadyExists,
// Timeout, EngineUnavailable, Other) when Category is EngineError; it is
// empty for every other category.
type Error struct {
	Category Category
	Kind     string
	Message  string
	Stderr   string
	frame    xerrors.Frame
}

// New builds a categorized error, capturing the call frame the way the
// teacher's ComplexError does.
func New(category Category, message string) *Error {
	return &Error{Category: category, Message: message, frame: xerrors.Caller(1)}
}

// Newf is New with fmt.Sprintf-style formatting of message.
func Newf(category Category, format string, args ...interface{}) *Error {
	return &Error{Category: category, Message: fmt.Sprintf(format, args...), frame: xerrors.Caller(1)}
}

// NewEngine builds an EngineError of the given kind, as returned by every
// Runtime operation.
func NewEngine(kind, message, stderr string) *Error {
	return &Error{Category: EngineError, Kind: kind, Message: message, Stderr: stderr, frame: xerrors.Caller(1)}
}

// HasKind reports whether err is an EngineError of the given kind.
func HasKind(err error, kind string) bool {
	var de *Error
	if xerrors.As(err, &de) {
		return de.Category == EngineError && de.Kind == kind
	}
	return false
}

// WithStderr attaches captured engine stderr to a copy of the error.
func (e *Error) WithStderr(stderr string) *Error {
	cp := *e
	cp.Stderr = stderr
	return &cp
}

func (e *Error) FormatError(p xerrors.Printer) error {
	if e.Kind != "" {
		p.Printf("%s[%s]: %s", e.Category, e.Kind, e.Message)
	} else {
		p.Printf("%s: %s", e.Category, e.Message)
	}
	if e.Stderr != "" {
		p.Printf(" (%s)", e.Stderr)
	}
	e.frame.Format(p)
	return nil
}

func (e *Error) Format(f fmt.State, c rune) { xerrors.FormatError(e, f, c) }

func (e *Error) Error() string { return fmt.Sprint(e) }

// Is reports whether err is a *Error of the given category.
func Is(err error, category Category) bool {
	var de *Error
	if xerrors.As(err, &de) {
		return de.Category == category
	}
	return false
}

// Wrap captures a stack trace for an error originating outside this package,
// for dumping under a verbose flag, mirroring the teacher's WrapError.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, 1)
}
