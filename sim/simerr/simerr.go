// Package simerr provides the structured error used across the component runtime.
//
// Every error records the function, file and line where it was raised. Errors that cross
// a layer boundary are rethrown: the new error is stamped at the rethrow site and its
// message is the new message followed by " - " and the original message, so the root
// cause stays visible in the text without keeping a stack.
//
// Failure kinds are distinguished with errors.Is:
//
//	if errors.Is(err, simerr.UnknownVariable) { ... }
package simerr

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Kind classifies a failure. Kind implements error so it can be used as an errors.Is target.
type Kind int

const (
	Generic Kind = iota
	UnknownVariable
	UnknownMessage
	InvalidValue
	InvalidDate
	PreconditionError
	TimeStepError
	UnitMismatch
	LookupError
	LifecycleError
	OrderingError
	ConfigError
)

var kindNames = map[Kind]string{
	Generic:           "Generic",
	UnknownVariable:   "UnknownVariable",
	UnknownMessage:    "UnknownMessage",
	InvalidValue:      "InvalidValue",
	InvalidDate:       "InvalidDate",
	PreconditionError: "PreconditionError",
	TimeStepError:     "TimeStepError",
	UnitMismatch:      "UnitMismatch",
	LookupError:       "LookupError",
	LifecycleError:    "LifecycleError",
	OrderingError:     "OrderingError",
	ConfigError:       "ConfigError",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) Error() string { return k.String() }

// Error is a failure record stamped with its raise site.
type Error struct {
	Kind     Kind
	Message  string
	Function string
	File     string // basename of FullPath
	FullPath string
	Line     int
	// Chain holds the messages of the errors this one was rethrown over, oldest first.
	Chain []string

	cause error
}

func (e *Error) Error() string { return e.Message }

// Unwrap returns the error this one was rethrown over, if any.
func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is this error's Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && e.Kind == k
}

// Report renders the full record for top-level diagnostics.
func (e *Error) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "msg:  \t%s\n", e.Message)
	fmt.Fprintf(&b, "kind: \t%s\n", e.Kind)
	fmt.Fprintf(&b, "func: \t%s\n", e.Function)
	fmt.Fprintf(&b, "file: \t%s\n", e.File)
	fmt.Fprintf(&b, "ffile:\t%s\n", e.FullPath)
	fmt.Fprintf(&b, "line: \t%d\n", e.Line)
	for i, m := range e.Chain {
		fmt.Fprintf(&b, "cause[%d]:\t%s\n", i, m)
	}
	return b.String()
}

// New returns an error of the given kind stamped with the caller's location.
func New(kind Kind, format string, args ...any) *Error {
	return newAt(2, kind, fmt.Sprintf(format, args...))
}

// Assert returns nil when cond holds, otherwise an "Assertion failed" error stamped
// with the caller's location.
func Assert(cond bool, kind Kind, msg string) error {
	if cond {
		return nil
	}
	return newAt(2, kind, "Assertion failed: "+msg)
}

// Rethrow wraps orig with msg at the caller's location. The kind of the nearest
// *Error in orig's chain is kept; plain errors become Generic.
func Rethrow(orig error, msg string) *Error {
	kind := Generic
	var se *Error
	if errors.As(orig, &se) {
		kind = se.Kind
	}
	return rethrowAt(2, kind, orig, msg)
}

// RethrowAs is Rethrow with an explicit kind.
func RethrowAs(kind Kind, orig error, msg string) *Error {
	return rethrowAt(2, kind, orig, msg)
}

// Report renders err as a full record if it is (or wraps) an *Error, else its text.
func Report(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Report()
	}
	return "msg:  \t" + err.Error() + "\n"
}

// ExtractFilename returns the part of path after the last '/' or, failing that, the
// last '\'. A path without separators is returned whole.
func ExtractFilename(path string) string {
	pos := strings.LastIndexByte(path, '/')
	if pos < 0 {
		pos = strings.LastIndexByte(path, '\\')
	}
	return path[pos+1:]
}

func rethrowAt(skip int, kind Kind, orig error, msg string) *Error {
	if orig == nil {
		return newAt(skip+1, kind, msg)
	}
	e := newAt(skip+1, kind, msg+" - "+orig.Error())
	var se *Error
	if errors.As(orig, &se) {
		e.Chain = append(append([]string{}, se.Chain...), se.Message)
	} else {
		e.Chain = []string{orig.Error()}
	}
	e.cause = orig
	return e
}

func newAt(skip int, kind Kind, msg string) *Error {
	e := &Error{Kind: kind, Message: msg}
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return e
	}
	e.FullPath = file
	e.File = ExtractFilename(file)
	e.Line = line
	if fn := runtime.FuncForPC(pc); fn != nil {
		e.Function = shortFuncName(fn.Name())
	}
	return e
}

// shortFuncName trims the import path: "a/b/pkg.(*T).M" -> "pkg.(*T).M".
func shortFuncName(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}
