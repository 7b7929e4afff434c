// Package failure defines the typed failure taxonomy shared by every stage of
// the preview pipeline.
//
// Each stage returns an *Error carrying a Kind. Callers match kinds with
// errors.Is against the exported sentinels, or extract the kind with KindOf:
//
//	if errors.Is(err, failure.ConverterUnconfigured) {
//	    // no converter selected for this format
//	}
//
// None of these failures is fatal; all of them are local to one preview request.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies why a stage of the pipeline did not produce a result.
type Kind string

const (
	// KindNone is reported for a nil error.
	KindNone Kind = ""

	// KindClassifyMiss means no matching region was found. It is a normal outcome.
	KindClassifyMiss Kind = "classify_miss"

	// KindParse means malformed colour or path syntax.
	KindParse Kind = "parse_failure"

	// KindResolve means the reference could not be turned into a resource.
	KindResolve Kind = "resolve_failure"

	// KindFetch means a network error, timeout, or non-2xx response.
	KindFetch Kind = "fetch_failure"

	// KindConverterUnconfigured means the format needs a converter but none is selected.
	KindConverterUnconfigured Kind = "converter_unconfigured"

	// KindConverterInvocation means the converter is missing, exited non-zero, or timed out.
	KindConverterInvocation Kind = "converter_invocation_failure"

	// KindDecode means bytes were received but are not a valid image.
	KindDecode Kind = "decode_failure"

	// KindDisabled means the preview type is switched off for passive hover.
	KindDisabled Kind = "disabled"
)

// Sentinels for errors.Is matching. An *Error matches the sentinel of its Kind.
var (
	ClassifyMiss          = &Error{Kind: KindClassifyMiss}
	Parse                 = &Error{Kind: KindParse}
	Resolve               = &Error{Kind: KindResolve}
	Fetch                 = &Error{Kind: KindFetch}
	ConverterUnconfigured = &Error{Kind: KindConverterUnconfigured}
	ConverterInvocation   = &Error{Kind: KindConverterInvocation}
	Decode                = &Error{Kind: KindDecode}
	Disabled              = &Error{Kind: KindDisabled}
)

// Error is a failure of one pipeline stage.
type Error struct {
	Kind Kind
	Op   string // short description of the operation, e.g. "parse colour"
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return string(e.Kind)
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	case e.Op == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New returns a failure of the given kind with a formatted operation description.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: fmt.Sprintf(format, args...)}
}

// Wrap returns a failure of the given kind wrapping err. A nil err yields nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of the outermost *Error in err's chain.
// Errors outside the taxonomy are reported as KindResolve.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindResolve
}
