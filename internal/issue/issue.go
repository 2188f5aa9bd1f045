// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

// Kind categorizes a fatal pipeline error.
type Kind int

const (
	// KindUnknown is the zero value; errors of this kind did not originate
	// from the pipeline's own classification.
	KindUnknown Kind = iota

	// KindConfiguration marks invalid or unreadable build inputs. These are
	// detected before any staging area is created, so no partial artifact
	// can exist when one is reported.
	KindConfiguration

	// KindDependencyResolution marks a fatal failure of the external role
	// resolver. The staging area may be partially populated when one is
	// reported; guaranteed cleanup still removes it.
	KindDependencyResolution
)

// String returns a short label for the kind, used in user-facing messages.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration error"
	case KindDependencyResolution:
		return "dependency resolution error"
	default:
		return "error"
	}
}

type (
	// Error is a classified pipeline error. It carries the operation that
	// failed, an optional resource (file or path) involved, and the
	// underlying cause.
	Error struct {
		// Kind classifies the failure for exit-code mapping.
		Kind Kind

		// Operation describes what was being attempted
		// (e.g. "resolve build configuration", "install galaxy roles").
		Operation string

		// Resource identifies the file, path, or entity involved (optional).
		Resource string

		// Cause is the underlying error, if any.
		Cause error
	}
)

// Error implements the error interface.
func (e *Error) Error() string {
	var msg strings.Builder

	msg.WriteString(e.Kind.String())
	msg.WriteString(": ")
	msg.WriteString(e.Operation)

	if e.Resource != "" {
		msg.WriteString(": ")
		msg.WriteString(e.Resource)
	}

	if e.Cause != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Cause.Error())
	}

	return msg.String()
}

// Unwrap returns the underlying cause for use with errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Configuration creates a KindConfiguration error for the given operation
// and resource. The format verb rules of fmt apply to args.
func Configuration(operation, resource string, args ...any) *Error {
	return &Error{
		Kind:      KindConfiguration,
		Operation: fmt.Sprintf(operation, args...),
		Resource:  resource,
	}
}

// DependencyResolution wraps a resolver failure as KindDependencyResolution.
func DependencyResolution(err error, operation string) *Error {
	return &Error{
		Kind:      KindDependencyResolution,
		Operation: operation,
		Cause:     err,
	}
}

// WrapConfiguration wraps an underlying error as KindConfiguration.
// Returns nil when err is nil.
func WrapConfiguration(err error, operation, resource string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind:      KindConfiguration,
		Operation: operation,
		Resource:  resource,
		Cause:     err,
	}
}

// KindOf extracts the Kind from an error chain. Errors that do not contain
// an *issue.Error report KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
