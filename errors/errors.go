// Copyright 2026 Vireo Labs, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package errors implements the closed error taxonomy used throughout
// objectio. Every failure raised by a storage backend is mapped into one
// of a fixed set of kinds at the accessor boundary; the rest of the
// system, and callers, branch on kinds rather than backend-native error
// types. Each kind has a fixed retryability, so the retry layer can
// decide whether to re-attempt an operation without inspecting causes.
//
// Errors can be chained, attributing one error to another. Errors should
// be constructed with errors.E, which interprets its arguments according
// to a small set of rules.
package errors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Separator defines the separation string inserted between
// chained errors in error messages.
var Separator = ":\n\t"

// Kind defines the type of error. Kinds are semantically meaningful and
// form a closed set; receivers branch on them to decide how to react
// (e.g., whether an operation should be retried).
type Kind int

const (
	// Unexpected indicates an unclassified error. It is also the kind
	// surfaced when a transient failure cannot be safely retried, such as
	// a partial write over a non-restartable stream.
	Unexpected Kind = iota
	// NotFound indicates a nonexistent object.
	NotFound
	// AlreadyExists indicates that an object already exists.
	AlreadyExists
	// PermissionDenied indicates a permission failure.
	PermissionDenied
	// InvalidPath indicates a path that failed normalization, such as one
	// escaping the backend root.
	InvalidPath
	// InvalidInput indicates that the caller supplied invalid parameters.
	InvalidInput
	// Unsupported indicates an operation absent from the backend's
	// capability set.
	Unsupported
	// RateLimited indicates backend throttling.
	RateLimited
	// Unavailable indicates a transient backend or network failure.
	Unavailable

	maxKind
)

var kinds = map[Kind]string{
	Unexpected:       "unexpected error",
	NotFound:         "object not found",
	AlreadyExists:    "object already exists",
	PermissionDenied: "permission denied",
	InvalidPath:      "invalid path",
	InvalidInput:     "invalid input",
	Unsupported:      "operation not supported",
	RateLimited:      "rate limited",
	Unavailable:      "backend unavailable",
}

// String returns a human-readable explanation of the error kind k.
func (k Kind) String() string {
	return kinds[k]
}

// Retryable tells whether operations failing with kind k may be safely
// re-attempted. Retryability is fixed per kind.
func (k Kind) Retryable() bool {
	return k == RateLimited || k == Unavailable
}

// Op identifies the logical operation that produced an error, e.g.
// "read" or "create_dir".
type Op string

// Path carries the normalized object path an error pertains to.
type Path string

// Error is the standard error type, carrying a kind, the operation and
// normalized path it pertains to, an optional message, and potentially
// an underlying error.
type Error struct {
	// Kind is the error's type.
	Kind Kind
	// Op is the logical operation that failed, if known.
	Op Op
	// Path is the normalized object path involved, if any.
	Path Path
	// Message is an optional error message associated with this error.
	Message string
	// Err is the error that caused this error, if any. Errors can form
	// chains through Err: the full chain is printed by Error().
	Err error
}

// E constructs a new error from the provided arguments. It is meant as a
// convenient way to construct, annotate, and wrap errors.
//
// Arguments are interpreted according to their types:
//
//	- Kind: sets the Error's kind
//	- Op: sets the Error's operation
//	- Path: sets the Error's path
//	- string: sets the Error's message; multiple strings are
//	  separated by a single space
//	- *Error: copies the error and sets the error's cause
//	- error: sets the Error's cause
//
// If an unrecognized argument type is encountered, an error with kind
// InvalidInput is returned.
//
// If a kind is not provided, but an underlying error is, E attempts to
// interpret the underlying error:
//
//	- If os.IsNotExist(error) returns true, its kind is set to NotFound.
//	- If the error is context.Canceled or context.DeadlineExceeded, its
//	  kind is set to Unavailable (cancellation aborts the operation; the
//	  caller already knows why).
//	- If the error implements interface{ Temporary() bool } and
//	  Temporary() returns true, its kind is set to Unavailable.
//
// If the underlying error is another *Error and a kind is not provided,
// the returned error inherits that error's kind, operation, and path.
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("errors.E: no args")
	}
	e := new(Error)
	var msg strings.Builder
	for _, arg := range args {
		switch arg := arg.(type) {
		case Kind:
			e.Kind = arg
		case Op:
			e.Op = arg
		case Path:
			e.Path = arg
		case string:
			if msg.Len() > 0 {
				msg.WriteString(" ")
			}
			msg.WriteString(arg)
		case *Error:
			cp := *arg
			if len(args) == 1 {
				// Nothing is being added; just return the copy.
				return &cp
			}
			e.Err = &cp
		case error:
			e.Err = arg
		default:
			return &Error{
				Kind:    InvalidInput,
				Message: fmt.Sprintf("unknown type %T, value %v in error call", arg, arg),
			}
		}
	}
	e.Message = msg.String()
	if e.Err == nil {
		return e
	}
	switch prev := e.Err.(type) {
	case *Error:
		if prev.Kind == e.Kind || e.Kind == Unexpected {
			e.Kind = prev.Kind
			prev.Kind = Unexpected
		}
		if e.Op == "" {
			e.Op = prev.Op
		}
		if e.Path == "" {
			e.Path = prev.Path
		}
	default:
		if e.Kind != Unexpected {
			break
		}
		if os.IsNotExist(e.Err) {
			e.Kind = NotFound
		} else if e.Err == context.Canceled || e.Err == context.DeadlineExceeded {
			e.Kind = Unavailable
		} else if err, ok := e.Err.(interface{ Temporary() bool }); ok && err.Temporary() {
			e.Kind = Unavailable
		}
	}
	return e
}

// Recover recovers any error into an *Error. If the passed-in error is
// already an *Error, it is simply returned; otherwise it is wrapped.
func Recover(err error) *Error {
	if err == nil {
		return nil
	}
	if err, ok := err.(*Error); ok {
		return err
	}
	return E(err).(*Error)
}

// Error returns a human readable string describing this error.
// It uses the separator defined by errors.Separator.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b bytes.Buffer
	e.writeError(&b)
	return b.String()
}

func (e *Error) writeError(b *bytes.Buffer) {
	if e.Op != "" {
		b.WriteString(string(e.Op))
	}
	if e.Path != "" {
		pad(b, " ")
		b.WriteString(string(e.Path))
	}
	if e.Message != "" {
		pad(b, ": ")
		b.WriteString(e.Message)
	}
	if e.Kind != Unexpected {
		pad(b, ": ")
		b.WriteString(e.Kind.String())
	}
	if e.Err == nil {
		return
	}
	if err, ok := e.Err.(*Error); ok {
		pad(b, Separator)
		b.WriteString(err.Error())
	} else {
		pad(b, ": ")
		b.WriteString(e.Err.Error())
	}
}

// Unwrap returns the error's cause, making *Error compatible with the
// standard library's errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Temporary tells whether this error is likely transient. It is defined
// so wrapped errors interoperate with net-style error inspection.
func (e *Error) Temporary() bool {
	return e.Kind.Retryable()
}

// Is tells whether an error has a specified kind, except for the
// indeterminate kind Unexpected. In the case an error has kind
// Unexpected, the chain is traversed until a determinate kind is
// encountered.
func Is(kind Kind, err error) bool {
	if err == nil {
		return false
	}
	return is(kind, Recover(err))
}

func is(kind Kind, e *Error) bool {
	if e.Kind != Unexpected {
		return e.Kind == kind
	}
	if e.Err != nil {
		if e2, ok := e.Err.(*Error); ok {
			return is(kind, e2)
		}
	}
	return kind == Unexpected
}

// Retryable tells whether the provided error carries a retryable kind.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	return Recover(err).Kind.Retryable()
}

// Match tells whether every nonempty field in err1 matches the
// corresponding field in err2. The comparison recurses on chained
// errors. Match is designed to aid in testing errors.
func Match(err1, err2 error) bool {
	var (
		e1 = Recover(err1)
		e2 = Recover(err2)
	)
	if e1.Kind != Unexpected && e1.Kind != e2.Kind {
		return false
	}
	if e1.Op != "" && e1.Op != e2.Op {
		return false
	}
	if e1.Path != "" && e1.Path != e2.Path {
		return false
	}
	if e1.Message != "" && e1.Message != e2.Message {
		return false
	}
	if e1.Err != nil {
		if e2.Err == nil {
			return false
		}
		switch e1.Err.(type) {
		case *Error:
			return Match(e1.Err, e2.Err)
		default:
			return e1.Err.Error() == e2.Err.Error()
		}
	}
	return true
}

// Visit calls the given function for every error object in the chain,
// including itself. Recursion stops after the function finds an error
// object of type other than *Error.
func Visit(err error, callback func(err error)) {
	callback(err)
	for {
		next, ok := err.(*Error)
		if !ok {
			break
		}
		err = next.Err
		callback(err)
	}
}

// New is synonymous with errors.New, and is provided here so that users
// need only import one errors package.
func New(msg string) error {
	return errors.New(msg)
}

func pad(b *bytes.Buffer, s string) {
	if b.Len() == 0 {
		return
	}
	b.WriteString(s)
}
