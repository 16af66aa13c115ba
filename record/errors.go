// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package record

import (
	"fmt"
	"strings"
)

// Kind classifies the errors the parsers and metrics can return. The set is
// closed and mirrors the taxonomy every ByteSource-driven consumer needs to
// switch on: callers type-assert to *Error and inspect Kind rather than
// string-matching messages.
type Kind int

const (
	// KindIO wraps an error reported by the underlying ByteSource.
	KindIO Kind = iota
	// KindEOF means the stream ended in the middle of a record.
	KindEOF
	// KindBadFormat means a grammar violation: bad magic, missing '@' or
	// '+', non-ASCII byte, sequence/quality length mismatch, truncated
	// BAM tag.
	KindBadFormat
	// KindInvalidPhred means a quality byte fell outside [33, 33+93].
	KindInvalidPhred
	// KindBadConfig means an illegal constructor argument.
	KindBadConfig
	// KindCapacityExceeded means a record exceeded the 32-bit length
	// limit the on-disk layout assumes.
	KindCapacityExceeded
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindEOF:
		return "eof"
	case KindBadFormat:
		return "bad format"
	case KindInvalidPhred:
		return "invalid phred"
	case KindBadConfig:
		return "bad config"
	case KindCapacityExceeded:
		return "capacity exceeded"
	default:
		return "unknown"
	}
}

// Error is the error type returned by parsers and metric accumulators.
// Construct it with E, in the style of github.com/grailbio/base/errors:
// a variadic list of strings (joined into the reason), a Kind, and an
// optional wrapped error.
type Error struct {
	Kind    Kind
	Reason  string
	Wrapped error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Wrapped != nil {
		b.WriteString(": ")
		b.WriteString(e.Wrapped.Error())
	}
	return b.String()
}

// Unwrap exposes the wrapped error for errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Wrapped }

// E builds an *Error from a Kind, any number of strings (concatenated with
// spaces into the Reason), and an optional trailing error to wrap.
func E(kind Kind, args ...interface{}) *Error {
	e := &Error{Kind: kind}
	var parts []string
	for _, a := range args {
		switch v := a.(type) {
		case error:
			e.Wrapped = v
		case string:
			parts = append(parts, v)
		default:
			parts = append(parts, fmt.Sprint(v))
		}
	}
	e.Reason = strings.Join(parts, " ")
	return e
}

// Is reports whether err is an *Error of the given Kind.
func Is(kind Kind, err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
