// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

package field

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrTruncated reports fewer bytes than a fixed layout needs. On a
	// stream transport it is recovered by buffering more data.
	ErrTruncated = errors.New("truncated input")
	// ErrMalformed reports a well sized field with invalid content.
	ErrMalformed          = errors.New("malformed field")
	ErrUnknownMessageType = errors.New("unknown message type")
)

type Error struct {
	Field  string
	Offset int
	Err    error
	Detail string
}

func (e *Error) Error() string {
	s := fmt.Sprintf("field %q at offset %d: %s", e.Field, e.Offset, e.Err)
	if e.Detail != "" {
		s += ": " + e.Detail
	}
	return s
}
func (e *Error) Unwrap() error {
	return e.Err
}

func truncated(f *Field, offset, avail int) error {
	return &Error{
		Field:  f.Name,
		Offset: offset,
		Err:    ErrTruncated,
		Detail: fmt.Sprintf("need %d bytes, have %d", f.Width, avail),
	}
}

func malformed(f *Field, offset int, format string, args ...interface{}) error {
	return &Error{
		Field:  f.Name,
		Offset: offset,
		Err:    ErrMalformed,
		Detail: fmt.Sprintf(format, args...),
	}
}

// UnknownMessageError is the diagnostic produced for a tag byte that is not
// registered in a Table. It is not fatal: framers report it for the block
// and carry on with the next one.
type UnknownMessageError struct {
	Table  string
	Offset int
	Tag    byte
	Raw    []byte
}

func (e *UnknownMessageError) Error() string {
	return fmt.Sprintf("%s: unknown message type %q at offset %d (%d bytes)", e.Table, e.Tag, e.Offset, len(e.Raw))
}
func (e *UnknownMessageError) Unwrap() error {
	return ErrUnknownMessageType
}
