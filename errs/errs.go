// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

// Package errs implements panic based checks that are turned back into
// ordinary errors at function boundaries:
//
//	func f() (err error) {
//		defer errs.PassE(&err)
//		errs.CheckE(g())
//		errs.Check(n > 0, n)
//		return
//	}
package errs

import (
	"fmt"
	"runtime"

	"github.com/pkg/errors"
)

type CheckerError interface {
	error
	OrigError() error
	Args() []interface{}
	Location() (file string, line int)
}

type checkerError struct {
	err   error
	args  []interface{}
	file  string
	line  int
	stack error
}

func newCheckerError(callerDepth int, err error, args []interface{}) *checkerError {
	e := &checkerError{
		err:  err,
		args: args,
	}
	_, e.file, e.line, _ = runtime.Caller(callerDepth + 1)
	if err != nil {
		e.stack = errors.WithStack(err)
	} else {
		e.stack = errors.Errorf("check failed, args=%#v", args)
	}
	return e
}
func (e *checkerError) Error() string {
	errStr := "<nil>"
	if e.err != nil {
		errStr = e.err.Error()
	}
	return fmt.Sprintf("check failed at %s:%d (err:%s, args=%#v)", e.file, e.line, errStr, e.args)
}
func (e *checkerError) OrigError() error {
	return e.err
}
func (e *checkerError) Args() []interface{} {
	return e.args
}
func (e *checkerError) Location() (string, int) {
	return e.file, e.line
}
func (e *checkerError) Unwrap() error {
	return e.err
}

// Format prints the stack of the failed check with %+v.
func (e *checkerError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s\n%+v", e.Error(), e.stack)
		return
	}
	fmt.Fprint(s, e.Error())
}

func CheckE(err error, args ...interface{}) {
	if err != nil {
		panic(newCheckerError(1, err, args))
	}
}

func Check(cond bool, args ...interface{}) {
	if !cond {
		panic(newCheckerError(1, nil, args))
	}
}

// PassE recovers a failed check and stores it into *errptr. The original
// error is stored when the check was CheckE, the checker error otherwise.
// Panics that did not come from a check are re-raised.
func PassE(errptr *error) {
	r := recover()
	if r == nil {
		return
	}
	ce, ok := r.(*checkerError)
	if !ok {
		panic(r)
	}
	if errptr == nil {
		return
	}
	if ce.err != nil {
		*errptr = ce.err
	} else {
		*errptr = ce
	}
}

// Catch recovers a failed check and hands it to f. Used at the top of
// goroutines which have no caller to return an error to.
func Catch(f func(CheckerError)) {
	r := recover()
	if r == nil {
		return
	}
	ce, ok := r.(*checkerError)
	if !ok {
		panic(r)
	}
	f(ce)
}
