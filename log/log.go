// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"

	"github.com/pkg/errors"
)

type Logger interface {
	SetOutput(w io.Writer)
	Printf(format string, args ...interface{})
	Println(args ...interface{})
	Fatalf(format string, args ...interface{})
	WithStack(err interface{})
}

var logger Logger = newDefaultLogger()

func SetLogger(l Logger) {
	logger = l
}

func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// SetOutputFile sends the log to the named file, appending to it. An empty
// name or "-" keeps stderr. The returned Closer releases the file.
func SetOutputFile(name string) (io.Closer, error) {
	if name == "" || name == "-" {
		SetOutput(os.Stderr)
		return io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "log file")
	}
	SetOutput(f)
	return f, nil
}

type defaultLogger struct {
	log *stdlog.Logger
}

func newDefaultLogger() *defaultLogger {
	return &defaultLogger{log: stdlog.New(os.Stderr, "asx: ", stdlog.Ldate|stdlog.Ltime|stdlog.Lshortfile)}
}

func (l *defaultLogger) SetOutput(w io.Writer) {
	l.log.SetOutput(w)
}
func (l *defaultLogger) Printf(format string, args ...interface{}) {
	l.log.Output(3, fmt.Sprintf(format, args...))
}
func (l *defaultLogger) Println(args ...interface{}) {
	l.log.Output(3, fmt.Sprintln(args...))
}
func (l *defaultLogger) Fatalf(format string, args ...interface{}) {
	l.log.Output(3, fmt.Sprintf(format, args...))
	os.Exit(1)
}

// WithStack logs err together with the stack it carries, or the current
// stack if it has none.
func (l *defaultLogger) WithStack(err interface{}) {
	e, ok := err.(error)
	if !ok {
		e = errors.Errorf("%v", err)
	} else if _, ok := e.(interface{ StackTrace() errors.StackTrace }); !ok {
		e = errors.WithStack(e)
	}
	l.log.Output(3, fmt.Sprintf("%+v", e))
}

func Printf(format string, args ...interface{}) {
	logger.Printf(format, args...)
}
func Println(args ...interface{}) {
	logger.Println(args...)
}
func Fatalf(format string, args ...interface{}) {
	logger.Fatalf(format, args...)
}
func WithStack(err interface{}) {
	logger.WithStack(err)
}
