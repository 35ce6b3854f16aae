// Package errors provides error wrapping that captures the location at which
// an error was first seen while preserving the original error for comparison
// with errors.Is / errors.As.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// New returns a new error with the given message. It does not capture a location
// so it is appropriate for package level sentinel errors.
func New(msg string) error {
	return errors.New(msg)
}

// Errorf returns a new error with a formatted message and the location of the caller.
func Errorf(format string, args ...interface{}) error {
	return trace(fmt.Errorf(format, args...), 2)
}

// Trace wraps an error recording the location of the caller. If err is nil it
// returns nil so it can be used unconditionally on return values.
func Trace(err error) error {
	if err == nil {
		return nil
	}
	return trace(err, 2)
}

// Wrapf annotates err with a formatted message and the location of the caller.
// The returned error still matches err for Is/As.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	e := trace(err, 2)
	e.annotations = append(e.annotations, fmt.Sprintf(format, args...))
	return e
}

// Cause returns the innermost error in the chain.
func Cause(err error) error {
	for {
		u := errors.Unwrap(err)
		if u == nil {
			return err
		}
		err = u
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return errors.As(err, target) }

type aerr struct {
	err         error
	annotations []string
	frames      []string
}

func trace(err error, calldepth int) *aerr {
	e, ok := err.(*aerr)
	if !ok {
		e = &aerr{err: err}
	}
	if _, file, line, ok := runtime.Caller(calldepth); ok {
		short := file
		depth := 0
		for i := len(file) - 1; i > 0; i-- {
			if file[i] == '/' {
				short = file[i+1:]
				depth++
				if depth == 2 {
					break
				}
			}
		}
		e.frames = append(e.frames, short+":"+strconv.Itoa(line))
	}
	return e
}

func (e *aerr) Error() string {
	if len(e.annotations) == 0 {
		return e.err.Error()
	}
	// Most recent annotation first, original error last.
	parts := make([]string, 0, len(e.annotations)+1)
	for i := len(e.annotations) - 1; i >= 0; i-- {
		parts = append(parts, e.annotations[i])
	}
	parts = append(parts, e.err.Error())
	return strings.Join(parts, ": ")
}

func (e *aerr) Unwrap() error { return e.err }

// Format implements fmt.Formatter to include the trace for %+v.
func (e *aerr) Format(f fmt.State, c rune) {
	if c == 'v' && f.Flag('+') {
		fmt.Fprintf(f, "%s [%s]", e.Error(), strings.Join(e.frames, " "))
		return
	}
	fmt.Fprint(f, e.Error())
}
