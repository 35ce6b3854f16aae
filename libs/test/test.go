// Package test provides small assertion helpers for tests.
package test

import (
	"reflect"
	"runtime"
	"strconv"
	"testing"
)

func caller() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return ""
	}
	short := file
	for i := len(file) - 1; i > 0; i-- {
		if file[i] == '/' {
			short = file[i+1:]
			break
		}
	}
	return short + ":" + strconv.Itoa(line) + ": "
}

// OK fails the test if err is not nil.
func OK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("%sunexpected error: %+v", caller(), err)
	}
}

// Equals fails the test if expected is not deeply equal to actual.
func Equals(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("%sexpected %#v got %#v", caller(), expected, actual)
	}
}

// Assert fails the test with msg if cond is false.
func Assert(t *testing.T, cond bool, msg string, v ...interface{}) {
	t.Helper()
	if !cond {
		t.Fatalf(caller()+msg, v...)
	}
}

// AssertNotNil fails the test if v is nil.
func AssertNotNil(t *testing.T, v interface{}) {
	t.Helper()
	if v == nil || (reflect.ValueOf(v).Kind() == reflect.Ptr && reflect.ValueOf(v).IsNil()) {
		t.Fatalf("%sexpected non-nil value", caller())
	}
}
