// Package mock provides a small expectation recorder used to build hand
// written mocks of external service interfaces.
package mock

import (
	"reflect"
	"testing"
)

// Expectation describes a single expected call: the method, the params it
// should receive, and the values the mock should return.
type Expectation struct {
	Func    interface{}
	Params  []interface{}
	Returns []interface{}
}

// NewExpectation returns an expectation for a call to f with the provided params.
func NewExpectation(f interface{}, params ...interface{}) *Expectation {
	return &Expectation{Func: f, Params: params}
}

// WithReturns attaches return values to the expectation.
func (e *Expectation) WithReturns(rets ...interface{}) *Expectation {
	e.Returns = rets
	return e
}

// Expector records calls against an ordered list of expectations. Embed a
// pointer to it in a mock and call Record from each method.
type Expector struct {
	T *testing.T

	expectations []*Expectation
}

// Expect appends an expectation to the ordered list.
func (e *Expector) Expect(exp *Expectation) {
	e.expectations = append(e.expectations, exp)
}

// Record matches the call against the next expectation and returns its
// configured return values. Unexpected calls and param mismatches fail the test.
func (e *Expector) Record(params ...interface{}) []interface{} {
	e.T.Helper()
	if len(e.expectations) == 0 {
		e.T.Fatalf("mock: unexpected call with params %+v", params)
		return nil
	}
	exp := e.expectations[0]
	e.expectations = e.expectations[1:]
	if len(exp.Params) != len(params) {
		e.T.Fatalf("mock: expected %d params got %d: %+v", len(exp.Params), len(params), params)
		return nil
	}
	for i, p := range exp.Params {
		if !reflect.DeepEqual(p, params[i]) {
			e.T.Fatalf("mock: param %d mismatch: expected %+v got %+v", i, p, params[i])
			return nil
		}
	}
	return exp.Returns
}

// Finish asserts that every expectation was consumed.
func (e *Expector) Finish() {
	e.T.Helper()
	if len(e.expectations) != 0 {
		e.T.Fatalf("mock: %d expectations were never met: %+v", len(e.expectations), e.expectations)
	}
}

// SafeError casts the provided return value to an error, tolerating nil.
func SafeError(v interface{}) error {
	if v == nil {
		return nil
	}
	return v.(error)
}
