// Package ptr provides helpers for taking pointers to values, primarily for
// use with AWS SDK inputs.
package ptr

import "time"

func String(s string) *string { return &s }

func Bool(b bool) *bool { return &b }

func Int(i int) *int { return &i }

func Int64(i int64) *int64 { return &i }

func Float64(f float64) *float64 { return &f }

func Time(t time.Time) *time.Time { return &t }

// StringValue returns the value of the pointer or the empty string if nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Int64Value returns the value of the pointer or 0 if nil.
func Int64Value(i *int64) int64 {
	if i == nil {
		return 0
	}
	return *i
}
