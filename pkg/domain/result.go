package domain

import (
	"errors"
	"fmt"
)

// ErrNoData is returned when a source responds without a usable records collection
var ErrNoData = errors.New("no data in response")

// SkipError describes a record or list entry that was discarded during normalization
type SkipError struct {
	Index  int    // position of the record in the upstream list
	Reason string // short reason, e.g. "malformed record"
	Err    error
}

// Error implements error
func (e *SkipError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("record %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("record %d: %s: %v", e.Index, e.Reason, e.Err)
}

// Unwrap returns the underlying error
func (e *SkipError) Unwrap() error { return e.Err }

// Result is the outcome of fetching one category from one source.
// Err is set when the whole category failed; Skipped lists records discarded individually.
type Result struct {
	Source   string
	Category Category
	Items    []Item
	Skipped  []*SkipError
	Err      error
}

// OK reports whether the category was fetched without a category-level failure
func (r Result) OK() bool { return r.Err == nil }
