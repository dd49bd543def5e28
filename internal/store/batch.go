package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNothingConverted signals a non-empty batch of which no record could be converted.
	ErrNothingConverted = errors.New("no records converted")
	// ErrClosed is returned by mutations after Close.
	ErrClosed = errors.New("store closed")
	// ErrIdentifierCollision marks a record whose identifier already belongs to another source.
	ErrIdentifierCollision = errors.New("identifier owned by another source")
)

// CollisionError is the failure recorded for a record whose derived identifier is held by
// a different source, for example source "a-b" venue "c" against source "a" venue "b-c".
// The stored entry is kept. It wraps ErrIdentifierCollision.
type CollisionError struct {
	ScreenID string
	Owner    string
	SourceID string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s: %s held by %q, record from %q", ErrIdentifierCollision, e.ScreenID, e.Owner, e.SourceID)
}

func (e *CollisionError) Unwrap() error {
	return ErrIdentifierCollision
}

// RecordFailure describes one record isolated from its batch.
type RecordFailure struct {
	Index    int
	SourceID string
	VenueID  string
	Err      error
}

// BatchResult summarizes an AddInventory call.
type BatchResult struct {
	Received  int
	Converted int
	Added     int
	Replaced  int
	// Collapsed counts in-batch duplicates that were overwritten by a later record.
	Collapsed int
	Warnings  int
	Errors    int
	Failures  []RecordFailure
	// Violations are integrity issues found across the whole store after the merge.
	Violations []IntegrityViolation
}

// Failed is the number of records that could not be converted.
func (r BatchResult) Failed() int {
	return len(r.Failures)
}

// BatchError is returned when a non-empty batch converts nothing. It wraps ErrNothingConverted.
type BatchError struct {
	Received int
	Failures []RecordFailure
}

func (e *BatchError) Error() string {
	msg := fmt.Sprintf("%s: 0 of %d records", ErrNothingConverted, e.Received)
	if len(e.Failures) > 0 && e.Failures[0].Err != nil {
		msg += ": first failure: " + e.Failures[0].Err.Error()
	}
	return msg
}

func (e *BatchError) Unwrap() error {
	return ErrNothingConverted
}
