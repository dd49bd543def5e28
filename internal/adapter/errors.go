package adapter

import (
	"errors"
	"fmt"
)

// ErrMissingIdentifier means a record still lacks a source or venue id after sanitization.
var ErrMissingIdentifier = errors.New("missing required identifier")

// ConversionError reports a record that could not be turned into a canonical screen.
type ConversionError struct {
	SourceID string
	VenueID  string
	Err      error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert record source=%q venue=%q: %v", e.SourceID, e.VenueID, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
