package gedcom

import (
	"errors"
)

// Sentinel kinds for encoding errors.
var (
	// ErrUnassignedID is returned when a record has no identifier yet.
	ErrUnassignedID = errors.New("record has no identifier")

	// ErrMissingPedigree is returned when a child link has no pedigree.
	ErrMissingPedigree = errors.New("child link has no pedigree")

	// ErrEmptyEventTag is returned for an event without a tag.
	ErrEmptyEventTag = errors.New("event has no tag")
)
