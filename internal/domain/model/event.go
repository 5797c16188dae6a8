// Package model contains the genealogical entities shared between the
// generator and the serializer.
package model

import "time"

// Event tags used by the generator.
const (
	EventBirth = "BIRT"
	EventDeath = "DEAT"
)

// Event is a dated fact about a person. Type is the record tag written to
// the output (BIRT, DEAT, ...).
type Event struct {
	Type    string     // record tag
	Date    *time.Time // optional
	Place   string     // optional
	Comment string     // optional, written as the event TYPE
}

// HasDetail reports whether the event carries anything besides its tag.
func (e Event) HasDetail() bool {
	return e.Date != nil || e.Place != "" || e.Comment != ""
}
