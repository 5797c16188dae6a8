package model

import "fmt"

// Identifier prefixes of the exported record kinds.
const (
	PersonPrefix = "I"
	FamilyPrefix = "F"
	SourcePrefix = "S"
	NotePrefix   = "N"
	ObjectPrefix = "O"
)

// FormatID renders the identifier of the entity at index i.
func FormatID(prefix string, i int) string {
	return fmt.Sprintf("%s%05d", prefix, i)
}

// AssignIdentifiers stamps sequential identifiers on every entity in index
// order. It must run once the tree is final. Running it again renumbers
// identically, since internal references are indices.
func AssignIdentifiers(t *Tree) {
	for i := range t.People {
		t.People[i].ID = FormatID(PersonPrefix, i)
	}
	for i := range t.Families {
		t.Families[i].ID = FormatID(FamilyPrefix, i)
	}
	for i := range t.Sources {
		t.Sources[i].ID = FormatID(SourcePrefix, i)
	}
	for i := range t.Notes {
		t.Notes[i].ID = FormatID(NotePrefix, i)
	}
	for i := range t.Objects {
		t.Objects[i].ID = FormatID(ObjectPrefix, i)
	}
}
