package model

import (
	"slices"
	"time"
)

// None marks an absent father or mother.
const None = -1

// Role of a person within a family.
type Role string

// Roles a person can hold in a family.
const (
	RoleFather Role = "father"
	RoleMother Role = "mother"
	RoleChild  Role = "child"
	RoleNone   Role = ""
)

// Family links up to two parents with their children. Father, Mother and
// Children are indices into Tree.People.
type Family struct {
	// ID is empty until AssignIdentifiers runs.
	ID string

	// LegalStatus is the legal form of the parents' relationship.
	LegalStatus string

	// RelationDate is when the relationship started; optional.
	RelationDate *time.Time

	Father   int
	Mother   int
	Children []int

	ChangeDate time.Time
}

// HasFather reports whether the father slot is filled.
func (f *Family) HasFather() bool { return f.Father != None }

// HasMother reports whether the mother slot is filled.
func (f *Family) HasMother() bool { return f.Mother != None }

// RoleOf returns the role the person holds in the family.
func (f *Family) RoleOf(personID int) Role {
	switch {
	case f.Father == personID:
		return RoleFather
	case f.Mother == personID:
		return RoleMother
	case slices.Contains(f.Children, personID):
		return RoleChild
	default:
		return RoleNone
	}
}

// Members returns father, mother and children indices, skipping absent
// parents.
func (f *Family) Members() []int {
	out := make([]int, 0, len(f.Children)+2)
	if f.HasFather() {
		out = append(out, f.Father)
	}
	if f.HasMother() {
		out = append(out, f.Mother)
	}
	return append(out, f.Children...)
}
