package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Sex of a person, using the single-letter codes of the SEX line.
type Sex string

// Known sex codes.
const (
	SexMale        Sex = "M"
	SexFemale      Sex = "F"
	SexIntersex    Sex = "X"
	SexUnknown     Sex = "U"
	SexNotRecorded Sex = "N"
)

// NameType classifies a personal name.
type NameType string

// Known name types.
const (
	NameBirth     NameType = "birth"
	NameMarried   NameType = "married"
	NameMaiden    NameType = "maiden"
	NameAKA       NameType = "aka"
	NameImmigrant NameType = "immigrant"
	NameOther     NameType = "other"
)

// Name is one of the names a person is known by. Given may hold several
// space separated given names.
type Name struct {
	Type          NameType
	Given         string
	Surname       string
	Nickname      string
	SurnamePrefix string
	SurnameSuffix string
}

// Person is an individual in the tree. Families holds indices into
// Tree.Families; the person must be father, mother or child in each of them.
type Person struct {
	// Level is the generation of the person within the tree. It is used by
	// the generator only and never exported.
	Level int

	// ID is empty until AssignIdentifiers runs.
	ID string

	// UID is an optional globally unique identifier; zero when unset.
	UID uuid.UUID

	// Names are ordered by display priority; the first is primary.
	Names []Name

	Sex Sex

	Families []int

	// Pedigree describes the link to the family the person is a child of.
	Pedigree string

	Events     []Event
	SourceRefs []int
	NoteRefs   []int
	ObjectRefs []int
	ChangeDate time.Time
}

// Primary returns the first name of the person, or the zero Name.
func (p *Person) Primary() Name {
	if len(p.Names) == 0 {
		return Name{}
	}
	return p.Names[0]
}

// Given returns the given names of the primary name.
func (p *Person) Given() string {
	return p.Primary().Given
}

// Surname returns the surname of the primary name.
func (p *Person) Surname() string {
	return p.Primary().Surname
}

// BirthSurname returns the surname the person was born with: the first
// birth or maiden name, falling back to the primary surname.
func (p *Person) BirthSurname() string {
	for _, n := range p.Names {
		if n.Type == NameBirth || n.Type == NameMaiden {
			return n.Surname
		}
	}
	return p.Surname()
}

// BelongsTo reports whether the family index is linked into the person.
func (p *Person) BelongsTo(familyID int) bool {
	return slices.Contains(p.Families, familyID)
}

func (p *Person) linkFamily(familyID int) {
	if !p.BelongsTo(familyID) {
		p.Families = append(p.Families, familyID)
	}
}
