package model

import "fmt"

// Source is an evidence record. The generator never creates sources; the
// slot exists so attached evidence can be exported.
type Source struct {
	ID       string
	NoteRefs []int
}

// Note is a free text record placeholder.
type Note struct {
	ID string
}

// Object is a multimedia record placeholder.
type Object struct {
	ID string
}

// Tree owns every entity. Slices are append-only while the tree is being
// generated and all cross references are slice indices.
//
// People and families must be added through the methods below so that the
// person-to-family and family-to-person links always change together.
type Tree struct {
	People   []Person
	Families []Family
	Sources  []Source
	Notes    []Note
	Objects  []Object
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{}
}

// Person returns the person at index id.
func (t *Tree) Person(id int) (*Person, error) {
	if id < 0 || id >= len(t.People) {
		return nil, fmt.Errorf("person %d of %d: %w", id, len(t.People), ErrUnknownPerson)
	}
	return &t.People[id], nil
}

// Family returns the family at index id.
func (t *Tree) Family(id int) (*Family, error) {
	if id < 0 || id >= len(t.Families) {
		return nil, fmt.Errorf("family %d of %d: %w", id, len(t.Families), ErrUnknownFamily)
	}
	return &t.Families[id], nil
}

// AddRoot appends a person that belongs to no family yet.
func (t *Tree) AddRoot(p Person) int {
	p.Families = nil
	t.People = append(t.People, p)
	return len(t.People) - 1
}

// AddFamily appends a family and links it into every referenced member.
// Absent parents are given as None.
func (t *Tree) AddFamily(f Family) (int, error) {
	members := make([]int, 0, len(f.Children)+2)
	if f.Father != None {
		members = append(members, f.Father)
	}
	if f.Mother != None {
		members = append(members, f.Mother)
	}
	members = append(members, f.Children...)
	for _, id := range members {
		if _, err := t.Person(id); err != nil {
			return None, fmt.Errorf("add family: %w", err)
		}
	}

	f.Children = append([]int(nil), f.Children...)
	t.Families = append(t.Families, f)
	familyID := len(t.Families) - 1
	for _, id := range members {
		t.People[id].linkFamily(familyID)
	}
	return familyID, nil
}

// AddFather appends p and makes it the father of the family.
func (t *Tree) AddFather(familyID int, p Person) (int, error) {
	return t.addMember(familyID, p, RoleFather)
}

// AddMother appends p and makes it the mother of the family.
func (t *Tree) AddMother(familyID int, p Person) (int, error) {
	return t.addMember(familyID, p, RoleMother)
}

// AddChild appends p as the youngest child of the family.
func (t *Tree) AddChild(familyID int, p Person) (int, error) {
	return t.addMember(familyID, p, RoleChild)
}

func (t *Tree) addMember(familyID int, p Person, role Role) (int, error) {
	f, err := t.Family(familyID)
	if err != nil {
		return None, fmt.Errorf("add %s: %w", role, err)
	}
	switch role {
	case RoleFather:
		if f.HasFather() {
			return None, fmt.Errorf("family %d father: %w", familyID, ErrRoleTaken)
		}
	case RoleMother:
		if f.HasMother() {
			return None, fmt.Errorf("family %d mother: %w", familyID, ErrRoleTaken)
		}
	}

	p.Families = []int{familyID}
	t.People = append(t.People, p)
	personID := len(t.People) - 1

	switch role {
	case RoleFather:
		f.Father = personID
	case RoleMother:
		f.Mother = personID
	default:
		f.Children = append(f.Children, personID)
	}
	return personID, nil
}

// IsParent reports whether the person is father or mother in any family.
func (t *Tree) IsParent(personID int) bool {
	for _, fid := range t.People[personID].Families {
		switch t.Families[fid].RoleOf(personID) {
		case RoleFather, RoleMother:
			return true
		}
	}
	return false
}

// IsChild reports whether the person is a child in any family.
func (t *Tree) IsChild(personID int) bool {
	for _, fid := range t.People[personID].Families {
		if t.Families[fid].RoleOf(personID) == RoleChild {
			return true
		}
	}
	return false
}

// ChildFamily returns the family the person is a child of, or None.
func (t *Tree) ChildFamily(personID int) int {
	for _, fid := range t.People[personID].Families {
		if t.Families[fid].RoleOf(personID) == RoleChild {
			return fid
		}
	}
	return None
}

// Verify checks that every person-to-family link is mirrored by the family
// and every family member links back to the family.
func (t *Tree) Verify() error {
	for pid := range t.People {
		for _, fid := range t.People[pid].Families {
			if fid < 0 || fid >= len(t.Families) {
				return fmt.Errorf("person %d links missing family %d: %w", pid, fid, ErrReferentialIntegrity)
			}
			if t.Families[fid].RoleOf(pid) == RoleNone {
				return fmt.Errorf("person %d links family %d which does not list it: %w", pid, fid, ErrReferentialIntegrity)
			}
		}
	}
	for fid := range t.Families {
		for _, pid := range t.Families[fid].Members() {
			if pid < 0 || pid >= len(t.People) {
				return fmt.Errorf("family %d lists missing person %d: %w", fid, pid, ErrReferentialIntegrity)
			}
			if !t.People[pid].BelongsTo(fid) {
				return fmt.Errorf("family %d lists person %d which does not link it: %w", fid, pid, ErrReferentialIntegrity)
			}
		}
	}
	return nil
}
