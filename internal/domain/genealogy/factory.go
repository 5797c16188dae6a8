package genealogy

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/okian/gedgen/internal/domain/demography"
	"github.com/okian/gedgen/internal/domain/distribution"
	"github.com/okian/gedgen/internal/domain/model"
	"github.com/okian/gedgen/pkg/metrics"
)

const percent = 100

// Draft carries the attributes of a person to generate. An empty Given or
// Sex is drawn; a nil Surname is inherited from the family.
type Draft struct {
	Given   string
	Surname *string
	Sex     model.Sex
}

// Factory creates people and families inside a tree. Attributes a relative
// already carries are inherited, the rest are drawn from the policy using a
// single random stream.
type Factory struct {
	tree   *model.Tree
	policy *Policy
	rng    *rand.Rand

	sex      distribution.CDF[model.Sex]
	legal    distribution.CDF[string]
	pedigree distribution.CDF[string]

	forcedMales int
}

// NewFactory returns a factory growing tree.
func NewFactory(tree *model.Tree, policy *Policy, rng *rand.Rand) *Factory {
	return &Factory{
		tree:     tree,
		policy:   policy,
		rng:      rng,
		sex:      demography.SexCDF(),
		legal:    demography.RelationLegalStatusCDF(),
		pedigree: demography.ChildPedigreeCDF(),
	}
}

// Tree returns the tree the factory grows.
func (f *Factory) Tree() *model.Tree { return f.tree }

// ForcedMales returns how many children had their sex forced to male.
func (f *Factory) ForcedMales() int { return f.forcedMales }

// CreateRoot appends a person outside of any family at level zero.
func (f *Factory) CreateRoot(given, surname string, sex model.Sex) int {
	name := model.Name{Type: model.NameBirth, Given: given, Surname: surname}
	return f.tree.AddRoot(f.newPerson(0, sex, name))
}

// CreateFather appends a father to the family. A nil surname is taken from
// the mother, else from the first child's birth surname.
func (f *Factory) CreateFather(familyID int, given string, surname *string, sex model.Sex) (int, error) {
	fam, err := f.tree.Family(familyID)
	if err != nil {
		return model.None, fmt.Errorf("create father: %w", err)
	}

	level, inherited := 0, ""
	switch {
	case fam.HasMother():
		mother := &f.tree.People[fam.Mother]
		level, inherited = mother.Level, mother.Surname()
	case len(fam.Children) > 0:
		child := &f.tree.People[fam.Children[0]]
		level, inherited = child.Level-1, child.BirthSurname()
	}

	name := model.Name{Type: model.NameBirth, Given: given, Surname: pick(surname, inherited)}
	return f.tree.AddFather(familyID, f.newPerson(level, sex, name))
}

// CreateMother appends a mother to the family. A nil surname is taken from
// the father, in which case it becomes her married name, else from the first
// child's birth surname.
func (f *Factory) CreateMother(familyID int, given string, surname *string, sex model.Sex) (int, error) {
	fam, err := f.tree.Family(familyID)
	if err != nil {
		return model.None, fmt.Errorf("create mother: %w", err)
	}

	level, inherited := 0, ""
	nameType := model.NameBirth
	switch {
	case fam.HasFather():
		father := &f.tree.People[fam.Father]
		level, inherited = father.Level, father.Surname()
		if surname == nil {
			nameType = model.NameMarried
		}
	case len(fam.Children) > 0:
		child := &f.tree.People[fam.Children[0]]
		level, inherited = child.Level-1, child.BirthSurname()
	}

	name := model.Name{Type: nameType, Given: given, Surname: pick(surname, inherited)}
	return f.tree.AddMother(familyID, f.newPerson(level, sex, name))
}

// CreateChild appends a child to the family with a drawn pedigree. A nil
// surname is taken from the father, else the mother, else the first sibling.
func (f *Factory) CreateChild(familyID int, given string, surname *string, sex model.Sex) (int, error) {
	fam, err := f.tree.Family(familyID)
	if err != nil {
		return model.None, fmt.Errorf("create child: %w", err)
	}

	level, inherited := 0, ""
	switch {
	case fam.HasFather():
		father := &f.tree.People[fam.Father]
		level, inherited = father.Level+1, father.Surname()
	case fam.HasMother():
		mother := &f.tree.People[fam.Mother]
		level, inherited = mother.Level+1, mother.Surname()
	case len(fam.Children) > 0:
		sibling := &f.tree.People[fam.Children[0]]
		level, inherited = sibling.Level, sibling.BirthSurname()
	}

	pedigree, err := f.pedigree.Sample(f.rng)
	if err != nil {
		return model.None, fmt.Errorf("child pedigree: %w", err)
	}

	name := model.Name{Type: model.NameBirth, Given: given, Surname: pick(surname, inherited)}
	p := f.newPerson(level, sex, name)
	p.Pedigree = pedigree
	return f.tree.AddChild(familyID, p)
}

// CreateFamily creates a family with a drawn legal status and links every
// given member to it. Absent parents are model.None. Children joining
// without a pedigree get one drawn.
func (f *Factory) CreateFamily(father, mother int, children []int) (int, error) {
	status, err := f.legal.Sample(f.rng)
	if err != nil {
		return model.None, fmt.Errorf("legal status: %w", err)
	}
	familyID, err := f.tree.AddFamily(model.Family{
		LegalStatus: status,
		Father:      father,
		Mother:      mother,
		Children:    children,
		ChangeDate:  f.policy.FinalDate,
	})
	if err != nil {
		return model.None, err
	}

	for _, id := range children {
		child := &f.tree.People[id]
		if child.Pedigree != "" {
			continue
		}
		if child.Pedigree, err = f.pedigree.Sample(f.rng); err != nil {
			return model.None, fmt.Errorf("child pedigree: %w", err)
		}
	}
	return familyID, nil
}

// GenerateRoot creates a decorated root. A nil surname is drawn from the
// surname table matching the sex.
func (f *Factory) GenerateRoot(d Draft) (int, error) {
	sex, given, err := f.fill(d)
	if err != nil {
		return model.None, err
	}

	var surname string
	if d.Surname != nil {
		surname = *d.Surname
	} else if surname, err = f.lastNames(sex).Sample(f.rng); err != nil {
		return model.None, fmt.Errorf("root surname: %w", err)
	}

	id := f.CreateRoot(given, surname, sex)
	return id, f.decorate(id)
}

// GenerateChild creates a decorated child in the family.
func (f *Factory) GenerateChild(familyID int, d Draft) (int, error) {
	sex, given, err := f.fill(d)
	if err != nil {
		return model.None, err
	}
	id, err := f.CreateChild(familyID, given, d.Surname, sex)
	if err != nil {
		return model.None, err
	}
	return id, f.decorate(id)
}

// GenerateParent creates a decorated parent in the family. The father slot
// is filled first unless it is taken, or unless the mother slot is taken and
// the parent is male.
func (f *Factory) GenerateParent(familyID int, d Draft) (int, error) {
	fam, err := f.tree.Family(familyID)
	if err != nil {
		return model.None, fmt.Errorf("generate parent: %w", err)
	}
	sex, given, err := f.fill(d)
	if err != nil {
		return model.None, err
	}

	if !fam.HasFather() || (fam.HasMother() && sex == model.SexMale) {
		id, err := f.CreateFather(familyID, given, d.Surname, sex)
		if err != nil {
			return model.None, err
		}
		return id, f.decorate(id)
	}

	id, err := f.CreateMother(familyID, given, d.Surname, sex)
	if err != nil {
		return model.None, err
	}
	if err := f.addMaidenName(id); err != nil {
		return model.None, err
	}
	return id, f.decorate(id)
}

// GenerateFamilyInclPerson builds a family around an existing person, who
// takes the given role. Missing parents are generated, then children until
// there are numChildren of them and at least minMaleChildren are male.
func (f *Factory) GenerateFamilyInclPerson(personID int, role model.Role, numChildren, minMaleChildren int) (int, error) {
	p, err := f.tree.Person(personID)
	if err != nil {
		return model.None, fmt.Errorf("family around person: %w", err)
	}

	father, mother := model.None, model.None
	var children []int
	males := 0
	switch role {
	case model.RoleFather:
		father = personID
	case model.RoleMother:
		mother = personID
	case model.RoleChild:
		children = []int{personID}
		if p.Sex == model.SexMale {
			males++
		}
	default:
		return model.None, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	familyID, err := f.CreateFamily(father, mother, children)
	if err != nil {
		return model.None, err
	}
	if father == model.None {
		if _, err := f.GenerateParent(familyID, Draft{Sex: model.SexMale}); err != nil {
			return model.None, err
		}
	}
	if mother == model.None {
		if _, err := f.GenerateParent(familyID, Draft{Sex: model.SexFemale}); err != nil {
			return model.None, err
		}
	}

	existing := len(children)
	total := max(numChildren, existing)
	if missing := minMaleChildren - males; missing > 0 && total-existing < missing {
		total = existing + missing
	}

	for slot := existing; slot < total; slot++ {
		sex, err := f.sex.Sample(f.rng)
		if err != nil {
			return model.None, fmt.Errorf("child sex: %w", err)
		}
		if sex != model.SexMale && minMaleChildren-males >= total-slot {
			sex = model.SexMale
			f.forcedMales++
			metrics.RecordForcedMaleChild()
		}
		if sex == model.SexMale {
			males++
		}
		if _, err := f.GenerateChild(familyID, Draft{Sex: sex}); err != nil {
			return model.None, err
		}
	}
	return familyID, nil
}

// RandomChild picks a child of the given sex uniformly.
func (f *Factory) RandomChild(familyID int, sex model.Sex) (int, bool) {
	fam, err := f.tree.Family(familyID)
	if err != nil {
		return model.None, false
	}
	var matching []int
	for _, id := range fam.Children {
		if f.tree.People[id].Sex == sex {
			matching = append(matching, id)
		}
	}
	if len(matching) == 0 {
		return model.None, false
	}
	return matching[f.rng.Intn(len(matching))], true
}

func (f *Factory) newPerson(level int, sex model.Sex, name model.Name) model.Person {
	return model.Person{
		Level:      level,
		Names:      []model.Name{name},
		Sex:        sex,
		ChangeDate: f.policy.FinalDate,
	}
}

// fill draws the sex and given names a draft leaves open.
func (f *Factory) fill(d Draft) (model.Sex, string, error) {
	sex := d.Sex
	if sex == "" {
		drawn, err := f.sex.Sample(f.rng)
		if err != nil {
			return "", "", fmt.Errorf("sex: %w", err)
		}
		sex = drawn
	}

	given := d.Given
	if given == "" {
		drawn, err := f.givenNames(sex)
		if err != nil {
			return "", "", err
		}
		given = drawn
	}
	return sex, given, nil
}

// givenNames draws a first name and, with SecondNameChance percent, a
// second one from the same table.
func (f *Factory) givenNames(sex model.Sex) (string, error) {
	table := f.firstNames(sex)
	given, err := table.Sample(f.rng)
	if err != nil {
		return "", fmt.Errorf("given name: %w", err)
	}
	if f.rng.Intn(percent) < f.policy.SecondNameChance {
		second, err := table.Sample(f.rng)
		if err != nil {
			return "", fmt.Errorf("second given name: %w", err)
		}
		given += " " + second
	}
	return given, nil
}

func (f *Factory) firstNames(sex model.Sex) distribution.CDF[string] {
	if f.male(sex) {
		return f.policy.FirstNamesMale
	}
	return f.policy.FirstNamesFemale
}

func (f *Factory) lastNames(sex model.Sex) distribution.CDF[string] {
	if f.male(sex) {
		return f.policy.LastNamesMale
	}
	return f.policy.LastNamesFemale
}

// male decides which table serves a sex; other sexes flip a coin.
func (f *Factory) male(sex model.Sex) bool {
	switch sex {
	case model.SexMale:
		return true
	case model.SexFemale:
		return false
	default:
		return f.rng.Intn(2) == 0
	}
}

// addMaidenName gives a married mother a birth surname different from her
// married one.
func (f *Factory) addMaidenName(personID int) error {
	p := &f.tree.People[personID]
	if !f.policy.MaidenNames || p.Primary().Type != model.NameMarried {
		return nil
	}
	table := f.policy.LastNamesFemale
	if table.Distinct() < 2 {
		return nil
	}
	maiden, err := table.SampleExcluding(f.rng, p.Surname())
	if err != nil {
		return fmt.Errorf("maiden name: %w", err)
	}
	p.Names = append(p.Names, model.Name{Type: model.NameMaiden, Given: p.Given(), Surname: maiden})
	return nil
}

// decorate adds the optional birth event and UID to a generated person.
func (f *Factory) decorate(personID int) error {
	p := &f.tree.People[personID]
	if f.policy.BirthEvents {
		born := f.policy.epoch().AddDate(p.Level*f.policy.GenerationSpan, 0, f.rng.Intn(365))
		p.Events = append(p.Events, model.Event{Type: model.EventBirth, Date: &born})
	}
	if f.policy.UIDs {
		uid, err := uuid.NewRandomFromReader(f.rng)
		if err != nil {
			return fmt.Errorf("uid: %w", err)
		}
		p.UID = uid
	}
	return nil
}

func pick(surname *string, inherited string) string {
	if surname != nil {
		return *surname
	}
	return inherited
}
