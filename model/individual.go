package model

import (
	"strings"

	"github.com/iov-one/pkconv/errors"
)

// Names of well known organism parameters.
const (
	OrganismName = "Organism"

	ParameterWeight = "Weight"
	ParameterHeight = "Height"
	ParameterBSA    = "BSA"
)

// HumanSpecies is the name of the human species.
const HumanSpecies = "Human"

// Species of a simulation subject.
type Species struct {
	Name string
}

// IsHuman returns true if the species is human.
func (s Species) IsHuman() bool {
	return s.Name == HumanSpecies
}

// CalculationMethod references an entry of the calculation method catalog.
// At most one method per category is used by a subject.
type CalculationMethod struct {
	Name     string
	Category string
}

// OriginData describes how a subject was created.
type OriginData struct {
	Population         string
	Gender             string
	CalculationMethods []CalculationMethod
}

// CalculationMethod returns the method used for the given category.
func (o *OriginData) CalculationMethod(category string) (CalculationMethod, bool) {
	for _, cm := range o.CalculationMethods {
		if cm.Category == category {
			return cm, true
		}
	}
	return CalculationMethod{}, false
}

// AddCalculationMethod sets the method for its category, replacing any
// method of the same category.
func (o *OriginData) AddCalculationMethod(cm CalculationMethod) {
	for i, existing := range o.CalculationMethods {
		if existing.Category == cm.Category {
			o.CalculationMethods[i] = cm
			return
		}
	}
	o.CalculationMethods = append(o.CalculationMethods, cm)
}

func (o OriginData) copy() OriginData {
	cpy := o
	cpy.CalculationMethods = append([]CalculationMethod(nil), o.CalculationMethods...)
	return cpy
}

// Individual is a single simulation subject.
type Individual struct {
	ID         string
	Name       string
	Species    Species
	OriginData OriginData
	Organism   *Container
}

// NewIndividual returns an individual with an empty organism.
func NewIndividual(name string, species Species) *Individual {
	return &Individual{
		Name:     name,
		Species:  species,
		Organism: NewContainer(OrganismName),
	}
}

func (i *Individual) Kind() Kind      { return KindIndividual }
func (i *Individual) GetID() string   { return i.ID }
func (i *Individual) GetName() string { return i.Name }

// IsHuman returns true if the individual is of the human species.
func (i *Individual) IsHuman() bool {
	return i.Species.IsHuman()
}

// ParameterByPath returns the parameter addressed by a path as created by
// PathResolver, for example Organism|Weight.
func (i *Individual) ParameterByPath(path string) *Parameter {
	if i.Organism == nil {
		return nil
	}
	names := strings.Split(path, PathSeparator)
	if len(names) < 2 || names[0] != i.Organism.Name {
		return nil
	}
	return i.Organism.Find(names[1:]...)
}

// Copy returns a deep copy of the individual.
func (i *Individual) Copy() Cloneable {
	cpy := &Individual{
		ID:         i.ID,
		Name:       i.Name,
		Species:    i.Species,
		OriginData: i.OriginData.copy(),
	}
	if i.Organism != nil {
		cpy.Organism = i.Organism.copyContainer()
	}
	return cpy
}

func (i *Individual) renewIDs(newID func() string) {
	i.ID = newID()
	if i.Organism != nil {
		i.Organism.renewIDs(newID)
	}
}

func (i *Individual) Validate() error {
	var errs error
	if i.Name == "" {
		errs = errors.AppendField(errs, "Name", errors.ErrEmpty)
	}
	if i.Species.Name == "" {
		errs = errors.AppendField(errs, "Species", errors.ErrEmpty)
	}
	if i.Organism == nil {
		errs = errors.AppendField(errs, "Organism", errors.ErrEmpty)
	} else {
		errs = errors.AppendField(errs, "Organism", i.Organism.Validate())
	}
	seen := make(map[string]struct{})
	for _, cm := range i.OriginData.CalculationMethods {
		if _, ok := seen[cm.Category]; ok {
			errs = errors.AppendField(errs, "OriginData.CalculationMethods",
				errors.Wrapf(errors.ErrDuplicate, "category %q", cm.Category))
		}
		seen[cm.Category] = struct{}{}
	}
	return errs
}
