package model

import "github.com/google/uuid"

// Cloneable is implemented by model elements that can produce a deep copy of
// themselves. A copy never shares memory with its source.
type Cloneable interface {
	Copy() Cloneable
}

type identified interface {
	renewIDs(newID func() string)
}

var (
	_ identified = (*Parameter)(nil)
	_ identified = (*Container)(nil)
	_ identified = (*Individual)(nil)
	_ identified = (*Population)(nil)
	_ identified = (*IndividualSimulation)(nil)
	_ identified = (*PopulationSimulation)(nil)
)

// Cloner creates deep copies of model elements that are given new
// identifiers. The zero value Cloner keeps the source identifiers.
type Cloner struct {
	newID func() string
}

// NewCloner returns a cloner assigning random UUIDs.
func NewCloner() Cloner {
	return Cloner{newID: uuid.NewString}
}

// NewClonerWithIDs returns a cloner using the given identifier generator.
func NewClonerWithIDs(newID func() string) Cloner {
	return Cloner{newID: newID}
}

// Clone returns a deep copy of src.
func (c Cloner) Clone(src Cloneable) Cloneable {
	cpy := src.Copy()
	if c.newID == nil {
		return cpy
	}
	if r, ok := cpy.(identified); ok {
		r.renewIDs(c.newID)
	}
	return cpy
}

// CloneParameter is a typed shortcut for Clone.
func (c Cloner) CloneParameter(p *Parameter) *Parameter {
	return c.Clone(p).(*Parameter)
}

// CloneIndividual is a typed shortcut for Clone.
func (c Cloner) CloneIndividual(i *Individual) *Individual {
	return c.Clone(i).(*Individual)
}
