package model

import (
	"testing"

	"github.com/iov-one/pkconv"
	"github.com/iov-one/pkconv/errors"
	"github.com/iov-one/pkconv/pkconvtest/assert"
)

func TestProject(t *testing.T) {
	ind := NewIndividual("John", Species{Name: HumanSpecies})
	sim := &IndividualSimulation{Name: "sim", Individual: NewCloner().CloneIndividual(ind)}
	p := &Project{Name: "sample", Version: pkconv.V7_1_0}
	p.Add(ind, sim)

	assert.Nil(t, p.Validate())
	assert.Equal(t, ind, p.ByName("John"))
	if p.ByName("missing") != nil {
		t.Fatal("unexpected building block")
	}
	assert.Equal(t, 1, len(p.OfKind(KindIndividualSimulation)))
	assert.Equal(t, 0, len(p.OfKind(KindPopulation)))
	assert.Equal(t, "individual simulation", sim.Kind().String())

	p.Add(&PopulationSimulation{Name: "broken"})
	p.Version = 0
	err := p.Validate()
	assert.FieldError(t, err, "Version", errors.ErrSchema)
	assert.FieldError(t, err, "BuildingBlocks.0", nil)
	assert.FieldError(t, err, "BuildingBlocks.2", errors.ErrEmpty)
}
