package model

import "github.com/iov-one/pkconv/errors"

// IndividualSimulation runs a model for a single individual. The simulation
// owns its own copy of the individual.
type IndividualSimulation struct {
	ID         string
	Name       string
	Individual *Individual
}

func (s *IndividualSimulation) Kind() Kind      { return KindIndividualSimulation }
func (s *IndividualSimulation) GetID() string   { return s.ID }
func (s *IndividualSimulation) GetName() string { return s.Name }

// Copy returns a deep copy of the simulation.
func (s *IndividualSimulation) Copy() Cloneable {
	cpy := &IndividualSimulation{ID: s.ID, Name: s.Name}
	if s.Individual != nil {
		cpy.Individual = s.Individual.Copy().(*Individual)
	}
	return cpy
}

func (s *IndividualSimulation) renewIDs(newID func() string) {
	s.ID = newID()
	if s.Individual != nil {
		s.Individual.renewIDs(newID)
	}
}

func (s *IndividualSimulation) Validate() error {
	var errs error
	if s.Name == "" {
		errs = errors.AppendField(errs, "Name", errors.ErrEmpty)
	}
	if s.Individual == nil {
		errs = errors.AppendField(errs, "Individual", errors.ErrEmpty)
	} else {
		errs = errors.AppendField(errs, "Individual", s.Individual.Validate())
	}
	return errs
}

// PopulationSimulation runs a model for every subject of a population. The
// simulation owns its own copy of the population.
type PopulationSimulation struct {
	ID         string
	Name       string
	Population *Population
}

func (s *PopulationSimulation) Kind() Kind      { return KindPopulationSimulation }
func (s *PopulationSimulation) GetID() string   { return s.ID }
func (s *PopulationSimulation) GetName() string { return s.Name }

// Copy returns a deep copy of the simulation.
func (s *PopulationSimulation) Copy() Cloneable {
	cpy := &PopulationSimulation{ID: s.ID, Name: s.Name}
	if s.Population != nil {
		cpy.Population = s.Population.Copy().(*Population)
	}
	return cpy
}

func (s *PopulationSimulation) renewIDs(newID func() string) {
	s.ID = newID()
	if s.Population != nil {
		s.Population.renewIDs(newID)
	}
}

func (s *PopulationSimulation) Validate() error {
	var errs error
	if s.Name == "" {
		errs = errors.AppendField(errs, "Name", errors.ErrEmpty)
	}
	if s.Population == nil {
		errs = errors.AppendField(errs, "Population", errors.ErrEmpty)
	} else {
		errs = errors.AppendField(errs, "Population", s.Population.Validate())
	}
	return errs
}
