package model

// Kind identifies the variant of a building block.
type Kind int

const (
	KindUnknown Kind = iota
	KindIndividual
	KindPopulation
	KindIndividualSimulation
	KindPopulationSimulation
)

// String returns a human readable label for the kind.
func (k Kind) String() string {
	switch k {
	case KindIndividual:
		return "individual"
	case KindPopulation:
		return "population"
	case KindIndividualSimulation:
		return "individual simulation"
	case KindPopulationSimulation:
		return "population simulation"
	default:
		return "unknown"
	}
}

// BuildingBlock is implemented by every top level element of a project.
type BuildingBlock interface {
	Kind() Kind
	GetID() string
	GetName() string
	Validate() error
}

var (
	_ BuildingBlock = (*Individual)(nil)
	_ BuildingBlock = (*Population)(nil)
	_ BuildingBlock = (*IndividualSimulation)(nil)
	_ BuildingBlock = (*PopulationSimulation)(nil)
)
