package pkconvtest

import (
	"sort"
	"testing"

	"github.com/iov-one/pkconv/model"
)

// DefaultBSA is the body surface area of DefaultHuman.
const DefaultBSA = 1.9

// DefaultHuman returns a default human template of 73 kg and 176 cm.
func DefaultHuman(t testing.TB) *model.Individual {
	t.Helper()
	ind := Human(t, "Default human", 73, 176)
	addParameter(t, ind.Organism, model.NewParameter(model.ParameterBSA, DefaultBSA, "m²"))
	ind.ID = "default-human"
	return ind
}

// Human returns a human individual with the given weight in kg and height in
// cm. The individual has no BSA parameter and no calculation methods.
func Human(t testing.TB, name string, weight, height float64) *model.Individual {
	t.Helper()
	ind := model.NewIndividual(name, model.Species{Name: model.HumanSpecies})
	ind.ID = name
	ind.OriginData.Population = "European_ICRP_2002"
	ind.OriginData.Gender = "MALE"
	addParameter(t, ind.Organism, model.NewParameter(model.ParameterWeight, weight, "kg"))
	addParameter(t, ind.Organism, model.NewParameter(model.ParameterHeight, height, "cm"))
	return ind
}

// Animal returns an individual of the given non human species.
func Animal(t testing.TB, name, species string) *model.Individual {
	t.Helper()
	ind := model.NewIndividual(name, model.Species{Name: species})
	ind.ID = name
	addParameter(t, ind.Organism, model.NewParameter(model.ParameterWeight, 0.3, "kg"))
	return ind
}

// Population returns a population of count subjects created from the given
// template. Tables maps parameter paths to per subject values.
func Population(t testing.TB, name string, first *model.Individual, count int, tables map[string][]float64) *model.Population {
	t.Helper()
	pop := &model.Population{
		ID:              name,
		Name:            name,
		FirstIndividual: first,
		Values:          model.NewIndividualValuesCache(count),
	}
	paths := make([]string, 0, len(tables))
	for path := range tables {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		values := tables[path]
		if err := pop.Values.Add(model.NewParameterValues(path, values...)); err != nil {
			t.Fatalf("cannot add %q table: %s", path, err)
		}
	}
	return pop
}

func addParameter(t testing.TB, c *model.Container, p *model.Parameter) {
	t.Helper()
	if err := c.AddParameter(p); err != nil {
		t.Fatalf("cannot add parameter: %s", err)
	}
}
