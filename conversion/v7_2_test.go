package conversion

import (
	"strings"
	"testing"

	"github.com/iov-one/pkconv"
	"github.com/iov-one/pkconv/errors"
	"github.com/iov-one/pkconv/migration"
	"github.com/iov-one/pkconv/model"
	"github.com/iov-one/pkconv/node"
	"github.com/iov-one/pkconv/pkconvtest"
	"github.com/iov-one/pkconv/pkconvtest/assert"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	weightPath = model.Path(model.OrganismName, model.ParameterWeight)
	heightPath = model.Path(model.OrganismName, model.ParameterHeight)
	bsaPath    = model.Path(model.OrganismName, model.ParameterBSA)
)

type fixture struct {
	deps        Dependencies
	individuals *pkconvtest.Individuals
	cloner      *pkconvtest.Cloner
	pipeline    *migration.Pipeline
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	f := &fixture{
		individuals: &pkconvtest.Individuals{Human: pkconvtest.DefaultHuman(t)},
		cloner:      &pkconvtest.Cloner{Prefix: "clone"},
	}
	f.deps = Dependencies{
		OrganTypes: pkconvtest.OrganTypes{
			"Kidney_old": "Kidney",
			"Liver_old":  "Liver",
		},
		Individuals: f.individuals,
		Cloner:      f.cloner,
		Paths:       model.PathResolver{},
		CalculationMethods: pkconvtest.CalculationMethods{
			{Name: BSADuBois, Category: CategoryBSA},
			{Name: BSAMosteller, Category: CategoryBSA},
		},
		Logger: log.TestingLogger(),
	}
	p, err := NewPipeline(f.deps)
	if err != nil {
		t.Fatalf("cannot create pipeline: %+v", err)
	}
	f.pipeline = p
	return f
}

func (f *fixture) migrate(t testing.TB, obj model.BuildingBlock) {
	t.Helper()
	v, err := f.pipeline.ConvertGraph(obj, pkconv.V7_1_0)
	if err != nil {
		t.Fatalf("cannot migrate: %+v", err)
	}
	assert.Equal(t, pkconv.V7_2_0, v)
}

func TestConvertIndividual(t *testing.T) {
	cases := map[string]struct {
		ind        func(t testing.TB) *model.Individual
		wantBSA    float64
		wantMethod string
		wantClones int
	}{
		"human without BSA": {
			ind: func(t testing.TB) *model.Individual {
				return pkconvtest.Human(t, "john", 80, 180)
			},
			wantBSA:    pkconvtest.DefaultBSA,
			wantMethod: BSADuBois,
			wantClones: 1,
		},
		"human with BSA": {
			ind: func(t testing.TB) *model.Individual {
				ind := pkconvtest.Human(t, "john", 80, 180)
				ind.OriginData.AddCalculationMethod(model.CalculationMethod{Name: BSAMosteller, Category: CategoryBSA})
				assert.Nil(t, ind.Organism.AddParameter(model.NewParameter(model.ParameterBSA, 2.1, "m²")))
				return ind
			},
			wantBSA:    2.1,
			wantMethod: BSAMosteller,
			wantClones: 0,
		},
		"human with other BSA method": {
			ind: func(t testing.TB) *model.Individual {
				ind := pkconvtest.Human(t, "john", 80, 180)
				ind.OriginData.AddCalculationMethod(model.CalculationMethod{Name: BSAMosteller, Category: CategoryBSA})
				return ind
			},
			wantBSA:    pkconvtest.DefaultBSA,
			wantMethod: BSADuBois,
			wantClones: 1,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			ind := tc.ind(t)
			f.migrate(t, ind)

			bsa := ind.Organism.Parameter(model.ParameterBSA)
			if bsa == nil {
				t.Fatal("BSA parameter missing")
			}
			assert.Equal(t, tc.wantBSA, bsa.Value)
			assert.Equal(t, ind.Organism, bsa.Parent())
			assert.Equal(t, 1, len(ind.OriginData.CalculationMethods))
			cm, _ := ind.OriginData.CalculationMethod(CategoryBSA)
			assert.Equal(t, tc.wantMethod, cm.Name)
			assert.Equal(t, tc.wantClones, f.cloner.CallCount())
		})
	}
}

func TestConvertIndividualSkipsNonHuman(t *testing.T) {
	f := newFixture(t)
	dog := pkconvtest.Animal(t, "rex", "Dog")
	f.migrate(t, dog)

	if dog.Organism.Parameter(model.ParameterBSA) != nil {
		t.Fatal("BSA added to a dog")
	}
	assert.Equal(t, 0, len(dog.OriginData.CalculationMethods))
	assert.Equal(t, 0, f.individuals.CallCount())

	// A nil individual is skipped as well.
	f.migrate(t, (*model.Individual)(nil))
}

// A human subject without BSA is given a copy of the template BSA. Running
// the same rule again does not change anything.
func TestBSAInjectionIsNotRepeated(t *testing.T) {
	f := newFixture(t)
	ind := pkconvtest.Human(t, "john", 80, 180)
	f.migrate(t, ind)

	template := f.individuals.Human.Organism.Parameter(model.ParameterBSA)
	bsa := ind.Organism.Parameter(model.ParameterBSA)
	assert.Equal(t, template.Value, bsa.Value)
	assert.Equal(t, template.Unit, bsa.Unit)
	assert.Equal(t, "clone-1", bsa.ID)
	if bsa == template {
		t.Fatal("template parameter must be cloned")
	}

	step := f.pipeline.Plan(pkconv.V7_1_0)[0]
	assert.Nil(t, step.Typed(ind))
	assert.Nil(t, step.Typed(ind))

	var count int
	for _, p := range ind.Organism.Parameters {
		if p.Name == model.ParameterBSA {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, len(ind.OriginData.CalculationMethods))
	assert.Equal(t, 1, f.cloner.CallCount())

	// The template is never modified.
	assert.Equal(t, 3, len(f.individuals.Human.Organism.Parameters))
	assert.Equal(t, 0, len(f.individuals.Human.OriginData.CalculationMethods))
}

func TestConvertPopulation(t *testing.T) {
	f := newFixture(t)
	pop := pkconvtest.Population(t, "adults", pkconvtest.Human(t, "template", 70, 170), 3, map[string][]float64{
		heightPath: {160, 170, 180},
		weightPath: {60, 70, 80},
	})
	f.migrate(t, pop)

	values, ok := pop.Values.Values(bsaPath)
	if !ok {
		t.Fatal("BSA table missing")
	}
	assert.Floats(t, []float64{
		DuBois(160, 60),
		DuBois(170, 70),
		DuBois(180, 80),
	}, values, 1e-12)
	assert.Equal(t, 3, pop.Count())

	// The first individual is converted as well.
	if pop.FirstIndividual.Organism.Parameter(model.ParameterBSA) == nil {
		t.Fatal("first individual BSA missing")
	}
	cm, _ := pop.FirstIndividual.OriginData.CalculationMethod(CategoryBSA)
	assert.Equal(t, BSADuBois, cm.Name)

	// Only the BSA parameter of the first individual is cloned.
	assert.Equal(t, 1, f.cloner.CallCount())

	// Running the rule again does not create another table and clones nothing.
	step := f.pipeline.Plan(pkconv.V7_1_0)[0]
	assert.Nil(t, step.Typed(pop))
	assert.Equal(t, []string{heightPath, weightPath, bsaPath}, pop.Values.Paths())
	assert.Equal(t, 1, f.cloner.CallCount())
}

func TestConvertPopulationRepeatsTemplateValues(t *testing.T) {
	f := newFixture(t)
	pop := pkconvtest.Population(t, "adults", pkconvtest.Human(t, "template", 70, 170), 2, map[string][]float64{
		weightPath: {60, 80},
	})
	f.migrate(t, pop)

	values, _ := pop.Values.Values(bsaPath)
	assert.Floats(t, []float64{DuBois(170, 60), DuBois(170, 80)}, values, 1e-12)
}

func TestConvertPopulationUsesIndividualMethod(t *testing.T) {
	f := newFixture(t)
	first := pkconvtest.Human(t, "template", 70, 170)
	first.OriginData.AddCalculationMethod(model.CalculationMethod{Name: BSAMosteller, Category: CategoryBSA})
	assert.Nil(t, first.Organism.AddParameter(model.NewParameter(model.ParameterBSA, 1.8, "m²")))
	pop := pkconvtest.Population(t, "adults", first, 2, map[string][]float64{
		heightPath: {150, 190},
	})
	f.migrate(t, pop)

	values, _ := pop.Values.Values(bsaPath)
	assert.Floats(t, []float64{Mosteller(150, 70), Mosteller(190, 70)}, values, 1e-12)
}

func TestConvertPopulationSkips(t *testing.T) {
	cases := map[string]struct {
		pop func(t testing.TB) *model.Population
	}{
		"not human": {
			pop: func(t testing.TB) *model.Population {
				return pkconvtest.Population(t, "dogs", pkconvtest.Animal(t, "rex", "Dog"), 2, map[string][]float64{
					weightPath: {10, 20},
				})
			},
		},
		"no subjects": {
			pop: func(t testing.TB) *model.Population {
				return pkconvtest.Population(t, "empty", pkconvtest.Human(t, "template", 70, 170), 0, nil)
			},
		},
		"BSA values present": {
			pop: func(t testing.TB) *model.Population {
				return pkconvtest.Population(t, "adults", pkconvtest.Human(t, "template", 70, 170), 2, map[string][]float64{
					bsaPath: {1.5, 1.6},
				})
			},
		},
		"height values missing": {
			pop: func(t testing.TB) *model.Population {
				first := pkconvtest.Human(t, "template", 70, 170)
				first.Organism.RemoveParameter(model.ParameterHeight)
				return pkconvtest.Population(t, "adults", first, 2, map[string][]float64{
					weightPath: {60, 80},
				})
			},
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			pop := tc.pop(t)
			before := pop.Values.Paths()
			count := pop.Count()

			f.migrate(t, pop)

			assert.Equal(t, before, pop.Values.Paths())
			assert.Equal(t, count, pop.Count())
		})
	}
}

func TestConvertSimulations(t *testing.T) {
	f := newFixture(t)
	indSim := &model.IndividualSimulation{Name: "s1", Individual: pkconvtest.Human(t, "john", 80, 180)}
	popSim := &model.PopulationSimulation{
		Name: "s2",
		Population: pkconvtest.Population(t, "adults", pkconvtest.Human(t, "template", 70, 170), 2, map[string][]float64{
			weightPath: {60, 80},
		}),
	}
	f.migrate(t, indSim)
	f.migrate(t, popSim)
	f.migrate(t, &model.IndividualSimulation{Name: "empty"})

	if indSim.Individual.Organism.Parameter(model.ParameterBSA) == nil {
		t.Fatal("simulation individual not converted")
	}
	if !popSim.Population.Values.Has(bsaPath) {
		t.Fatal("simulation population not converted")
	}
}

func TestConvertMissingTemplateParameter(t *testing.T) {
	f := newFixture(t)
	f.individuals.Human.Organism.RemoveParameter(model.ParameterBSA)

	_, err := f.pipeline.ConvertGraph(pkconvtest.Human(t, "john", 80, 180), pkconv.V7_1_0)
	if !errors.ErrState.Is(err) {
		t.Fatalf("unexpected error: %+v", err)
	}
}

func TestConvertMissingCalculationMethod(t *testing.T) {
	f := newFixture(t)
	f.deps.CalculationMethods = pkconvtest.CalculationMethods{}
	p, err := NewPipeline(f.deps)
	assert.Nil(t, err)

	_, err = p.ConvertGraph(pkconvtest.Human(t, "john", 80, 180), pkconv.V7_1_0)
	if !errors.ErrNotFound.Is(err) {
		t.Fatalf("unexpected error: %+v", err)
	}
}

const legacyDocument = `<Project name="sample" version="700">
  <Individual name="John">
    <Container name="Organism">
      <Container name="Kidney" organ="Kidney_old"></Container>
    </Container>
  </Individual>
</Project>`

func TestConvertOrganTypes(t *testing.T) {
	f := newFixture(t)

	root, err := node.Decode(strings.NewReader(legacyDocument))
	assert.Nil(t, err)
	v, err := f.pipeline.ConvertStructural(root, pkconv.V7_0_0)
	assert.Nil(t, err)
	assert.Equal(t, pkconv.V7_2_0, v)

	kidney := root.Child("Individual").Child("Container").Child("Container")
	assert.Equal(t, false, kidney.HasAttr(AttributeOrgan))
	organType, _ := kidney.Attr(AttributeOrganType)
	assert.Equal(t, "Kidney", organType)

	// The typed pass of the first step is a no operation.
	ind := pkconvtest.Human(t, "john", 80, 180)
	v, err = f.pipeline.ConvertGraph(ind, pkconv.V7_0_0)
	assert.Nil(t, err)
	assert.Equal(t, pkconv.V7_2_0, v)
}

func TestConvertUnknownOrganType(t *testing.T) {
	f := newFixture(t)

	root, err := node.Decode(strings.NewReader(legacyDocument))
	assert.Nil(t, err)
	root.Child("Individual").Child("Container").Child("Container").SetAttr(AttributeOrgan, "Unknown_old")

	_, err = f.pipeline.ConvertStructural(root, pkconv.V7_0_0)
	if !errors.ErrUnknownLegacyValue.Is(err) {
		t.Fatalf("unexpected error: %+v", err)
	}
	// The rename step succeeded, the value was not rewritten.
	organType, _ := root.Child("Individual").Child("Container").Child("Container").Attr(AttributeOrganType)
	assert.Equal(t, "Unknown_old", organType)
}

func TestDependenciesValidate(t *testing.T) {
	err := Dependencies{Paths: model.PathResolver{}}.Validate()
	assert.FieldError(t, err, "OrganTypes", errors.ErrEmpty)
	assert.FieldError(t, err, "Individuals", errors.ErrEmpty)
	assert.FieldError(t, err, "Cloner", errors.ErrEmpty)
	assert.FieldError(t, err, "Paths", nil)
	assert.FieldError(t, err, "CalculationMethods", errors.ErrEmpty)

	if _, err := NewPipeline(Dependencies{}); !errors.ErrEmpty.Is(err) {
		t.Fatalf("unexpected error: %+v", err)
	}
}
