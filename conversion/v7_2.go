package conversion

import (
	"github.com/iov-one/pkconv"
	"github.com/iov-one/pkconv/errors"
	"github.com/iov-one/pkconv/migration"
	"github.com/iov-one/pkconv/model"
	"github.com/tendermint/tendermint/libs/log"
)

// converter710To720 re-encodes organ types and introduces the body surface
// area parameter of human subjects.
type converter710To720 struct {
	deps   Dependencies
	logger log.Logger
}

func newConverter710To720(deps Dependencies) *converter710To720 {
	return &converter710To720{
		deps:   deps,
		logger: deps.logger().With("step", "7.2.0"),
	}
}

func (c *converter710To720) step() migration.Step {
	v := migration.NewVisitor().
		Handle(model.KindIndividual, c.visitIndividual).
		Handle(model.KindPopulation, c.visitPopulation).
		Handle(model.KindIndividualSimulation, c.visitIndividualSimulation).
		Handle(model.KindPopulationSimulation, c.visitPopulationSimulation)
	return migration.Step{
		Name:       "7.1.0 -> 7.2.0 body surface area",
		From:       pkconv.V7_1_0,
		To:         pkconv.V7_2_0,
		Structural: migration.RewriteAttribute(AttributeOrganType, c.deps.OrganTypes.OrganTypeFor),
		Typed:      v.Typed(),
	}
}

func (c *converter710To720) visitIndividual(_ *migration.Visitor, obj model.BuildingBlock) error {
	ind, ok := obj.(*model.Individual)
	if !ok {
		return errors.WithType(errors.ErrType, obj)
	}
	return c.convertIndividual(ind)
}

func (c *converter710To720) visitPopulation(_ *migration.Visitor, obj model.BuildingBlock) error {
	pop, ok := obj.(*model.Population)
	if !ok {
		return errors.WithType(errors.ErrType, obj)
	}
	if pop == nil {
		c.skip("no population")
		return nil
	}
	if err := c.convertIndividual(pop.FirstIndividual); err != nil {
		return errors.Wrap(err, "first individual")
	}
	return c.addBSAParameterValues(pop)
}

func (c *converter710To720) visitIndividualSimulation(v *migration.Visitor, obj model.BuildingBlock) error {
	sim, ok := obj.(*model.IndividualSimulation)
	if !ok {
		return errors.WithType(errors.ErrType, obj)
	}
	if sim == nil || sim.Individual == nil {
		c.skip("simulation without individual")
		return nil
	}
	return errors.Wrap(v.Visit(sim.Individual), "individual")
}

func (c *converter710To720) visitPopulationSimulation(v *migration.Visitor, obj model.BuildingBlock) error {
	sim, ok := obj.(*model.PopulationSimulation)
	if !ok {
		return errors.WithType(errors.ErrType, obj)
	}
	if sim == nil || sim.Population == nil {
		c.skip("simulation without population")
		return nil
	}
	return errors.Wrap(v.Visit(sim.Population), "population")
}

// convertIndividual adds a copy of the default human BSA parameter to a human
// individual that does not define one.
func (c *converter710To720) convertIndividual(ind *model.Individual) error {
	if ind == nil {
		c.skip("no individual")
		return nil
	}
	if !ind.IsHuman() {
		c.skip("not human", "individual", ind.Name, "species", ind.Species.Name)
		return nil
	}
	if ind.Organism == nil {
		c.skip("no organism", "individual", ind.Name)
		return nil
	}
	if ind.Organism.Parameter(model.ParameterBSA) != nil {
		c.skip("BSA already defined", "individual", ind.Name)
		return nil
	}

	template, err := c.defaultHuman()
	if err != nil {
		return err
	}
	bsa, ok := c.deps.Cloner.Clone(template.Organism.Parameter(model.ParameterBSA)).(*model.Parameter)
	if !ok {
		return errors.Wrap(errors.ErrType, "cloned BSA parameter")
	}
	if err := ind.Organism.AddParameter(bsa); err != nil {
		return errors.Wrap(err, "add BSA parameter")
	}
	return c.addBSACalculationMethod(ind)
}

func (c *converter710To720) addBSACalculationMethod(ind *model.Individual) error {
	if !ind.Species.IsHuman() {
		return nil
	}
	cm, err := c.deps.CalculationMethods.FindByName(BSADuBois)
	if err != nil {
		return errors.Wrap(err, "BSA calculation method")
	}
	ind.OriginData.AddCalculationMethod(cm)
	return nil
}

// addBSAParameterValues derives the body surface area of every subject of a
// human population from its height and weight.
func (c *converter710To720) addBSAParameterValues(pop *model.Population) error {
	if !pop.IsHuman() {
		c.skip("not human", "population", pop.Name)
		return nil
	}
	count := pop.Count()
	if count == 0 {
		c.skip("no subjects", "population", pop.Name)
		return nil
	}

	template, err := c.defaultHuman()
	if err != nil {
		return err
	}
	// Parameter paths of the template are the same as in every subject. The
	// template is only read, so it is not cloned.
	bsaPath := c.deps.Paths.PathFor(template.Organism.Parameter(model.ParameterBSA))
	if pop.Values.Has(bsaPath) {
		c.skip("BSA values already defined", "population", pop.Name)
		return nil
	}
	var (
		weights = pop.AllValuesFor(c.deps.Paths.PathFor(template.Organism.Parameter(model.ParameterWeight)))
		heights = pop.AllValuesFor(c.deps.Paths.PathFor(template.Organism.Parameter(model.ParameterHeight)))
	)
	if len(weights) != len(heights) || len(weights) != count {
		c.skip("height and weight values differ in length", "population", pop.Name,
			"heights", len(heights), "weights", len(weights), "subjects", count)
		return nil
	}

	formula := c.formulaFor(pop.FirstIndividual)
	values := model.NewParameterValues(bsaPath)
	for i := range weights {
		values.Add(formula(heights[i], weights[i]))
	}
	if err := pop.Values.Add(values); err != nil {
		return errors.Wrap(err, "add BSA values")
	}
	return nil
}

// formulaFor returns the formula of the BSA calculation method used by the
// individual. Du Bois is used when no method is set.
//
// This deliberately does not use the method of the default human for every
// population, so that population values agree with the BSA parameter of the
// individual itself.
func (c *converter710To720) formulaFor(ind *model.Individual) BSAFormula {
	if ind != nil {
		if cm, ok := ind.OriginData.CalculationMethod(CategoryBSA); ok {
			if f, ok := FormulaFor(cm.Name); ok {
				return f
			}
			c.logger.Info("unknown BSA calculation method, using Du Bois", "method", cm.Name)
		}
	}
	return DuBois
}

// defaultHuman returns the default human template. A template without the
// parameters required by this step is a catalog error.
func (c *converter710To720) defaultHuman() (*model.Individual, error) {
	human := c.deps.Individuals.DefaultHuman()
	if human == nil || human.Organism == nil {
		return nil, errors.Wrap(errors.ErrState, "no default human")
	}
	for _, name := range []string{model.ParameterBSA, model.ParameterWeight, model.ParameterHeight} {
		if human.Organism.Parameter(name) == nil {
			return nil, errors.Wrapf(errors.ErrState, "default human without %s parameter", name)
		}
	}
	return human, nil
}

func (c *converter710To720) skip(reason string, keyvals ...interface{}) {
	c.logger.Debug("rule skipped", append([]interface{}{"reason", reason}, keyvals...)...)
}
