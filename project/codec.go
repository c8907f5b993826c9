package project

import (
	"strconv"
	"strings"

	"github.com/iov-one/pkconv"
	"github.com/iov-one/pkconv/errors"
	"github.com/iov-one/pkconv/model"
	"github.com/iov-one/pkconv/node"
)

// Document element names.
const (
	ElemProject              = "Project"
	ElemIndividual           = "Individual"
	ElemPopulation           = "Population"
	ElemIndividualSimulation = "IndividualSimulation"
	ElemPopulationSimulation = "PopulationSimulation"
	ElemOriginData           = "OriginData"
	ElemCalculationMethod    = "CalculationMethod"
	ElemContainer            = "Container"
	ElemParameter            = "Parameter"
	ElemIndividualValues     = "IndividualValues"
	ElemParameterValues      = "ParameterValues"
)

// Document attribute names.
const (
	AttrVersion    = "version"
	AttrID         = "id"
	AttrName       = "name"
	AttrSpecies    = "species"
	AttrPopulation = "population"
	AttrGender     = "gender"
	AttrCategory   = "category"
	AttrOrganType  = "organType"
	AttrValue      = "value"
	AttrUnit       = "unit"
	AttrCount      = "count"
	AttrPath       = "path"
)

// StoredVersion returns the version stamp of a project document.
func StoredVersion(root *node.Node) (pkconv.Version, error) {
	raw, ok := root.Attr(AttrVersion)
	if !ok {
		return 0, errors.Attribute(root.Name, AttrVersion, errors.ErrSchema, "missing version stamp")
	}
	v, err := pkconv.ParseVersion(raw)
	if err != nil {
		return 0, errors.Attribute(root.Name, AttrVersion, err, "")
	}
	return v, nil
}

// Encode returns the document tree of a project. The output is stable: the
// same project always produces the same tree.
func Encode(p *model.Project) (*node.Node, error) {
	root := node.New(ElemProject,
		node.Attr{Name: AttrName, Value: p.Name},
		node.Attr{Name: AttrVersion, Value: p.Version.Stamp()},
	)
	for i, bb := range p.BuildingBlocks {
		n, err := encodeBuildingBlock(bb)
		if err != nil {
			return nil, errors.Field("BuildingBlocks."+strconv.Itoa(i), err, "encode")
		}
		root.Add(n)
	}
	return root, nil
}

func encodeBuildingBlock(bb model.BuildingBlock) (*node.Node, error) {
	switch t := bb.(type) {
	case *model.Individual:
		return encodeIndividual(t), nil
	case *model.Population:
		return encodePopulation(t), nil
	case *model.IndividualSimulation:
		n := node.New(ElemIndividualSimulation, identity(t.ID, t.Name)...)
		if t.Individual != nil {
			n.Add(encodeIndividual(t.Individual))
		}
		return n, nil
	case *model.PopulationSimulation:
		n := node.New(ElemPopulationSimulation, identity(t.ID, t.Name)...)
		if t.Population != nil {
			n.Add(encodePopulation(t.Population))
		}
		return n, nil
	default:
		return nil, errors.WithType(errors.ErrType, bb)
	}
}

func identity(id, name string) []node.Attr {
	var attrs []node.Attr
	if id != "" {
		attrs = append(attrs, node.Attr{Name: AttrID, Value: id})
	}
	return append(attrs, node.Attr{Name: AttrName, Value: name})
}

func encodeIndividual(ind *model.Individual) *node.Node {
	n := node.New(ElemIndividual, identity(ind.ID, ind.Name)...)
	n.SetAttr(AttrSpecies, ind.Species.Name)

	origin := node.New(ElemOriginData)
	if ind.OriginData.Population != "" {
		origin.SetAttr(AttrPopulation, ind.OriginData.Population)
	}
	if ind.OriginData.Gender != "" {
		origin.SetAttr(AttrGender, ind.OriginData.Gender)
	}
	for _, cm := range ind.OriginData.CalculationMethods {
		origin.Add(node.New(ElemCalculationMethod,
			node.Attr{Name: AttrName, Value: cm.Name},
			node.Attr{Name: AttrCategory, Value: cm.Category},
		))
	}
	n.Add(origin)

	if ind.Organism != nil {
		n.Add(encodeContainer(ind.Organism))
	}
	return n
}

func encodeContainer(c *model.Container) *node.Node {
	n := node.New(ElemContainer, identity(c.ID, c.Name)...)
	if c.OrganType != "" {
		n.SetAttr(AttrOrganType, c.OrganType)
	}
	for _, p := range c.Parameters {
		pn := node.New(ElemParameter, identity(p.ID, p.Name)...)
		pn.SetAttr(AttrValue, formatFloat(p.Value))
		if p.Unit != "" {
			pn.SetAttr(AttrUnit, p.Unit)
		}
		n.Add(pn)
	}
	for _, child := range c.Children {
		n.Add(encodeContainer(child))
	}
	return n
}

func encodePopulation(pop *model.Population) *node.Node {
	n := node.New(ElemPopulation, identity(pop.ID, pop.Name)...)
	if pop.FirstIndividual != nil {
		n.Add(encodeIndividual(pop.FirstIndividual))
	}
	values := node.New(ElemIndividualValues, node.Attr{Name: AttrCount, Value: strconv.Itoa(pop.Count())})
	for _, t := range pop.Values.Tables() {
		tn := node.New(ElemParameterValues, node.Attr{Name: AttrPath, Value: t.Path})
		formatted := make([]string, len(t.Values))
		for i, v := range t.Values {
			formatted[i] = formatFloat(v)
		}
		tn.Text = strings.Join(formatted, " ")
		values.Add(tn)
	}
	return n.Add(values)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Decode builds a project from a document tree conforming to the current
// schema. The project version is read from the version stamp. Elements,
// attributes and text the project model does not hold are rejected, so that
// encoding a decoded project never drops document content.
func Decode(root *node.Node) (*model.Project, error) {
	if root == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "document")
	}
	if root.Name != ElemProject {
		return nil, errors.Field(root.Name, errors.ErrInput, "not a project document")
	}
	v, err := StoredVersion(root)
	if err != nil {
		return nil, err
	}
	if err := expect(root.Name, root, AttrName, AttrVersion); err != nil {
		return nil, err
	}
	name, err := requireAttr(root.Name, root, AttrName)
	if err != nil {
		return nil, err
	}
	p := &model.Project{Name: name, Version: v}
	err = eachChild(root.Name, root, func(path string, n *node.Node) error {
		bb, err := decodeBuildingBlock(path, n)
		if err != nil {
			return err
		}
		p.Add(bb)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func decodeBuildingBlock(path string, n *node.Node) (model.BuildingBlock, error) {
	switch n.Name {
	case ElemIndividual:
		return decodeIndividual(path, n)
	case ElemPopulation:
		return decodePopulation(path, n)
	case ElemIndividualSimulation:
		sim := &model.IndividualSimulation{}
		if err := decodeIdentity(path, n, &sim.ID, &sim.Name); err != nil {
			return nil, err
		}
		err := eachChild(path, n, func(path string, c *node.Node) error {
			if c.Name != ElemIndividual || sim.Individual != nil {
				return unexpected(path)
			}
			ind, err := decodeIndividual(path, c)
			sim.Individual = ind
			return err
		})
		return sim, err
	case ElemPopulationSimulation:
		sim := &model.PopulationSimulation{}
		if err := decodeIdentity(path, n, &sim.ID, &sim.Name); err != nil {
			return nil, err
		}
		err := eachChild(path, n, func(path string, c *node.Node) error {
			if c.Name != ElemPopulation || sim.Population != nil {
				return unexpected(path)
			}
			pop, err := decodePopulation(path, c)
			sim.Population = pop
			return err
		})
		return sim, err
	default:
		return nil, unexpected(path)
	}
}

func decodeIndividual(path string, n *node.Node) (*model.Individual, error) {
	ind := &model.Individual{}
	if err := decodeIdentity(path, n, &ind.ID, &ind.Name, AttrSpecies); err != nil {
		return nil, err
	}
	species, err := requireAttr(path, n, AttrSpecies)
	if err != nil {
		return nil, err
	}
	ind.Species = model.Species{Name: species}

	err = eachChild(path, n, func(path string, c *node.Node) error {
		switch c.Name {
		case ElemOriginData:
			if err := expect(path, c, AttrPopulation, AttrGender); err != nil {
				return err
			}
			ind.OriginData.Population, _ = c.Attr(AttrPopulation)
			ind.OriginData.Gender, _ = c.Attr(AttrGender)
			return eachChild(path, c, func(path string, cm *node.Node) error {
				if cm.Name != ElemCalculationMethod {
					return unexpected(path)
				}
				if err := expect(path, cm, AttrName, AttrCategory); err != nil {
					return err
				}
				name, err := requireAttr(path, cm, AttrName)
				if err != nil {
					return err
				}
				category, err := requireAttr(path, cm, AttrCategory)
				if err != nil {
					return err
				}
				ind.OriginData.CalculationMethods = append(ind.OriginData.CalculationMethods,
					model.CalculationMethod{Name: name, Category: category})
				return nil
			})
		case ElemContainer:
			if ind.Organism != nil {
				return unexpected(path)
			}
			organism, err := decodeContainer(path, c)
			ind.Organism = organism
			return err
		default:
			return unexpected(path)
		}
	})
	if err != nil {
		return nil, err
	}
	return ind, nil
}

func decodeContainer(path string, n *node.Node) (*model.Container, error) {
	c := &model.Container{}
	if err := decodeIdentity(path, n, &c.ID, &c.Name, AttrOrganType); err != nil {
		return nil, err
	}
	c.OrganType, _ = n.Attr(AttrOrganType)

	err := eachChild(path, n, func(path string, child *node.Node) error {
		switch child.Name {
		case ElemParameter:
			p, err := decodeParameter(path, child)
			if err != nil {
				return err
			}
			return errors.Field(path, c.AddParameter(p), "")
		case ElemContainer:
			sub, err := decodeContainer(path, child)
			if err != nil {
				return err
			}
			return errors.Field(path, c.AddContainer(sub), "")
		default:
			return unexpected(path)
		}
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func decodeParameter(path string, n *node.Node) (*model.Parameter, error) {
	var id, name string
	if err := decodeIdentity(path, n, &id, &name, AttrValue, AttrUnit); err != nil {
		return nil, err
	}
	raw, err := requireAttr(path, n, AttrValue)
	if err != nil {
		return nil, err
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.Attribute(path, AttrValue, errors.ErrInput, "%q is not a number", raw)
	}
	unit, _ := n.Attr(AttrUnit)
	p := model.NewParameter(name, value, unit)
	p.ID = id
	return p, nil
}

func decodePopulation(path string, n *node.Node) (*model.Population, error) {
	pop := &model.Population{}
	if err := decodeIdentity(path, n, &pop.ID, &pop.Name); err != nil {
		return nil, err
	}
	err := eachChild(path, n, func(path string, c *node.Node) error {
		switch {
		case c.Name == ElemIndividual && pop.FirstIndividual == nil:
			ind, err := decodeIndividual(path, c)
			pop.FirstIndividual = ind
			return err
		case c.Name == ElemIndividualValues && pop.Values == nil:
			values, err := decodeValues(path, c)
			pop.Values = values
			return err
		default:
			return unexpected(path)
		}
	})
	if err != nil {
		return nil, err
	}
	if pop.Values == nil {
		pop.Values = model.NewIndividualValuesCache(0)
	}
	return pop, nil
}

func decodeValues(path string, n *node.Node) (*model.IndividualValuesCache, error) {
	if err := expect(path, n, AttrCount); err != nil {
		return nil, err
	}
	raw, err := requireAttr(path, n, AttrCount)
	if err != nil {
		return nil, err
	}
	count, err := strconv.Atoi(raw)
	if err != nil || count < 0 {
		return nil, errors.Attribute(path, AttrCount, errors.ErrInput, "%q is not a subject count", raw)
	}
	cache := model.NewIndividualValuesCache(count)
	err = eachChild(path, n, func(path string, c *node.Node) error {
		if c.Name != ElemParameterValues {
			return unexpected(path)
		}
		if err := expectAttrs(path, c, AttrPath); err != nil {
			return err
		}
		tablePath, err := requireAttr(path, c, AttrPath)
		if err != nil {
			return err
		}
		table := model.NewParameterValues(tablePath)
		for _, f := range strings.Fields(c.Text) {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return errors.Field(path, errors.ErrInput, "%q is not a number", f)
			}
			table.Add(v)
		}
		return errors.Field(path, cache.Add(table), "")
	})
	if err != nil {
		return nil, err
	}
	return cache, nil
}

// decodeIdentity reads the id and name of an element that may carry only the
// given attributes besides them.
func decodeIdentity(path string, n *node.Node, id, name *string, attrs ...string) error {
	if err := expect(path, n, append([]string{AttrID, AttrName}, attrs...)...); err != nil {
		return err
	}
	*id, _ = n.Attr(AttrID)
	v, err := requireAttr(path, n, AttrName)
	*name = v
	return err
}

func requireAttr(path string, n *node.Node, name string) (string, error) {
	v, ok := n.Attr(name)
	if !ok || v == "" {
		return "", errors.Attribute(path, name, errors.ErrEmpty, "required")
	}
	return v, nil
}

func unexpected(path string) error {
	return errors.Field(path, errors.ErrInput, "unexpected element")
}

// expect fails if the element carries text or an attribute other than the
// given ones.
func expect(path string, n *node.Node, attrs ...string) error {
	if n.Text != "" {
		return errors.Field(path, errors.ErrInput, "unexpected text")
	}
	return expectAttrs(path, n, attrs...)
}

func expectAttrs(path string, n *node.Node, attrs ...string) error {
	for _, a := range n.Attrs {
		if !contains(attrs, a.Name) {
			return errors.Attribute(path, a.Name, errors.ErrInput, "unexpected attribute")
		}
	}
	return nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// eachChild calls fn for every child of n together with its document path.
func eachChild(path string, n *node.Node, fn func(path string, child *node.Node) error) error {
	seen := make(map[string]int)
	for _, c := range n.Children {
		i := seen[c.Name]
		seen[c.Name] = i + 1
		if err := fn(path+"/"+c.Name+"["+strconv.Itoa(i)+"]", c); err != nil {
			return err
		}
	}
	return nil
}
