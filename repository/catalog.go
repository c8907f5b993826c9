package repository

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/iov-one/pkconv/errors"
	"github.com/iov-one/pkconv/model"
	"gopkg.in/yaml.v2"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Catalog is the serialized form of all lookup tables used by migrations.
type Catalog struct {
	// OrganTypes maps legacy organ labels to canonical organ types.
	OrganTypes         map[string]string        `yaml:"organTypes"`
	CalculationMethods []CalculationMethodEntry `yaml:"calculationMethods"`
	DefaultHuman       IndividualTemplate       `yaml:"defaultHuman"`
}

type CalculationMethodEntry struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
}

// IndividualTemplate describes the default individual of a species.
type IndividualTemplate struct {
	Name       string           `yaml:"name"`
	Population string           `yaml:"population"`
	Gender     string           `yaml:"gender"`
	Parameters []ParameterEntry `yaml:"parameters"`
}

type ParameterEntry struct {
	// Path of the parameter, for example Organism|Weight.
	Path  string  `yaml:"path"`
	Value float64 `yaml:"value"`
	Unit  string  `yaml:"unit"`
}

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() Catalog {
	c, err := ReadCatalog(bytes.NewReader(defaultCatalogYAML))
	if err != nil {
		panic(errors.Wrap(err, "built-in catalog"))
	}
	return c
}

// ReadCatalog decodes and validates a YAML catalog.
func ReadCatalog(r io.Reader) (Catalog, error) {
	var c Catalog
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		if err == io.EOF {
			return c, errors.Wrap(errors.ErrEmpty, "catalog")
		}
		return c, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := c.Validate(); err != nil {
		return c, errors.Wrap(err, "catalog")
	}
	return c, nil
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (Catalog, error) {
	fd, err := os.Open(path)
	if err != nil {
		return Catalog{}, errors.Wrapf(errors.ErrNotFound, "open catalog: %s", err)
	}
	defer fd.Close()
	c, err := ReadCatalog(fd)
	return c, errors.Wrap(err, path)
}

func (c Catalog) Validate() error {
	var errs error
	if len(c.OrganTypes) == 0 {
		errs = errors.AppendField(errs, "OrganTypes", errors.ErrEmpty)
	}
	canonical := make(map[string]struct{}, len(c.OrganTypes))
	for _, v := range c.OrganTypes {
		canonical[v] = struct{}{}
	}
	for legacy, v := range c.OrganTypes {
		if legacy == "" || v == "" {
			errs = errors.AppendField(errs, "OrganTypes", errors.Wrapf(errors.ErrEmpty, "mapping %q: %q", legacy, v))
			continue
		}
		// A canonical organ type resolves to itself and cannot be a
		// legacy label of another type.
		if _, ok := canonical[legacy]; ok && legacy != v {
			errs = errors.AppendField(errs, "OrganTypes", errors.Wrapf(errors.ErrDuplicate, "%q is a canonical type", legacy))
		}
	}

	names := make(map[string]struct{}, len(c.CalculationMethods))
	for i, cm := range c.CalculationMethods {
		field := "CalculationMethods." + strconv.Itoa(i)
		if cm.Name == "" || cm.Category == "" {
			errs = errors.AppendField(errs, field, errors.ErrEmpty)
			continue
		}
		if _, ok := names[cm.Name]; ok {
			errs = errors.AppendField(errs, field, errors.Wrapf(errors.ErrDuplicate, "name %q", cm.Name))
		}
		names[cm.Name] = struct{}{}
	}

	if _, err := c.DefaultHuman.Build(model.Cloner{}); err != nil {
		errs = errors.AppendField(errs, "DefaultHuman", err)
	}
	return errs
}

// Build creates a human individual described by this template.
func (t IndividualTemplate) Build(cloner model.Cloner) (*model.Individual, error) {
	if t.Name == "" {
		return nil, errors.Field("Name", errors.ErrEmpty, "template")
	}
	ind := model.NewIndividual(t.Name, model.Species{Name: model.HumanSpecies})
	ind.OriginData.Population = t.Population
	ind.OriginData.Gender = t.Gender
	for i, p := range t.Parameters {
		if err := addParameter(ind.Organism, p); err != nil {
			return nil, errors.Field("Parameters."+strconv.Itoa(i), err, "")
		}
	}
	if err := ind.Validate(); err != nil {
		return nil, err
	}
	return cloner.CloneIndividual(ind), nil
}

func addParameter(organism *model.Container, p ParameterEntry) error {
	names := strings.Split(p.Path, model.PathSeparator)
	if len(names) < 2 || names[0] != organism.Name {
		return errors.Wrapf(errors.ErrInput, "path %q must start with %s", p.Path, organism.Name)
	}
	c := organism
	for _, n := range names[1 : len(names)-1] {
		child := c.Container(n)
		if child == nil {
			child = model.NewContainer(n)
			if err := c.AddContainer(child); err != nil {
				return err
			}
		}
		c = child
	}
	return c.AddParameter(model.NewParameter(names[len(names)-1], p.Value, p.Unit))
}
