package repository

import (
	"github.com/iov-one/pkconv/errors"
	"github.com/iov-one/pkconv/model"
)

// OrganTypeRepository resolves legacy organ labels to canonical organ types.
// It is read only and safe for concurrent use.
type OrganTypeRepository struct {
	legacy    map[string]string
	canonical map[string]struct{}
}

// NewOrganTypeRepository returns a repository for the given legacy label to
// canonical type mapping.
func NewOrganTypeRepository(mapping map[string]string) *OrganTypeRepository {
	r := &OrganTypeRepository{
		legacy:    make(map[string]string, len(mapping)),
		canonical: make(map[string]struct{}, len(mapping)),
	}
	for k, v := range mapping {
		r.legacy[k] = v
		r.canonical[v] = struct{}{}
	}
	return r
}

// OrganTypeFor returns the canonical organ type for a legacy label. A
// canonical organ type is returned as it is.
func (r *OrganTypeRepository) OrganTypeFor(label string) (string, error) {
	if _, ok := r.canonical[label]; ok {
		return label, nil
	}
	if t, ok := r.legacy[label]; ok {
		return t, nil
	}
	return "", errors.Wrapf(errors.ErrUnknownLegacyValue, "organ type %q", label)
}

// CalculationMethodRepository is the catalog of calculation methods.
type CalculationMethodRepository struct {
	byName map[string]model.CalculationMethod
}

// NewCalculationMethodRepository returns a repository containing given
// methods.
func NewCalculationMethodRepository(methods ...model.CalculationMethod) *CalculationMethodRepository {
	r := &CalculationMethodRepository{byName: make(map[string]model.CalculationMethod, len(methods))}
	for _, cm := range methods {
		r.byName[cm.Name] = cm
	}
	return r
}

// FindByName returns the calculation method with the given name.
func (r *CalculationMethodRepository) FindByName(name string) (model.CalculationMethod, error) {
	cm, ok := r.byName[name]
	if !ok {
		return cm, errors.Wrapf(errors.ErrNotFound, "calculation method %q", name)
	}
	return cm, nil
}

// DefaultIndividualRetriever provides the default individual templates.
type DefaultIndividualRetriever struct {
	human *model.Individual
}

// NewDefaultIndividualRetriever returns a retriever serving the given human
// template. The template must not be modified afterwards.
func NewDefaultIndividualRetriever(human *model.Individual) *DefaultIndividualRetriever {
	return &DefaultIndividualRetriever{human: human}
}

// DefaultHuman returns the shared default human. The result is read only,
// clone it before modifying or attaching any part of it.
func (r *DefaultIndividualRetriever) DefaultHuman() *model.Individual {
	return r.human
}

// Repositories groups all lookup repositories created from a catalog.
type Repositories struct {
	OrganTypes         *OrganTypeRepository
	CalculationMethods *CalculationMethodRepository
	Individuals        *DefaultIndividualRetriever
}

// New returns repositories serving the content of the given catalog.
func New(c Catalog) (*Repositories, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "catalog")
	}
	human, err := c.DefaultHuman.Build(model.NewCloner())
	if err != nil {
		return nil, errors.Wrap(err, "default human")
	}
	methods := make([]model.CalculationMethod, 0, len(c.CalculationMethods))
	for _, cm := range c.CalculationMethods {
		methods = append(methods, model.CalculationMethod{Name: cm.Name, Category: cm.Category})
	}
	return &Repositories{
		OrganTypes:         NewOrganTypeRepository(c.OrganTypes),
		CalculationMethods: NewCalculationMethodRepository(methods...),
		Individuals:        NewDefaultIndividualRetriever(human),
	}, nil
}
