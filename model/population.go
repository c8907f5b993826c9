package model

import (
	"math"
	"strconv"

	"github.com/iov-one/pkconv/errors"
)

// ParameterValues holds one value per subject of a population for the
// parameter found under Path.
type ParameterValues struct {
	Path   string
	Values []float64
}

// NewParameterValues returns a table for the given parameter path.
func NewParameterValues(path string, values ...float64) *ParameterValues {
	return &ParameterValues{Path: path, Values: values}
}

// Add appends the value of the next subject.
func (pv *ParameterValues) Add(v float64) {
	pv.Values = append(pv.Values, v)
}

// Count returns the number of subjects covered by this table.
func (pv *ParameterValues) Count() int {
	return len(pv.Values)
}

func (pv *ParameterValues) copy() *ParameterValues {
	return &ParameterValues{
		Path:   pv.Path,
		Values: append([]float64(nil), pv.Values...),
	}
}

// IndividualValuesCache stores the per subject value tables of a population.
// Every table holds exactly Count values.
type IndividualValuesCache struct {
	count  int
	tables []*ParameterValues
}

// NewIndividualValuesCache returns an empty cache for the given number of
// subjects.
func NewIndividualValuesCache(count int) *IndividualValuesCache {
	return &IndividualValuesCache{count: count}
}

// Count returns the number of subjects.
func (c *IndividualValuesCache) Count() int {
	if c == nil {
		return 0
	}
	return c.count
}

// Has returns true if a table exists for the given path.
func (c *IndividualValuesCache) Has(path string) bool {
	return c.table(path) != nil
}

// Values returns a copy of the values stored for the given path.
func (c *IndividualValuesCache) Values(path string) ([]float64, bool) {
	t := c.table(path)
	if t == nil {
		return nil, false
	}
	return append([]float64(nil), t.Values...), true
}

func (c *IndividualValuesCache) table(path string) *ParameterValues {
	if c == nil {
		return nil
	}
	for _, t := range c.tables {
		if t.Path == path {
			return t
		}
	}
	return nil
}

// Add stores a new table. The table must hold exactly one value per subject
// and its path must not be used yet.
func (c *IndividualValuesCache) Add(pv *ParameterValues) error {
	if pv == nil || pv.Path == "" {
		return errors.Wrap(errors.ErrEmpty, "table path")
	}
	if c.Has(pv.Path) {
		return errors.Wrapf(errors.ErrDuplicate, "table %q", pv.Path)
	}
	if pv.Count() != c.count {
		return errors.Wrapf(errors.ErrInput, "table %q has %d values, want %d", pv.Path, pv.Count(), c.count)
	}
	c.tables = append(c.tables, pv)
	return nil
}

// Tables returns all tables in insertion order. The result must not be
// modified.
func (c *IndividualValuesCache) Tables() []*ParameterValues {
	if c == nil {
		return nil
	}
	return c.tables
}

// Paths returns the paths of all tables in insertion order.
func (c *IndividualValuesCache) Paths() []string {
	res := make([]string, 0, len(c.Tables()))
	for _, t := range c.Tables() {
		res = append(res, t.Path)
	}
	return res
}

func (c *IndividualValuesCache) copy() *IndividualValuesCache {
	if c == nil {
		return nil
	}
	cpy := &IndividualValuesCache{count: c.count}
	for _, t := range c.tables {
		cpy.tables = append(cpy.tables, t.copy())
	}
	return cpy
}

func (c *IndividualValuesCache) Validate() error {
	if c == nil {
		return nil
	}
	var errs error
	if c.count < 0 {
		errs = errors.AppendField(errs, "Count", errors.ErrInput)
	}
	seen := make(map[string]struct{}, len(c.tables))
	for i, t := range c.tables {
		field := "Tables." + strconv.Itoa(i)
		if _, ok := seen[t.Path]; ok {
			errs = errors.AppendField(errs, field, errors.Wrapf(errors.ErrDuplicate, "table %q", t.Path))
		}
		seen[t.Path] = struct{}{}
		if t.Count() != c.count {
			errs = errors.AppendField(errs, field, errors.Wrapf(errors.ErrInput, "%d values, want %d", t.Count(), c.count))
		}
		for _, v := range t.Values {
			if math.IsNaN(v) {
				errs = errors.AppendField(errs, field, errors.Wrap(errors.ErrInput, "NaN value"))
				break
			}
		}
	}
	return errs
}

// Population is a group of subjects described by a template individual and
// per subject value tables for the parameters that vary.
type Population struct {
	ID   string
	Name string
	// FirstIndividual is the template all subjects are created from.
	FirstIndividual *Individual
	Values          *IndividualValuesCache
}

func (p *Population) Kind() Kind      { return KindPopulation }
func (p *Population) GetID() string   { return p.ID }
func (p *Population) GetName() string { return p.Name }

// Count returns the number of subjects.
func (p *Population) Count() int {
	return p.Values.Count()
}

// IsHuman returns true if the population template is human.
func (p *Population) IsHuman() bool {
	return p.FirstIndividual != nil && p.FirstIndividual.IsHuman()
}

// AllValuesFor returns one value per subject for the parameter under the
// given path. A parameter that does not vary has no table and the template
// value is repeated for every subject. Nil is returned if the parameter is
// unknown.
func (p *Population) AllValuesFor(path string) []float64 {
	if values, ok := p.Values.Values(path); ok {
		return values
	}
	if p.FirstIndividual == nil {
		return nil
	}
	param := p.FirstIndividual.ParameterByPath(path)
	if param == nil {
		return nil
	}
	values := make([]float64, p.Count())
	for i := range values {
		values[i] = param.Value
	}
	return values
}

// Copy returns a deep copy of the population.
func (p *Population) Copy() Cloneable {
	cpy := &Population{
		ID:     p.ID,
		Name:   p.Name,
		Values: p.Values.copy(),
	}
	if p.FirstIndividual != nil {
		cpy.FirstIndividual = p.FirstIndividual.Copy().(*Individual)
	}
	return cpy
}

func (p *Population) renewIDs(newID func() string) {
	p.ID = newID()
	if p.FirstIndividual != nil {
		p.FirstIndividual.renewIDs(newID)
	}
}

func (p *Population) Validate() error {
	var errs error
	if p.Name == "" {
		errs = errors.AppendField(errs, "Name", errors.ErrEmpty)
	}
	if p.FirstIndividual == nil {
		errs = errors.AppendField(errs, "FirstIndividual", errors.ErrEmpty)
	} else {
		errs = errors.AppendField(errs, "FirstIndividual", p.FirstIndividual.Validate())
	}
	errs = errors.AppendField(errs, "Values", p.Values.Validate())
	return errs
}
