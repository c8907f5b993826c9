package model

import (
	"math"
	"strconv"

	"github.com/iov-one/pkconv/errors"
)

// Parameter is a named scalar quantity of a container.
type Parameter struct {
	ID    string
	Name  string
	Value float64
	Unit  string

	parent *Container
}

// NewParameter returns a detached parameter.
func NewParameter(name string, value float64, unit string) *Parameter {
	return &Parameter{Name: name, Value: value, Unit: unit}
}

// Parent returns the container this parameter is attached to, or nil.
func (p *Parameter) Parent() *Container {
	return p.parent
}

// Copy returns a detached copy of the parameter.
func (p *Parameter) Copy() Cloneable {
	return &Parameter{
		ID:    p.ID,
		Name:  p.Name,
		Value: p.Value,
		Unit:  p.Unit,
	}
}

func (p *Parameter) renewIDs(newID func() string) {
	p.ID = newID()
}

func (p *Parameter) Validate() error {
	var errs error
	if p.Name == "" {
		errs = errors.AppendField(errs, "Name", errors.ErrEmpty)
	}
	if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
		errs = errors.AppendField(errs, "Value", errors.ErrInput)
	}
	return errs
}

// Container groups parameters and sub containers, for example the organism of
// an individual or one of its organs.
type Container struct {
	ID   string
	Name string
	// OrganType is the canonical organ type identifier. It is empty for
	// containers that do not represent an organ.
	OrganType  string
	Parameters []*Parameter
	Children   []*Container

	parent *Container
}

// NewContainer returns a detached, empty container.
func NewContainer(name string) *Container {
	return &Container{Name: name}
}

// Parent returns the container this container is attached to, or nil.
func (c *Container) Parent() *Container {
	return c.parent
}

// Parameter returns the direct parameter with the given name or nil.
func (c *Container) Parameter(name string) *Parameter {
	for _, p := range c.Parameters {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// AddParameter attaches a parameter to this container. A parameter that is
// already attached elsewhere must be cloned first.
func (c *Container) AddParameter(p *Parameter) error {
	if p == nil {
		return errors.Wrap(errors.ErrEmpty, "nil parameter")
	}
	if p.parent != nil {
		return errors.Wrapf(errors.ErrState, "parameter %q already attached to %q", p.Name, p.parent.Name)
	}
	if c.Parameter(p.Name) != nil {
		return errors.Wrapf(errors.ErrDuplicate, "parameter %q in %q", p.Name, c.Name)
	}
	p.parent = c
	c.Parameters = append(c.Parameters, p)
	return nil
}

// RemoveParameter detaches the named parameter. It returns the removed
// parameter or nil.
func (c *Container) RemoveParameter(name string) *Parameter {
	for i, p := range c.Parameters {
		if p.Name == name {
			c.Parameters = append(c.Parameters[:i], c.Parameters[i+1:]...)
			p.parent = nil
			return p
		}
	}
	return nil
}

// Container returns the direct sub container with the given name or nil.
func (c *Container) Container(name string) *Container {
	for _, child := range c.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// AddContainer attaches a sub container.
func (c *Container) AddContainer(child *Container) error {
	if child == nil {
		return errors.Wrap(errors.ErrEmpty, "nil container")
	}
	if child.parent != nil {
		return errors.Wrapf(errors.ErrState, "container %q already attached to %q", child.Name, child.parent.Name)
	}
	if c.Container(child.Name) != nil {
		return errors.Wrapf(errors.ErrDuplicate, "container %q in %q", child.Name, c.Name)
	}
	child.parent = c
	c.Children = append(c.Children, child)
	return nil
}

// Find returns the parameter found by following the container names. The
// last name is the parameter name. Nil is returned if any element is missing.
func (c *Container) Find(names ...string) *Parameter {
	if len(names) == 0 {
		return nil
	}
	cur := c
	for _, n := range names[:len(names)-1] {
		if cur = cur.Container(n); cur == nil {
			return nil
		}
	}
	return cur.Parameter(names[len(names)-1])
}

// AllParameters returns parameters of this container and all sub containers,
// depth first.
func (c *Container) AllParameters() []*Parameter {
	res := append([]*Parameter(nil), c.Parameters...)
	for _, child := range c.Children {
		res = append(res, child.AllParameters()...)
	}
	return res
}

// Copy returns a detached deep copy of the container.
func (c *Container) Copy() Cloneable {
	return c.copyContainer()
}

func (c *Container) copyContainer() *Container {
	cpy := &Container{
		ID:        c.ID,
		Name:      c.Name,
		OrganType: c.OrganType,
	}
	for _, p := range c.Parameters {
		pc := p.Copy().(*Parameter)
		pc.parent = cpy
		cpy.Parameters = append(cpy.Parameters, pc)
	}
	for _, child := range c.Children {
		cc := child.copyContainer()
		cc.parent = cpy
		cpy.Children = append(cpy.Children, cc)
	}
	return cpy
}

func (c *Container) renewIDs(newID func() string) {
	c.ID = newID()
	for _, p := range c.Parameters {
		p.renewIDs(newID)
	}
	for _, child := range c.Children {
		child.renewIDs(newID)
	}
}

func (c *Container) Validate() error {
	var errs error
	if c.Name == "" {
		errs = errors.AppendField(errs, "Name", errors.ErrEmpty)
	}
	seen := make(map[string]struct{}, len(c.Parameters))
	for i, p := range c.Parameters {
		field := "Parameters." + strconv.Itoa(i)
		if _, ok := seen[p.Name]; ok {
			errs = errors.AppendField(errs, field, errors.Wrapf(errors.ErrDuplicate, "parameter %q", p.Name))
			continue
		}
		seen[p.Name] = struct{}{}
		errs = errors.AppendField(errs, field, p.Validate())
	}
	for i, child := range c.Children {
		errs = errors.AppendField(errs, "Children."+strconv.Itoa(i), child.Validate())
	}
	return errs
}
