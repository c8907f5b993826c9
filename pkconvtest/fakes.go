package pkconvtest

import (
	"fmt"
	"sync"

	"github.com/iov-one/pkconv/errors"
	"github.com/iov-one/pkconv/model"
)

// OrganTypes is a fake organ type repository. Canonical types are not
// resolved to themselves unless mapped explicitly.
type OrganTypes map[string]string

func (o OrganTypes) OrganTypeFor(label string) (string, error) {
	if t, ok := o[label]; ok {
		return t, nil
	}
	return "", errors.Wrapf(errors.ErrUnknownLegacyValue, "organ type %q", label)
}

// CalculationMethods is a fake calculation method catalog.
type CalculationMethods []model.CalculationMethod

func (c CalculationMethods) FindByName(name string) (model.CalculationMethod, error) {
	for _, cm := range c {
		if cm.Name == name {
			return cm, nil
		}
	}
	return model.CalculationMethod{}, errors.Wrapf(errors.ErrNotFound, "calculation method %q", name)
}

// Individuals serves a static default human and counts how many times it was
// requested.
type Individuals struct {
	Human *model.Individual

	mu    sync.Mutex
	calls int
}

func (i *Individuals) DefaultHuman() *model.Individual {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.calls++
	return i.Human
}

// CallCount returns the number of DefaultHuman calls.
func (i *Individuals) CallCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.calls
}

// Cloner is a cloning service assigning predictable identifiers and counting
// created clones.
type Cloner struct {
	Prefix string

	mu     sync.Mutex
	cloner *model.Cloner
	calls  int
}

func (c *Cloner) Clone(src model.Cloneable) model.Cloneable {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.cloner == nil {
		cloner := model.NewClonerWithIDs(SequenceIDs(c.Prefix))
		c.cloner = &cloner
	}
	return c.cloner.Clone(src)
}

// CallCount returns the number of Clone calls.
func (c *Cloner) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// SequenceIDs returns an identifier generator producing prefix-1, prefix-2
// and so on.
func SequenceIDs(prefix string) func() string {
	if prefix == "" {
		prefix = "id"
	}
	var n int
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
