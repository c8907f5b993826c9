package model

import (
	"strconv"

	"github.com/iov-one/pkconv"
	"github.com/iov-one/pkconv/errors"
)

// Project is the root of a loaded document.
type Project struct {
	Name string
	// Version is the schema version the building blocks conform to.
	Version        pkconv.Version
	BuildingBlocks []BuildingBlock
}

// Add appends building blocks to the project.
func (p *Project) Add(blocks ...BuildingBlock) {
	p.BuildingBlocks = append(p.BuildingBlocks, blocks...)
}

// ByName returns the first building block with the given name or nil.
func (p *Project) ByName(name string) BuildingBlock {
	for _, bb := range p.BuildingBlocks {
		if bb.GetName() == name {
			return bb
		}
	}
	return nil
}

// OfKind returns all building blocks of the given kind in project order.
func (p *Project) OfKind(k Kind) []BuildingBlock {
	var res []BuildingBlock
	for _, bb := range p.BuildingBlocks {
		if bb.Kind() == k {
			res = append(res, bb)
		}
	}
	return res
}

func (p *Project) Validate() error {
	var errs error
	if p.Name == "" {
		errs = errors.AppendField(errs, "Name", errors.ErrEmpty)
	}
	if p.Version == 0 {
		errs = errors.AppendField(errs, "Version", errors.ErrSchema)
	}
	for i, bb := range p.BuildingBlocks {
		field := "BuildingBlocks." + strconv.Itoa(i)
		if bb == nil {
			errs = errors.AppendField(errs, field, errors.ErrEmpty)
			continue
		}
		errs = errors.AppendField(errs, field, bb.Validate())
	}
	return errs
}
