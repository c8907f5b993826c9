package migration

import (
	"fmt"

	"github.com/iov-one/pkconv"
	"github.com/iov-one/pkconv/model"
	"github.com/iov-one/pkconv/node"
)

// StructuralFunc transforms a raw document tree in place.
type StructuralFunc func(root *node.Node) error

// TypedFunc transforms a decoded building block in place.
type TypedFunc func(obj model.BuildingBlock) error

// Step migrates documents of version From to version To.
type Step struct {
	// Name is used in logs, metrics and errors. It defaults to the version
	// range.
	Name string
	From pkconv.Version
	To   pkconv.Version

	// Structural and Typed are both optional. A missing transform is a no
	// operation, but the version is still advanced.
	Structural StructuralFunc
	Typed      TypedFunc
}

func (s Step) String() string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("%s -> %s", s.From, s.To)
}

// Pass names one of the two document passes.
type Pass string

const (
	PassStructural Pass = "structural"
	PassTyped      Pass = "typed"
)
