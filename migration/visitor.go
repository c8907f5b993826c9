package migration

import (
	"fmt"

	"github.com/iov-one/pkconv/model"
)

// Handler migrates a single building block. The visitor is passed so that
// handlers can visit nested building blocks, for example the individual of a
// simulation.
type Handler func(v *Visitor, obj model.BuildingBlock) error

// Visitor dispatches building blocks to handlers registered for their kind.
type Visitor struct {
	handlers map[model.Kind]Handler
}

// NewVisitor returns a visitor with no handlers.
func NewVisitor() *Visitor {
	return &Visitor{handlers: make(map[model.Kind]Handler)}
}

// Handle registers the handler for the given kind. Only one handler can be
// registered per kind, registering a second one panics.
func (v *Visitor) Handle(k model.Kind, h Handler) *Visitor {
	if _, ok := v.handlers[k]; ok {
		panic(fmt.Sprintf("handler for %s already registered", k))
	}
	v.handlers[k] = h
	return v
}

// Visit calls the handler registered for the kind of obj. Building blocks of
// a kind without a handler and nil values are ignored.
func (v *Visitor) Visit(obj model.BuildingBlock) error {
	if obj == nil {
		return nil
	}
	h, ok := v.handlers[obj.Kind()]
	if !ok {
		return nil
	}
	return h(v, obj)
}

// Typed returns the visitor as a typed transform.
func (v *Visitor) Typed() TypedFunc {
	return v.Visit
}
