package node

import (
	"strconv"
	"strings"

	"github.com/iov-one/pkconv/errors"
)

// Attr is a single name/value attribute of a structural node.
type Attr struct {
	Name  string
	Value string
}

// Node is a mutable element of a raw project document.
//
// A node exclusively owns its children. Attribute names are unique within a
// node and their order is preserved, so that an untouched document encodes
// back to the same bytes.
type Node struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// New returns a node with the given tag name and attributes.
func New(name string, attrs ...Attr) *Node {
	n := &Node{Name: name}
	for _, a := range attrs {
		n.SetAttr(a.Name, a.Value)
	}
	return n
}

// Attr returns the value of the named attribute and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttr returns true if the node carries the named attribute.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

// SetAttr sets the value of the named attribute. An existing attribute keeps
// its position, a new one is appended.
func (n *Node) SetAttr(name, value string) {
	for i, a := range n.Attrs {
		if a.Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// RemoveAttr deletes the named attribute and returns true if it was present.
func (n *Node) RemoveAttr(name string) bool {
	for i, a := range n.Attrs {
		if a.Name == name {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return true
		}
	}
	return false
}

// RenameAttr changes the name of an attribute, keeping its value and
// position. It returns false if the attribute is not present. Renaming onto a
// name that is already used fails with ErrDuplicate.
func (n *Node) RenameAttr(from, to string) (bool, error) {
	idx := -1
	for i, a := range n.Attrs {
		switch a.Name {
		case from:
			idx = i
		case to:
			if from != to {
				return false, errors.Wrapf(errors.ErrDuplicate, "attribute %q already present", to)
			}
		}
	}
	if idx < 0 {
		return false, nil
	}
	n.Attrs[idx].Name = to
	return true, nil
}

// Add appends children to this node and returns the node to allow chaining.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Child returns the first direct child with the given name or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all direct children with the given name, in document
// order.
func (n *Node) ChildrenNamed(name string) []*Node {
	var res []*Node
	for _, c := range n.Children {
		if c.Name == name {
			res = append(res, c)
		}
	}
	return res
}

// WalkFunc is called for every visited node together with its path from the
// walk root, for example Project/Individual[1]/Container[0]. Returning an
// error stops the walk.
type WalkFunc func(path string, n *Node) error

// Walk visits this node and all its descendants depth first, parents before
// their children.
func (n *Node) Walk(fn WalkFunc) error {
	return walk(n.Name, n, fn)
}

func walk(path string, n *Node, fn WalkFunc) error {
	if err := fn(path, n); err != nil {
		return err
	}
	seen := make(map[string]int)
	for _, c := range n.Children {
		i := seen[c.Name]
		seen[c.Name] = i + 1
		if err := walk(path+"/"+c.Name+"["+strconv.Itoa(i)+"]", c, fn); err != nil {
			return err
		}
	}
	return nil
}

// Copy returns a deep copy of the node. The copy shares no memory with the
// original.
func (n *Node) Copy() *Node {
	if n == nil {
		return nil
	}
	cpy := &Node{
		Name: n.Name,
		Text: n.Text,
	}
	if n.Attrs != nil {
		cpy.Attrs = make([]Attr, len(n.Attrs))
		copy(cpy.Attrs, n.Attrs)
	}
	if n.Children != nil {
		cpy.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cpy.Children[i] = c.Copy()
		}
	}
	return cpy
}

// Equal returns true if both trees have the same names, attributes (in the
// same order), text and children.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name != b.Name || a.Text != b.Text {
		return false
	}
	if len(a.Attrs) != len(b.Attrs) || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Attrs {
		if a.Attrs[i] != b.Attrs[i] {
			return false
		}
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// Validate returns an error if the tree breaks the node invariants: an empty
// tag name or a duplicated attribute name.
func (n *Node) Validate() error {
	return n.Walk(func(path string, x *Node) error {
		if strings.TrimSpace(x.Name) == "" {
			return errors.Field(path, errors.ErrEmpty, "tag name")
		}
		seen := make(map[string]struct{}, len(x.Attrs))
		for _, a := range x.Attrs {
			if _, ok := seen[a.Name]; ok {
				return errors.Attribute(path, a.Name, errors.ErrDuplicate, "attribute")
			}
			seen[a.Name] = struct{}{}
		}
		return nil
	})
}
