package migration

import (
	"github.com/iov-one/pkconv/errors"
	"github.com/iov-one/pkconv/node"
)

// MappingFunc returns the new representation of an attribute value. It
// should return ErrUnknownLegacyValue for values it does not recognize.
type MappingFunc func(value string) (string, error)

// RewriteAttribute returns a structural transform that rewrites the value of
// the given attribute on the root node and all its descendants using the
// mapping function.
//
// All values are resolved before the tree is modified. If any value cannot be
// mapped, the tree is left untouched and an error listing every failing node
// is returned.
func RewriteAttribute(attr string, mapping MappingFunc) StructuralFunc {
	return func(root *node.Node) error {
		type rewrite struct {
			n     *node.Node
			value string
		}
		var (
			rewrites []rewrite
			errs     error
		)
		err := root.Walk(func(path string, n *node.Node) error {
			value, ok := n.Attr(attr)
			if !ok {
				return nil
			}
			mapped, err := mapping(value)
			if err != nil {
				errs = errors.Append(errs, errors.Attribute(path, attr, err, ""))
				return nil
			}
			rewrites = append(rewrites, rewrite{n: n, value: mapped})
			return nil
		})
		if err != nil {
			return err
		}
		if errs != nil {
			return errs
		}
		for _, r := range rewrites {
			r.n.SetAttr(attr, r.value)
		}
		return nil
	}
}

// RenameAttribute returns a structural transform that renames an attribute
// on the root node and all its descendants. A node that already carries both
// attributes cannot be renamed and ErrDuplicate is returned. In that case the
// tree is left untouched.
func RenameAttribute(from, to string) StructuralFunc {
	return func(root *node.Node) error {
		var errs error
		err := root.Walk(func(path string, n *node.Node) error {
			if n.HasAttr(from) && n.HasAttr(to) {
				errs = errors.Append(errs, errors.Attribute(path, to, errors.ErrDuplicate, "cannot rename %q", from))
			}
			return nil
		})
		if err != nil {
			return err
		}
		if errs != nil {
			return errs
		}
		return root.Walk(func(path string, n *node.Node) error {
			if _, err := n.RenameAttr(from, to); err != nil {
				return errors.Attribute(path, from, err, "rename")
			}
			return nil
		})
	}
}

// Chain returns a structural transform that applies all given transforms in
// order. It stops on the first error.
func Chain(fns ...StructuralFunc) StructuralFunc {
	return func(root *node.Node) error {
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			if err := fn(root); err != nil {
				return err
			}
		}
		return nil
	}
}

// MapOf returns a mapping function backed by a static table.
func MapOf(table map[string]string) MappingFunc {
	return func(value string) (string, error) {
		if mapped, ok := table[value]; ok {
			return mapped, nil
		}
		return "", errors.Wrapf(errors.ErrUnknownLegacyValue, "%q", value)
	}
}
