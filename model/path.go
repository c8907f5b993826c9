package model

import "strings"

// PathSeparator separates the elements of a parameter path.
const PathSeparator = "|"

// PathResolver computes the path identifying a parameter inside of its
// individual, for example Organism|Kidney|Volume. Population value tables
// are keyed by this path.
type PathResolver struct{}

// PathFor returns the path of the given parameter. A detached parameter is
// identified by its name only.
func (PathResolver) PathFor(p *Parameter) string {
	elems := []string{p.Name}
	for c := p.Parent(); c != nil; c = c.Parent() {
		elems = append(elems, c.Name)
	}
	for i, j := 0, len(elems)-1; i < j; i, j = i+1, j-1 {
		elems[i], elems[j] = elems[j], elems[i]
	}
	return strings.Join(elems, PathSeparator)
}

// Path joins the given names into a parameter path.
func Path(names ...string) string {
	return strings.Join(names, PathSeparator)
}
