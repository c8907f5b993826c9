/*
Package node implements the raw, untyped representation of a project
document.

A document is parsed into a tree of nodes before it is decoded into the
domain model. Structural migration steps operate on this tree only: renaming
attributes and re-encoding their values. Once the tree is decoded it is
discarded.
*/
package node
