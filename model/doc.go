/*
Package model declares the building blocks of a physiology simulation
project: individuals, populations and the simulations using them.

Only the parts of the model that schema migration reads or writes are
declared here. Every building block reports its Kind, which is what the
migration visitor dispatches on.

Ownership is a tree. An individual owns its organism container, a container
owns its parameters and sub containers, a population owns its first
individual and its per subject value tables. Parent links are kept for path
resolution only. Copies made with Cloner never share memory with the source.
*/
package model
