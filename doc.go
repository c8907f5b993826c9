/*
Package pkconv defines the types shared by all packages that load and migrate
physiology simulation project documents, most importantly the schema Version
stamp.

A project is saved as a versioned XML document. When a document written by an
older release is opened, it is brought to the current schema in two passes.
The structural pass (package migration, ConvertStructural) rewrites the raw
node tree (package node) before it is decoded. The typed pass (ConvertGraph)
updates the decoded building blocks (package model). Version specific rules
live in package conversion and are looked up by the version they accept.

Package project glues both passes together with the document codec.
*/
package pkconv
