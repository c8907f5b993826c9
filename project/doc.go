/*
Package project reads and writes project documents.

A Loader decodes a document, runs the structural pass of a migration pipeline
on the raw tree, decodes the tree into building blocks and runs the typed
pass on each of them. The returned project always conforms to a single
schema version.

A Workspace migrates many documents at once.
*/
package project
