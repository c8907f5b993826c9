/*
Package migration provides tooling necessary for working with schema versioned
project documents.

A document carries a single version stamp. Every schema change is described
by a Step that accepts documents of one version and produces documents of a
newer version. Steps are registered in a Pipeline which is applied twice to
every document.

The structural pass runs on the raw node tree, before the document is decoded
into the domain model. Use it for changes that would prevent decoding, for
example renamed attributes or re-encoded attribute values. See
RewriteAttribute and RenameAttribute.

The typed pass runs on every decoded building block. Use a Visitor to dispatch
on the kind of the building block.

A step may implement only one of the passes. The version is advanced by both
passes regardless, so that both of them finish on the same version.

Pipeline construction rejects steps that do not increase the version and
steps sharing the same source version. A pipeline is read only once created
and can be shared by concurrent migrations of independent documents.
*/
package migration
