/*
Package conversion declares the migration steps of project documents.

Every step is built from explicit dependencies, see Dependencies. Rules that
do not apply to a building block, for example a body surface area rule for a
non human individual, are skipped. A skipped rule is not an error and is only
logged at debug level.
*/
package conversion
