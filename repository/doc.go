/*
Package repository implements the read only lookup tables used by migration
rules: organ types, calculation methods and default individuals.

Tables are described by a YAML catalog. A catalog is compiled into the binary
and a different one can be loaded from a file.
*/
package repository
