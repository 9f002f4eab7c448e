// Package schema holds the catalogue that drives binding: record types as
// ordered lists of field descriptors, closed enumerations, and the registry
// that ties them together.
//
// A catalogue can be declared in Go with Define or loaded from YAML with a
// Loader. Check verifies that every reference resolves before the catalogue
// is used by the bind package.
package schema
