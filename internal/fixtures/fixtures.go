// Package fixtures embeds a small clinical-record catalogue and sample
// documents shared by tests, examples and the CLI.
package fixtures

import (
	"context"
	"embed"
	"sync"

	schemabind "github.com/reoring/schemabind"
	"github.com/reoring/schemabind/schema"
)

//go:embed catalog.yaml
var catalogYAML []byte

//go:embed documents/*.json
var documents embed.FS

var (
	once    sync.Once
	catalog *schema.Catalog
	loadErr error
)

// CatalogYAML returns the raw catalogue source.
func CatalogYAML() []byte { return catalogYAML }

// Catalog returns the parsed sample catalogue. It panics if the embedded
// source is broken.
func Catalog() *schema.Catalog {
	once.Do(func() { catalog, loadErr = schema.Parse(catalogYAML) })
	if loadErr != nil {
		panic(loadErr)
	}
	return catalog
}

// Bytes returns a sample document by base name, e.g. "servicerequest".
func Bytes(name string) []byte {
	b, err := documents.ReadFile("documents/" + name + ".json")
	if err != nil {
		panic(err)
	}
	return b
}

// Document parses a sample document into a Document Value.
func Document(name string) any {
	doc, err := schemabind.ParseBytes(context.Background(), Bytes(name))
	if err != nil {
		panic(err)
	}
	return doc
}
