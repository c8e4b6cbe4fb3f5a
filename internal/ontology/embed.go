package ontology

import "embed"

// classesFS embeds the canonical class definitions at compile time, so
// every binary release ships a reproducible ontology.
//
//go:embed classes.yaml
var classesFS embed.FS

// GetEmbeddedFS returns the embedded filesystem holding the bundled
// class definitions.
func GetEmbeddedFS() embed.FS {
	return classesFS
}
