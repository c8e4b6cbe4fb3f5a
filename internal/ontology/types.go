// Package ontology manages the class layer of the knowledge graph: the
// class hierarchy itself, the uniqueness constraints on instance keys,
// and the INSTANCE_OF links between instance nodes and their classes.
package ontology

// Class is one node type in the ontology. Label doubles as the node
// label instances of the class carry; Key names the property that
// uniquely identifies instances.
type Class struct {
	ID          string `yaml:"id"`
	Label       string `yaml:"label"`
	Key         string `yaml:"key"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Parent      string `yaml:"parent,omitempty"`
}

// Ontology is the full class hierarchy.
type Ontology struct {
	Version string  `yaml:"version"`
	Root    string  `yaml:"root"`
	Classes []Class `yaml:"classes"`
}

// ClassByID returns the class with the given id.
func (o *Ontology) ClassByID(id string) (Class, bool) {
	for _, class := range o.Classes {
		if class.ID == id {
			return class, true
		}
	}
	return Class{}, false
}

// InstanceClasses returns every class except the root. Only these are
// reconciled against instance nodes; the root exists to anchor the
// hierarchy.
func (o *Ontology) InstanceClasses() []Class {
	classes := make([]Class, 0, len(o.Classes))
	for _, class := range o.Classes {
		if class.ID == o.Root {
			continue
		}
		classes = append(classes, class)
	}
	return classes
}
