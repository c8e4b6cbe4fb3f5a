package ontology

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// Loader parses ontology class definitions.
type Loader interface {
	// Load parses the embedded class definitions.
	Load() (*Ontology, error)
}

type loader struct {
	fsys fs.FS
}

// NewLoader creates a loader over the embedded definitions.
func NewLoader() Loader {
	return &loader{fsys: GetEmbeddedFS()}
}

func (l *loader) Load() (*Ontology, error) {
	data, err := fs.ReadFile(l.fsys, "classes.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read classes.yaml: %w", err)
	}

	var ontology Ontology
	if err := yaml.Unmarshal(data, &ontology); err != nil {
		return nil, fmt.Errorf("failed to parse classes.yaml: %w", err)
	}

	if err := validate(&ontology); err != nil {
		return nil, err
	}
	return &ontology, nil
}

func validate(o *Ontology) error {
	if len(o.Classes) == 0 {
		return fmt.Errorf("ontology defines no classes")
	}
	if _, ok := o.ClassByID(o.Root); !ok {
		return fmt.Errorf("ontology root %q is not a defined class", o.Root)
	}

	seen := make(map[string]bool, len(o.Classes))
	for _, class := range o.Classes {
		if class.ID == "" || class.Label == "" || class.Key == "" {
			return fmt.Errorf("class %q is missing id, label, or key", class.ID)
		}
		if seen[class.ID] {
			return fmt.Errorf("duplicate class id %q", class.ID)
		}
		seen[class.ID] = true
	}
	for _, class := range o.Classes {
		if class.Parent == "" {
			continue
		}
		if _, ok := o.ClassByID(class.Parent); !ok {
			return fmt.Errorf("class %q references unknown parent %q", class.ID, class.Parent)
		}
	}
	return nil
}
