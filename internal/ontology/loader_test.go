package ontology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderLoad(t *testing.T) {
	ontology, err := NewLoader().Load()
	require.NoError(t, err)

	t.Run("root class exists", func(t *testing.T) {
		root, ok := ontology.ClassByID(ontology.Root)
		require.True(t, ok)
		assert.Equal(t, "Thing", root.Label)
	})

	t.Run("every class carries label and key", func(t *testing.T) {
		for _, class := range ontology.Classes {
			assert.NotEmpty(t, class.Label, class.ID)
			assert.NotEmpty(t, class.Key, class.ID)
		}
	})

	t.Run("every non-root class has a known parent", func(t *testing.T) {
		for _, class := range ontology.Classes {
			if class.ID == ontology.Root {
				continue
			}
			_, ok := ontology.ClassByID(class.Parent)
			assert.True(t, ok, "class %s parent %s", class.ID, class.Parent)
		}
	})

	t.Run("instance classes exclude the root", func(t *testing.T) {
		classes := ontology.InstanceClasses()
		assert.Len(t, classes, len(ontology.Classes)-1)
		for _, class := range classes {
			assert.NotEqual(t, ontology.Root, class.ID)
		}
	})

	t.Run("expected entity classes are present", func(t *testing.T) {
		for _, id := range []string{
			"candidate-class", "exam-class", "score-class",
			"certificate-class", "school-class", "subject-class",
		} {
			_, ok := ontology.ClassByID(id)
			assert.True(t, ok, id)
		}
	})
}

func TestValidate(t *testing.T) {
	t.Run("rejects duplicate ids", func(t *testing.T) {
		err := validate(&Ontology{
			Root: "a",
			Classes: []Class{
				{ID: "a", Label: "A", Key: "id"},
				{ID: "a", Label: "B", Key: "id"},
			},
		})
		require.Error(t, err)
	})

	t.Run("rejects unknown parent", func(t *testing.T) {
		err := validate(&Ontology{
			Root: "a",
			Classes: []Class{
				{ID: "a", Label: "A", Key: "id"},
				{ID: "b", Label: "B", Key: "id", Parent: "ghost"},
			},
		})
		require.Error(t, err)
	})

	t.Run("rejects missing root", func(t *testing.T) {
		err := validate(&Ontology{
			Root:    "ghost",
			Classes: []Class{{ID: "a", Label: "A", Key: "id"}},
		})
		require.Error(t, err)
	})
}
