package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	gosync "sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leductinjl/backend/internal/relational"
)

// memoryGraph is a GraphWriter double with merge semantics: repeated
// upserts of the same node or edge update in place.
type memoryGraph struct {
	mu      gosync.Mutex
	nodes   map[string]Node
	edges   map[string]Edge
	nodeErr map[string]error
}

func newMemoryGraph() *memoryGraph {
	return &memoryGraph{
		nodes:   make(map[string]Node),
		edges:   make(map[string]Edge),
		nodeErr: make(map[string]error),
	}
}

func nodeKey(label, id string) string { return label + "/" + id }

func (g *memoryGraph) UpsertNode(_ context.Context, node Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.nodeErr[node.ID]; err != nil {
		return err
	}
	key := nodeKey(node.Label, node.ID)
	if existing, ok := g.nodes[key]; ok {
		for name, value := range node.Props {
			existing.Props[name] = value
		}
		g.nodes[key] = existing
		return nil
	}
	props := make(map[string]any, len(node.Props))
	for name, value := range node.Props {
		props[name] = value
	}
	node.Props = props
	g.nodes[key] = node
	return nil
}

func (g *memoryGraph) UpsertEdge(_ context.Context, edge Edge) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, fromOK := g.nodes[nodeKey(edge.FromLabel, edge.FromID)]
	_, toOK := g.nodes[nodeKey(edge.ToLabel, edge.ToID)]
	if !fromOK || !toOK {
		return fmt.Errorf("%s/%s-[%s]->%s/%s: %w",
			edge.FromLabel, edge.FromID, edge.Rel, edge.ToLabel, edge.ToID,
			ErrEdgeEndpointMissing)
	}
	key := fmt.Sprintf("%s/%s-[%s]->%s/%s",
		edge.FromLabel, edge.FromID, edge.Rel, edge.ToLabel, edge.ToID)
	g.edges[key] = edge
	return nil
}

func (g *memoryGraph) node(label, id string) (Node, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	node, ok := g.nodes[nodeKey(label, id)]
	return node, ok
}

func (g *memoryGraph) edgeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.edges)
}

func (g *memoryGraph) nodeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}

type fakeReconciler struct {
	linked int
	err    error
	calls  int
}

func (f *fakeReconciler) ReconcileInstances(context.Context) (int, error) {
	f.calls++
	return f.linked, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(graph *memoryGraph, readers relational.ReaderSet, resolver Resolver, reconciler OntologyReconciler) *Engine {
	return NewEngine(DefaultRegistry(), readers, graph, resolver, reconciler, testLogger(), Options{Workers: 2})
}

func TestEngineSync(t *testing.T) {
	t.Run("projects a record into a node", func(t *testing.T) {
		memory := newMemoryGraph()
		engine := newTestEngine(memory, nil, nil, nil)

		ok := engine.Sync(context.Background(), "exam", map[string]any{
			"exam_id":   "E1",
			"exam_name": "Midterm",
		})
		require.True(t, ok)

		node, found := memory.node(LabelExam, "E1")
		require.True(t, found)
		assert.Equal(t, "Midterm", node.Props["exam_name"])
	})

	t.Run("re-sync updates in place", func(t *testing.T) {
		memory := newMemoryGraph()
		engine := newTestEngine(memory, nil, nil, nil)

		require.True(t, engine.Sync(context.Background(), "exam", map[string]any{
			"exam_id": "E1", "exam_name": "Midterm",
		}))
		require.True(t, engine.Sync(context.Background(), "exam", map[string]any{
			"exam_id": "E1", "exam_name": "Final",
		}))

		assert.Equal(t, 1, memory.nodeCount())
		node, _ := memory.node(LabelExam, "E1")
		assert.Equal(t, "Final", node.Props["exam_name"])
	})

	t.Run("edge-only types project into relationships", func(t *testing.T) {
		memory := newMemoryGraph()
		engine := newTestEngine(memory, nil, nil, nil)
		ctx := context.Background()

		require.True(t, engine.Sync(ctx, "candidate", map[string]any{"candidate_id": "C1"}))
		require.True(t, engine.Sync(ctx, "exam", map[string]any{"exam_id": "E1"}))

		require.True(t, engine.Sync(ctx, "candidate_exam", map[string]any{
			"candidate_exam_id":   "CE1",
			"candidate_id":        "C1",
			"exam_id":             "E1",
			"registration_number": "R-100",
		}))

		assert.Equal(t, 2, memory.nodeCount())
		assert.Equal(t, 1, memory.edgeCount())
	})

	t.Run("missing edge endpoint is a logged no-op", func(t *testing.T) {
		memory := newMemoryGraph()
		engine := newTestEngine(memory, nil, nil, nil)

		// Room references a location that was never synchronized.
		ok := engine.Sync(context.Background(), "exam_room", map[string]any{
			"room_id":     "R1",
			"location_id": "L404",
		})
		require.True(t, ok)

		_, found := memory.node(LabelExamRoom, "R1")
		assert.True(t, found)
		assert.Equal(t, 0, memory.edgeCount())
	})

	t.Run("unknown type reports failure without panicking", func(t *testing.T) {
		engine := newTestEngine(newMemoryGraph(), nil, nil, nil)
		assert.False(t, engine.Sync(context.Background(), "nonsense", map[string]any{}))
	})

	t.Run("record without identifier reports failure", func(t *testing.T) {
		engine := newTestEngine(newMemoryGraph(), nil, nil, nil)
		assert.False(t, engine.Sync(context.Background(), "exam", map[string]any{
			"exam_name": "Midterm",
		}))
	})

	t.Run("join resolution derives candidate edges", func(t *testing.T) {
		memory := newMemoryGraph()
		registrations := &fakeReader{rows: map[string]any{
			"CE1": map[string]any{
				"candidate_exam_id": "CE1",
				"candidate_id":      "C1",
				"exam_id":           "E1",
			},
		}}
		engine := newTestEngine(memory, nil, NewRegistrationResolver(registrations), nil)
		ctx := context.Background()

		require.True(t, engine.Sync(ctx, "candidate", map[string]any{"candidate_id": "C1"}))
		require.True(t, engine.Sync(ctx, "exam", map[string]any{"exam_id": "E1"}))

		require.True(t, engine.Sync(ctx, "certificate", map[string]any{
			"certificate_id":    "CERT1",
			"candidate_exam_id": "CE1",
		}))

		// Candidate and exam edges both derive through the registration.
		assert.Equal(t, 2, memory.edgeCount())
		_, found := memory.node(LabelCertificate, "CERT1")
		assert.True(t, found)
	})

	t.Run("join lookup failure still creates the node", func(t *testing.T) {
		memory := newMemoryGraph()
		resolver := NewRegistrationResolver(&fakeReader{err: errors.New("db locked")})
		engine := newTestEngine(memory, nil, resolver, nil)

		ok := engine.Sync(context.Background(), "certificate", map[string]any{
			"certificate_id":    "CERT1",
			"candidate_exam_id": "CE1",
		})
		require.True(t, ok)

		_, found := memory.node(LabelCertificate, "CERT1")
		assert.True(t, found)
		assert.Equal(t, 0, memory.edgeCount())
	})
}

func TestEngineBulkSync(t *testing.T) {
	t.Run("counts successes and isolates failures", func(t *testing.T) {
		memory := newMemoryGraph()
		memory.nodeErr["C2"] = errors.New("write refused")

		readers := relational.ReaderSet{
			"candidate": &fakeReader{all: relational.Page{Total: 3, Items: []any{
				map[string]any{"candidate_id": "C1", "full_name": "A"},
				map[string]any{"candidate_id": "C2", "full_name": "B"},
				map[string]any{"candidate_id": "C3", "full_name": "C"},
			}}},
		}
		engine := newTestEngine(memory, readers, nil, nil)

		count := engine.BulkSync(context.Background(), "candidate")
		assert.Equal(t, 2, count)
		assert.Equal(t, 2, memory.nodeCount())
	})

	t.Run("fetch failure yields zero", func(t *testing.T) {
		readers := relational.ReaderSet{
			"candidate": &fakeReader{err: errors.New("db locked")},
		}
		engine := newTestEngine(newMemoryGraph(), readers, nil, nil)
		assert.Equal(t, 0, engine.BulkSync(context.Background(), "candidate"))
	})

	t.Run("missing reader yields zero", func(t *testing.T) {
		engine := newTestEngine(newMemoryGraph(), relational.ReaderSet{}, nil, nil)
		assert.Equal(t, 0, engine.BulkSync(context.Background(), "candidate"))
	})
}

func TestEngineBulkSyncAll(t *testing.T) {
	readers := func() relational.ReaderSet {
		return relational.ReaderSet{
			"exam": &fakeReader{all: relational.Page{Total: 1, Items: []any{
				map[string]any{"exam_id": "E1", "exam_name": "Midterm"},
			}}},
			"candidate": &fakeReader{all: relational.Page{Total: 2, Items: []any{
				map[string]any{"candidate_id": "C1"},
				map[string]any{"candidate_id": "C2"},
			}}},
			"candidate_exam": &fakeReader{all: relational.Page{Total: 1, Items: []any{
				map[string]any{"candidate_exam_id": "CE1", "candidate_id": "C1", "exam_id": "E1"},
			}}},
		}
	}

	t.Run("runs every type in order and reports counts", func(t *testing.T) {
		memory := newMemoryGraph()
		engine := newTestEngine(memory, readers(), nil, nil)

		counts, err := engine.BulkSyncAll(context.Background(), false)
		require.NoError(t, err)

		assert.Equal(t, 1, counts["exam"])
		assert.Equal(t, 2, counts["candidate"])
		assert.Equal(t, 1, counts["candidate_exam"])
		assert.Equal(t, 0, counts["school"])
		assert.Len(t, counts, len(DefaultRegistry().Order()))

		// Registration edges find both endpoints because exams and
		// candidates synchronize first.
		assert.Equal(t, 1, memory.edgeCount())
	})

	t.Run("reconciles ontology when asked", func(t *testing.T) {
		reconciler := &fakeReconciler{linked: 4}
		engine := newTestEngine(newMemoryGraph(), readers(), nil, reconciler)

		_, err := engine.BulkSyncAll(context.Background(), true)
		require.NoError(t, err)
		assert.Equal(t, 1, reconciler.calls)
	})

	t.Run("skips reconciliation by default", func(t *testing.T) {
		reconciler := &fakeReconciler{}
		engine := newTestEngine(newMemoryGraph(), readers(), nil, reconciler)

		_, err := engine.BulkSyncAll(context.Background(), false)
		require.NoError(t, err)
		assert.Equal(t, 0, reconciler.calls)
	})

	t.Run("reconciliation failure surfaces", func(t *testing.T) {
		reconciler := &fakeReconciler{err: errors.New("class missing")}
		engine := newTestEngine(newMemoryGraph(), readers(), nil, reconciler)

		_, err := engine.BulkSyncAll(context.Background(), true)
		require.Error(t, err)
	})

	t.Run("cancellation stops between types", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		engine := newTestEngine(newMemoryGraph(), readers(), nil, nil)
		counts, err := engine.BulkSyncAll(ctx, false)

		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, counts)
	})
}
