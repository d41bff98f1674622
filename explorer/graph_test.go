package explorer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssemble(t *testing.T) {
	t.Parallel()

	snap := Snapshot{
		Domains: []string{"a.com", "b.com", "c.com"},
		Links: map[string][]string{
			"a.com": {"b.com", "c.com"},
			"b.com": {"c.com", "a.com"},
			"c.com": {"d.com"},
		},
	}

	graph := Assemble(snap)

	require.Equal(t, []Node{
		{ID: "v0", Domain: "a.com"},
		{ID: "v1", Domain: "b.com"},
		{ID: "v2", Domain: "c.com"},
	}, graph.Nodes)
	require.Equal(t, []Edge{
		{From: "a.com", To: "b.com"},
		{From: "a.com", To: "c.com"},
		{From: "b.com", To: "c.com"},
		{From: "b.com", To: "a.com"},
	}, graph.Edges)

	require.Equal(t, graph, Assemble(snap), "assembly must not depend on call count")
}

func TestAssembleEdgesAreClosed(t *testing.T) {
	t.Parallel()

	snap := Snapshot{
		Domains: []string{"a.com", "b.com"},
		Links: map[string][]string{
			"a.com": {"x.com", "b.com", "y.com"},
			"b.com": {},
		},
	}

	graph := Assemble(snap)
	ids := graph.NodeIDs()

	for _, edge := range graph.Edges {
		require.Contains(t, ids, edge.From)
		require.Contains(t, ids, edge.To)
	}
	require.Len(t, graph.Edges, 1)
}

func TestAssembleEmpty(t *testing.T) {
	t.Parallel()

	graph := Assemble(Snapshot{})
	require.Empty(t, graph.Nodes)
	require.NotNil(t, graph.Edges)
	require.Empty(t, graph.Edges)
}
