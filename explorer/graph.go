package explorer

import "strconv"

// Node is a visited domain.
type Node struct {
	ID     string `json:"id"`
	Domain string `json:"domain"`
}

// Edge is a link between two visited domains.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is the explored ball: visited domains and the links between them.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Assemble builds the graph of a finished exploration.
// Links to domains that were never visited are dropped.
func Assemble(snap Snapshot) Graph {
	graph := Graph{
		Nodes: make([]Node, 0, len(snap.Domains)),
		Edges: []Edge{},
	}

	for i, domain := range snap.Domains {
		graph.Nodes = append(graph.Nodes, Node{
			ID:     "v" + strconv.Itoa(i),
			Domain: domain,
		})
	}

	for _, from := range snap.Domains {
		for _, to := range snap.Links[from] {
			if !snap.Has(to) {
				continue
			}

			graph.Edges = append(graph.Edges, Edge{From: from, To: to})
		}
	}

	return graph
}

// NodeIDs maps each domain to its node ID.
func (g Graph) NodeIDs() map[string]string {
	ids := make(map[string]string, len(g.Nodes))
	for _, node := range g.Nodes {
		ids[node.Domain] = node.ID
	}

	return ids
}
