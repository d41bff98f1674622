package explorer

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var errNoSuchHost = errors.New("no such host")

// linkGraph serves as both fetcher and extractor: the page of a domain is its
// own name and its links come from the adjacency map.
type linkGraph struct {
	mu      sync.Mutex
	links   map[string][]string
	failing map[string]error
	fetched []string
	calls   map[string]int
}

func newLinkGraph(links map[string][]string) *linkGraph {
	return &linkGraph{
		links:   links,
		failing: map[string]error{},
		calls:   map[string]int{},
	}
}

func (g *linkGraph) FetchDomain(ctx context.Context, domain string) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.fetched = append(g.fetched, domain)
	g.calls[domain]++

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err, ok := g.failing[domain]; ok {
		return nil, err
	}

	if _, ok := g.links[domain]; !ok {
		return nil, errNoSuchHost
	}

	return []byte(domain), nil
}

func (g *linkGraph) Extract(content []byte, owner string) ([]string, []error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return append([]string(nil), g.links[string(content)]...), nil
}

func (g *linkGraph) fetchOrder() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return append([]string(nil), g.fetched...)
}

func (g *linkGraph) maxCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	most := 0
	for _, n := range g.calls {
		most = max(most, n)
	}

	return most
}

func newTestExplorer(center string, maxDepth, workers int, graph *linkGraph) *Explorer {
	explorer, err := New(Options{Center: center, MaxDepth: maxDepth, Workers: workers}, graph, graph)
	if err != nil {
		panic(err)
	}

	return explorer
}

func outcomes(visits []Visit) []string {
	out := make([]string, 0, len(visits))
	for _, visit := range visits {
		out = append(out, fmt.Sprintf("%s@%d:%s", visit.Domain, visit.Depth, visit.Outcome))
	}

	return out
}
