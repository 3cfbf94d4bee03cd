package refs

import (
	"fmt"
	"sort"
)

// Graph is a directed graph of segment dependencies. An edge from
// provider to consumer means the consumer imports at least one symbol
// from the provider. It backs cycle reporting and the deterministic
// ordering of synthesized headers.
type Graph struct {
	nodes   map[string]bool
	edges   map[string][]string // provider -> consumers
	parents map[string][]string // consumer -> providers
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]bool),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// AddNode adds a segment to the graph.
func (g *Graph) AddNode(name string) {
	if !g.nodes[name] {
		g.nodes[name] = true
		g.edges[name] = []string{}
		g.parents[name] = []string{}
	}
}

// AddEdge records that consumer depends on provider.
func (g *Graph) AddEdge(provider, consumer string) error {
	if !g.nodes[provider] {
		return fmt.Errorf("provider segment %q does not exist", provider)
	}
	if !g.nodes[consumer] {
		return fmt.Errorf("consumer segment %q does not exist", consumer)
	}
	if provider == consumer {
		return fmt.Errorf("self-dependency on segment %q", provider)
	}

	if !contains(g.edges[provider], consumer) {
		g.edges[provider] = append(g.edges[provider], consumer)
	}
	if !contains(g.parents[consumer], provider) {
		g.parents[consumer] = append(g.parents[consumer], provider)
	}
	return nil
}

// Providers returns the segments the named segment imports from, sorted.
func (g *Graph) Providers(name string) []string {
	out := append([]string(nil), g.parents[name]...)
	sort.Strings(out)
	return out
}

// Consumers returns the segments importing from the named segment, sorted.
func (g *Graph) Consumers(name string) []string {
	out := append([]string(nil), g.edges[name]...)
	sort.Strings(out)
	return out
}

// NodeCount returns the number of segments in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of dependency edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, consumers := range g.edges {
		n += len(consumers)
	}
	return n
}

// HasCycle reports whether segments depend on each other circularly,
// along with one witnessing path. A cyclic split still works for ES
// modules but is worth surfacing in reports.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	inStack := make(map[string]bool)
	cameFrom := make(map[string]string)

	var cycle []string

	var dfs func(name string) bool
	dfs = func(name string) bool {
		visited[name] = true
		inStack[name] = true

		for _, next := range g.edges[name] {
			if !visited[next] {
				cameFrom[next] = name
				if dfs(next) {
					return true
				}
			} else if inStack[next] {
				cycle = []string{next}
				for cur := name; cur != next; cur = cameFrom[cur] {
					cycle = append([]string{cur}, cycle...)
				}
				cycle = append([]string{next}, cycle...)
				return true
			}
		}

		inStack[name] = false
		return false
	}

	names := g.sortedNodes()
	for _, name := range names {
		if !visited[name] {
			if dfs(name) {
				return true, cycle
			}
		}
	}
	return false, nil
}

// TopologicalOrder returns segments with providers before consumers.
// Cyclic graphs get an error naming the cycle.
func (g *Graph) TopologicalOrder() ([]string, error) {
	if cyclic, path := g.HasCycle(); cyclic {
		return nil, fmt.Errorf("circular segment dependency: %v", path)
	}

	visited := make(map[string]bool)
	var order []string

	var visit func(name string)
	visit = func(name string) {
		if visited[name] {
			return
		}
		visited[name] = true
		for _, provider := range g.Providers(name) {
			visit(provider)
		}
		order = append(order, name)
	}

	for _, name := range g.sortedNodes() {
		visit(name)
	}
	return order, nil
}

func (g *Graph) sortedNodes() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
