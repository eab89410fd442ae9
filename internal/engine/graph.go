package engine

import (
	"fmt"

	"github.com/dominikbraun/graph"
)

// MultiEdge is one parallel edge in the transaction multigraph: a single
// transaction from Source to Target.
type MultiEdge struct {
	Target string
	Amount float64
}

// MultiGraph is the directed multigraph G_m (spec.md §3): one edge per
// transaction, parallel edges retained. No graph library in the example
// corpus models parallel-edge directed multigraphs with per-edge retrieval
// (dominikbraun/graph de-dupes on AddEdge), so this is a plain adjacency
// map.
type MultiGraph struct {
	out map[string][]MultiEdge
}

// NewMultiGraph builds G_m from a ledger.
func NewMultiGraph(l Ledger) *MultiGraph {
	g := &MultiGraph{out: make(map[string][]MultiEdge)}
	for _, t := range l {
		g.out[t.Sender] = append(g.out[t.Sender], MultiEdge{Target: t.Receiver, Amount: t.Amount})
	}
	return g
}

// OutEdges returns every parallel edge leaving account.
func (g *MultiGraph) OutEdges(account string) []MultiEdge {
	return g.out[account]
}

// ParallelCount returns the number of transactions from source directly to
// target (spec.md §4.5's loop_completions multiplicity weighting reads
// this for each consecutive pair in a cycle).
func (g *MultiGraph) ParallelCount(source, target string) int {
	n := 0
	for _, e := range g.out[source] {
		if e.Target == target {
			n++
		}
	}
	return n
}

// SimpleDirectedGraph is the deduplicated topology G_s (spec.md §3), backed
// by dominikbraun/graph so that strongly-connected-component pruning and
// predecessor/adjacency queries reuse a maintained generic graph library
// instead of reimplementing them.
type SimpleDirectedGraph struct {
	g graph.Graph[string, string]
}

// NewSimpleDirectedGraph collapses a ledger's parallel edges into a simple
// directed graph over account IDs.
func NewSimpleDirectedGraph(l Ledger) (*SimpleDirectedGraph, error) {
	g := graph.New(graph.StringHash, graph.Directed())

	for _, acc := range l.Accounts() {
		if err := g.AddVertex(acc); err != nil && err != graph.ErrVertexAlreadyExists {
			return nil, fmt.Errorf("add vertex %s: %w", acc, err)
		}
	}

	seen := make(map[[2]string]struct{})
	for _, t := range l {
		key := [2]string{t.Sender, t.Receiver}
		if t.Sender == t.Receiver {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if err := g.AddEdge(t.Sender, t.Receiver); err != nil && err != graph.ErrEdgeAlreadyExists {
			return nil, fmt.Errorf("add edge %s->%s: %w", t.Sender, t.Receiver, err)
		}
	}

	return &SimpleDirectedGraph{g: g}, nil
}

// AdjacencyMap exposes the underlying graph's adjacency map: account ->
// set of directly-reachable accounts.
func (s *SimpleDirectedGraph) AdjacencyMap() (map[string]map[string]graph.Edge[string], error) {
	return s.g.AdjacencyMap()
}

// PredecessorMap exposes the underlying graph's predecessor map: account ->
// set of accounts with an edge into it.
func (s *SimpleDirectedGraph) PredecessorMap() (map[string]map[string]graph.Edge[string], error) {
	return s.g.PredecessorMap()
}

// StronglyConnectedComponents returns the graph's SCCs. Components of size
// 1 with no self-loop can never contain a cycle and are skipped by callers
// before the bounded cycle search (spec.md §9's standard optimization).
func (s *SimpleDirectedGraph) StronglyConnectedComponents() ([][]string, error) {
	return graph.StronglyConnectedComponents(s.g)
}

// Vertices returns every account ID present in the graph.
func (s *SimpleDirectedGraph) Vertices() ([]string, error) {
	adj, err := s.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(adj))
	for k := range adj {
		out = append(out, k)
	}
	return out, nil
}
