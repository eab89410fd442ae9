package engine

import (
	"fmt"
	"log/slog"
	"sort"
)

// LayeredShellDetector finds long pass-through chains originating from a
// source with no incoming edges (spec.md §4.6): money entering the system
// fresh and moving through several shell-like intermediaries before
// settling. The traversal is a depth-bounded breadth-first walk over the
// simple directed graph's adjacency map rather than a gonum traverse.Walk
// (see DESIGN.md): the stop condition is an explicit depth cap, which a
// plain queue expresses more directly.
type LayeredShellDetector struct {
	minDepth int
	points   int
	logger   *slog.Logger
}

// NewLayeredShellDetector builds a LayeredShellDetector from config.
func NewLayeredShellDetector(minDepth, points int, logger *slog.Logger) *LayeredShellDetector {
	return &LayeredShellDetector{minDepth: minDepth, points: points, logger: logger}
}

// Detect walks forward from every in-degree-zero root and flags any chain
// whose length exceeds minDepth.
func (d *LayeredShellDetector) Detect(sg *SimpleDirectedGraph, store *ScoringStore) error {
	adjRaw, err := sg.AdjacencyMap()
	if err != nil {
		return fmt.Errorf("adjacency map: %w", err)
	}
	predRaw, err := sg.PredecessorMap()
	if err != nil {
		return fmt.Errorf("predecessor map: %w", err)
	}

	adj := make(map[string][]string)
	for src, neighbors := range adjRaw {
		for dst := range neighbors {
			adj[src] = append(adj[src], dst)
		}
		sort.Strings(adj[src])
	}

	maxDepth := d.minDepth + 1
	chainsFound := 0

	for node, preds := range predRaw {
		if len(preds) > 0 {
			continue // not a root
		}
		if len(adj[node]) == 0 {
			continue // no outgoing edges, can't start a chain
		}

		chain := bfsChain(adj, node, maxDepth)
		if len(chain) <= d.minDepth {
			continue
		}

		store.AssignPoints(chain, d.points, "LAYERED")

		ring := FraudRing{
			RingID:      fmt.Sprintf("SHELL_%s", last4(node)),
			Nodes:       chain,
			Score:       d.points,
			PatternType: "Layered Structuring",
		}
		store.AddRing(ring)
		chainsFound++
	}

	d.logger.Info("layered-shell detection complete", "chains_found", chainsFound)
	return nil
}

// bfsChain performs a single breadth-first traversal from root up to
// maxDepth edges, accumulating every newly discovered node into one
// discovery-order chain (root first, then each successor the first time it
// is reached; duplicates suppressed). This is a true BFS producing exactly
// one chain per root, not a per-path enumeration (spec.md §4.6).
func bfsChain(adj map[string][]string, root string, maxDepth int) []string {
	type frontier struct {
		node  string
		depth int
	}

	visited := map[string]bool{root: true}
	chain := []string{root}
	queue := []frontier{{root, 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		for _, next := range adj[cur.node] {
			if visited[next] {
				continue
			}
			visited[next] = true
			chain = append(chain, next)
			queue = append(queue, frontier{next, cur.depth + 1})
		}
	}

	return chain
}
