package engine

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/dominikbraun/graph"
)

// CycleDetector finds bounded-length simple cycles in the simple directed
// graph (spec.md §4.5): wash trading / round-tripping where value returns
// to its origin through a chain of intermediaries. Search is pruned to
// non-trivial strongly connected components first, since no cycle can
// cross an SCC boundary, and then bounded-DFS enumerates simple cycles up
// to CycleMaxLength within each one.
type CycleDetector struct {
	maxLength  int
	basePoints int
	logger     *slog.Logger
}

// NewCycleDetector builds a CycleDetector from config.
func NewCycleDetector(maxLength, basePoints int, logger *slog.Logger) *CycleDetector {
	return &CycleDetector{maxLength: maxLength, basePoints: basePoints, logger: logger}
}

// Detect runs the SCC-pruned bounded cycle search and assigns points for
// every qualifying cycle (length > 2).
func (d *CycleDetector) Detect(mg *MultiGraph, sg *SimpleDirectedGraph, store *ScoringStore) error {
	adjRaw, err := sg.AdjacencyMap()
	if err != nil {
		return fmt.Errorf("adjacency map: %w", err)
	}
	adj := simplifyAdjacency(adjRaw)

	sccs, err := sg.StronglyConnectedComponents()
	if err != nil {
		return fmt.Errorf("strongly connected components: %w", err)
	}

	cycleIndex := 0
	for _, scc := range sccs {
		if len(scc) < 2 {
			continue
		}
		members := make(map[string]struct{}, len(scc))
		for _, n := range scc {
			members[n] = struct{}{}
		}

		cycles := findSimpleCycles(adj, members, d.maxLength)
		for _, cycle := range cycles {
			if len(cycle) <= 2 {
				continue
			}

			loopCompletions := minParallelCount(mg, cycle)
			if loopCompletions < 1 {
				loopCompletions = 1
			}

			points := d.basePoints * loopCompletions
			store.AssignPoints(cycle, points, "CYCLE")

			ring := FraudRing{
				RingID:      fmt.Sprintf("CYCLE_%d", cycleIndex),
				Nodes:       append([]string(nil), cycle...),
				Score:       points * len(cycle),
				PatternType: fmt.Sprintf("Cyclic Wash (%dx loops)", loopCompletions),
			}
			store.AddRing(ring)
			cycleIndex++
		}
	}

	d.logger.Info("cycle detection complete", "cycles_found", cycleIndex)
	return nil
}

// simplifyAdjacency flattens dominikbraun/graph's AdjacencyMap (which keys
// each neighbor to an Edge[string] we don't need) down to plain
// account -> []account slices for the DFS below.
func simplifyAdjacency(adj map[string]map[string]graph.Edge[string]) map[string][]string {
	out := make(map[string][]string, len(adj))
	for src, neighbors := range adj {
		for dst := range neighbors {
			out[src] = append(out[src], dst)
		}
		sort.Strings(out[src])
	}
	return out
}

// minParallelCount returns the minimum number of parallel transactions
// across each consecutive pair in the cycle (spec.md §4.5's
// loop_completions: the cycle can only "complete" as many times as its
// thinnest edge allows).
func minParallelCount(mg *MultiGraph, cycle []string) int {
	min := -1
	for i := 0; i < len(cycle); i++ {
		from := cycle[i]
		to := cycle[(i+1)%len(cycle)]
		n := mg.ParallelCount(from, to)
		if min == -1 || n < min {
			min = n
		}
	}
	if min < 0 {
		return 0
	}
	return min
}

// findSimpleCycles enumerates simple cycles within an SCC's member set, up
// to maxLength nodes, via bounded DFS. Each cycle is reported starting from
// its lexicographically smallest member so the same cycle is never
// reported once per rotation.
func findSimpleCycles(adj map[string][]string, members map[string]struct{}, maxLength int) [][]string {
	nodes := make([]string, 0, len(members))
	for n := range members {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	var cycles [][]string
	seen := make(map[string]struct{})

	for _, start := range nodes {
		path := []string{start}
		onPath := map[string]bool{start: true}

		var dfs func(current string)
		dfs = func(current string) {
			if len(path) > maxLength {
				return
			}
			for _, next := range adj[current] {
				if _, ok := members[next]; !ok {
					continue
				}
				if next == start {
					if len(path) > 1 {
						recordCycle(path, &cycles, seen)
					}
					continue
				}
				if onPath[next] {
					continue
				}
				// Only extend through nodes not lexicographically smaller
				// than start, so this start node owns every rotation of
				// the cycle it participates in exactly once.
				if next < start {
					continue
				}
				path = append(path, next)
				onPath[next] = true
				dfs(next)
				onPath[next] = false
				path = path[:len(path)-1]
			}
		}
		dfs(start)
	}

	return cycles
}

func recordCycle(path []string, cycles *[][]string, seen map[string]struct{}) {
	key := cycleKey(path)
	if _, ok := seen[key]; ok {
		return
	}
	seen[key] = struct{}{}
	cycle := append([]string(nil), path...)
	*cycles = append(*cycles, cycle)
}

func cycleKey(path []string) string {
	key := ""
	for _, n := range path {
		key += n + ">"
	}
	return key
}
