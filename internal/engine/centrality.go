package engine

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
)

// CentralityPromoter runs betweenness centrality over the rendered
// subgraph and promotes the highest-centrality nodes to "Shadow Boss"
// status (spec.md §4.7): accounts that sit on an unusually large share of
// shortest paths between other rendered accounts, even if no single
// detector flagged them directly as a ring leader.
//
// This runs during payload assembly, over the rendered subgraph only (not
// the full ledger graph), using gonum's Brandes'-algorithm implementation
// rather than a hand-rolled one (spec.md §9 names Brandes' explicitly).
type CentralityPromoter struct {
	points     int
	percentile int
	logger     *slog.Logger
}

// NewCentralityPromoter builds a CentralityPromoter from config.
func NewCentralityPromoter(points, percentile int, logger *slog.Logger) *CentralityPromoter {
	return &CentralityPromoter{points: points, percentile: percentile, logger: logger}
}

// Promote computes betweenness centrality over the given node/edge set and
// promotes the top percentile to Shadow Boss. The freeze set must already
// have been computed from store's pre-promotion scores (spec.md §9's
// Open Question: the boss bonus is applied independently of, and after,
// the freeze-threshold evaluation).
func (c *CentralityPromoter) Promote(nodes []string, edges []renderedEdge, store *ScoringStore) {
	if len(nodes) == 0 {
		return
	}

	g := simple.NewDirectedGraph()
	ids := make(map[string]int64, len(nodes))
	for i, n := range nodes {
		id := int64(i)
		ids[n] = id
		g.AddNode(simple.Node(id))
	}
	for _, e := range edges {
		from, ok1 := ids[e.source]
		to, ok2 := ids[e.target]
		if !ok1 || !ok2 {
			continue
		}
		if g.HasEdgeFromTo(from, to) {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
	}

	centrality := network.Betweenness(g)

	values := make([]float64, 0, len(centrality))
	for _, v := range centrality {
		values = append(values, v)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))

	if len(values) == 0 {
		return
	}
	cutoffIdx := int(math.Ceil(float64(len(values)) / float64(c.percentile)))
	if cutoffIdx < 1 {
		cutoffIdx = 1
	}
	if cutoffIdx > len(values) {
		cutoffIdx = len(values)
	}
	threshold := values[cutoffIdx-1]

	promoted := 0
	for _, n := range nodes {
		id, ok := ids[n]
		if !ok {
			continue
		}
		score := centrality[id]
		if score < threshold || score == 0 {
			continue
		}

		hadLabels := len(store.Labels(n)) > 0
		label := "SHADOW_BOSS"
		if hadLabels {
			label = "SHADOW_BOSS_OVERLAP"
		}
		store.AddLabel(n, label)
		store.SetPoints(n, store.Points(n)+c.points)
		store.MarkSuspicious(n)
		promoted++
	}

	c.logger.Info("centrality promotion complete", "candidates", len(nodes), "promoted", promoted)
}
