package engine

import (
	"fmt"
	"log/slog"
	"sort"
)

// PayloadAssembler builds the final rendered Result from the full ledger
// and the accumulated ScoringStore (spec.md §4.9): it selects a bounded
// node set, collapses parallel edges, computes centrality-based Shadow
// Boss promotion, and assembles per-node history and run-level analytics.
type PayloadAssembler struct {
	maxNodes   int
	historyCap int
	ringCap    int
	freezeAt   int
	centrality *CentralityPromoter
	logger     *slog.Logger
}

// NewPayloadAssembler builds a PayloadAssembler from config.
func NewPayloadAssembler(maxNodes, historyCap, ringCap, freezeAt int, centrality *CentralityPromoter, logger *slog.Logger) *PayloadAssembler {
	return &PayloadAssembler{
		maxNodes:   maxNodes,
		historyCap: historyCap,
		ringCap:    ringCap,
		freezeAt:   freezeAt,
		centrality: centrality,
		logger:     logger,
	}
}

// Assemble builds the final Result.
func (p *PayloadAssembler) Assemble(l Ledger, store *ScoringStore, countries *CountryAssigner) Result {
	nodeSet := p.selectNodes(l, store)

	freezeSet := make(map[string]bool, len(nodeSet))
	for n := range nodeSet {
		if store.Points(n) >= p.freezeAt {
			freezeSet[n] = true
		}
	}

	edges := buildEdges(l, nodeSet)

	if p.centrality != nil {
		nodeList := make([]string, 0, len(nodeSet))
		for n := range nodeSet {
			nodeList = append(nodeList, n)
		}
		p.centrality.Promote(nodeList, edges, store)
	}

	// Edge fraud flags are evaluated against suspicious_nodes AFTER Shadow
	// Boss promotion, since promotion can add accounts to that set
	// (spec.md §6: "An edge is is_fraudulent iff both endpoints are in
	// suspicious_nodes").
	for i := range edges {
		edges[i].isFraudulent = store.IsSuspicious(edges[i].source) && store.IsSuspicious(edges[i].target)
	}

	nodes := p.buildNodes(l, nodeSet, freezeSet, store, countries)

	analytics := Analytics{
		TotalTransactions: len(l),
		MaxRiskScore:      store.MaxScore(),
		// flagged_entities counts the full suspicious set, not just the
		// rendered subset: a suspicious account dropped by the maxNodes
		// truncation must still be counted (spec.md §4.9/§8).
		FlaggedEntities: len(store.SuspiciousNodes()),
	}
	for _, n := range nodes {
		if n.recommendFreeze {
			analytics.FreezeRecommendations++
		}
	}

	graphData := make([]GraphRecord, 0, len(nodes)+len(edges))
	for _, n := range nodes {
		graphData = append(graphData, GraphRecord{Data: n.toNodeData()})
	}
	for _, e := range edges {
		graphData = append(graphData, GraphRecord{Data: e.toEdgeData()})
	}

	rings := store.Rings(p.ringCap)
	if len(rings) > 0 {
		rings[0].IsHighestRisk = true
	}

	return Result{
		Analytics:  analytics,
		GraphData:  graphData,
		FraudRings: rings,
		Summary:    "Analysis Complete",
	}
}

// selectNodes seeds the render set from every suspicious account (or, if
// none were flagged, up to 100 arbitrary accounts), expands one hop, and
// truncates to maxNodes.
func (p *PayloadAssembler) selectNodes(l Ledger, store *ScoringStore) map[string]struct{} {
	seeds := store.SuspiciousNodes()
	sort.Strings(seeds)

	if len(seeds) == 0 {
		all := l.Accounts()
		if len(all) > 100 {
			all = all[:100]
		}
		seeds = all
	}

	adjacency := make(map[string]map[string]struct{})
	for _, t := range l {
		if adjacency[t.Sender] == nil {
			adjacency[t.Sender] = make(map[string]struct{})
		}
		adjacency[t.Sender][t.Receiver] = struct{}{}
		if adjacency[t.Receiver] == nil {
			adjacency[t.Receiver] = make(map[string]struct{})
		}
		adjacency[t.Receiver][t.Sender] = struct{}{}
	}

	nodeSet := make(map[string]struct{})
	for _, s := range seeds {
		nodeSet[s] = struct{}{}
	}
	for _, s := range seeds {
		for neighbor := range adjacency[s] {
			nodeSet[neighbor] = struct{}{}
		}
	}

	if len(nodeSet) <= p.maxNodes {
		return nodeSet
	}

	ordered := make([]string, 0, len(nodeSet))
	for n := range nodeSet {
		ordered = append(ordered, n)
	}
	sort.Strings(ordered)
	truncated := make(map[string]struct{}, p.maxNodes)
	for _, n := range ordered[:p.maxNodes] {
		truncated[n] = struct{}{}
	}
	return truncated
}

// renderedEdge is the internal representation of one collapsed edge before
// it is wrapped into the wire EdgeData shape.
type renderedEdge struct {
	source, target string
	amount         float64
	timestamp      string
	isFraudulent   bool
}

func (e renderedEdge) toEdgeData() EdgeData {
	return EdgeData{
		Source:       e.source,
		Target:       e.target,
		Amount:       fmt.Sprintf("%.2f", e.amount),
		Timestamp:    e.timestamp,
		IsFraudulent: e.isFraudulent,
	}
}

// buildEdges collapses parallel transactions between the same node pair
// into one renderedEdge, restricted to the rendered node set. The
// representative amount/timestamp are those of the first-encountered
// transaction for that pair, per spec.md §4.9 step 2 — parallel edges are
// not aggregated.
func buildEdges(l Ledger, nodeSet map[string]struct{}) []renderedEdge {
	type key struct{ from, to string }
	agg := make(map[key]*renderedEdge)
	var order []key

	for _, t := range l {
		if _, ok := nodeSet[t.Sender]; !ok {
			continue
		}
		if _, ok := nodeSet[t.Receiver]; !ok {
			continue
		}
		k := key{t.Sender, t.Receiver}
		if _, ok := agg[k]; ok {
			continue
		}
		agg[k] = &renderedEdge{
			source:    t.Sender,
			target:    t.Receiver,
			amount:    t.Amount,
			timestamp: t.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
		}
		order = append(order, k)
	}

	out := make([]renderedEdge, 0, len(order))
	for _, k := range order {
		out = append(out, *agg[k])
	}
	return out
}

// renderedNode is the internal representation of one rendered node before
// it is wrapped into the wire NodeData shape.
type renderedNode struct {
	id              string
	country         string
	score           int
	fraudType       string
	fraudCount      int
	recommendFreeze bool
	totalSent       float64
	totalReceived   float64
	history         []HistoryEntry
	isSuspicious    bool
}

func (n renderedNode) toNodeData() NodeData {
	return NodeData{
		ID:              n.id,
		Label:           n.id,
		Country:         n.country,
		IsSuspicious:    n.isSuspicious,
		FraudType:       n.fraudType,
		RiskScore:       n.score,
		FraudCount:      n.fraudCount,
		TotalSent:       n.totalSent,
		TotalReceived:   n.totalReceived,
		History:         n.history,
		RecommendFreeze: n.recommendFreeze,
	}
}

// buildNodes assembles each rendered node's summary, computing
// total_sent/total_received and capped history over the FULL ledger (not
// just the rendered subgraph), per spec.md §4.9.
func (p *PayloadAssembler) buildNodes(l Ledger, nodeSet map[string]struct{}, freezeSet map[string]bool, store *ScoringStore, countries *CountryAssigner) []renderedNode {
	history := make(map[string][]HistoryEntry)
	totals := make(map[string]*struct{ sent, received float64 })

	ensure := func(acc string) *struct{ sent, received float64 } {
		if totals[acc] == nil {
			totals[acc] = &struct{ sent, received float64 }{}
		}
		return totals[acc]
	}

	for _, t := range l {
		ts := t.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00")
		if _, ok := nodeSet[t.Sender]; ok {
			ensure(t.Sender).sent += t.Amount
			history[t.Sender] = append(history[t.Sender], HistoryEntry{
				TxID: t.TxID, Type: "SENT", Counterparty: t.Receiver, Amount: t.Amount, Time: ts,
			})
		}
		if _, ok := nodeSet[t.Receiver]; ok {
			ensure(t.Receiver).received += t.Amount
			history[t.Receiver] = append(history[t.Receiver], HistoryEntry{
				TxID: t.TxID, Type: "RECEIVED", Counterparty: t.Sender, Amount: t.Amount, Time: ts,
			})
		}
	}

	nodes := make([]renderedNode, 0, len(nodeSet))
	ordered := make([]string, 0, len(nodeSet))
	for n := range nodeSet {
		ordered = append(ordered, n)
	}
	sort.Strings(ordered)

	for _, n := range ordered {
		h := history[n]
		// Keep the first-encountered entries, not the most recent
		// (ledger order, per original_source/backend/engine.py).
		if len(h) > p.historyCap {
			h = h[:p.historyCap]
		}

		t := ensure(n)

		nodes = append(nodes, renderedNode{
			id:              n,
			country:         countries.Assign(n),
			score:           store.Points(n),
			fraudType:       primaryLabel(store, n),
			fraudCount:      store.FraudCount(n),
			recommendFreeze: freezeSet[n],
			totalSent:       t.sent,
			totalReceived:   t.received,
			history:         h,
			isSuspicious:    store.IsSuspicious(n),
		})
	}

	return nodes
}

// primaryLabel applies the Shadow-Boss override on top of the store's
// ordinary single-label/OVERLAPPING_FRAUD rule (spec.md §4.7/§4.8): once
// an account is promoted to Shadow Boss, that becomes its primary label
// regardless of how many other labels it also carries.
func primaryLabel(store *ScoringStore, account string) string {
	for _, l := range store.Labels(account) {
		if l == "SHADOW_BOSS" || l == "SHADOW_BOSS_OVERLAP" {
			return l
		}
	}
	return store.PrimaryLabel(account)
}
