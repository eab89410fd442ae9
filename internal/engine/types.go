package engine

import "time"

// Transaction is a single cleaned ledger row: one transfer of value from
// Sender to Receiver. Callers (internal/ingest, internal/httpapi) are
// responsible for producing Transactions from raw input; the engine never
// sees unclean data (spec.md §6's canonical-column contract). TxID is
// optional on input (the ingestion adapter defaults it to a synthetic
// GEN_TX_<i> when absent) but always populated by the time a Transaction
// reaches the engine.
type Transaction struct {
	TxID      string
	Sender    string
	Receiver  string
	Amount    float64
	Timestamp time.Time
}

// Ledger is the full set of transactions an analysis run operates over.
type Ledger []Transaction

// Accounts returns the deduplicated set of account IDs appearing as either
// sender or receiver across the ledger, in first-seen order.
func (l Ledger) Accounts() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range l {
		if _, ok := seen[t.Sender]; !ok {
			seen[t.Sender] = struct{}{}
			out = append(out, t.Sender)
		}
		if _, ok := seen[t.Receiver]; !ok {
			seen[t.Receiver] = struct{}{}
			out = append(out, t.Receiver)
		}
	}
	return out
}

// HistoryEntry is a single transaction summarized for a node's rendered
// transaction history (spec.md §4.9/§6), capped per
// DetectionConfig.HistoryCap.
type HistoryEntry struct {
	TxID         string `json:"tx_id"`
	Type         string `json:"type"` // "SENT" or "RECEIVED"
	Counterparty string `json:"counterparty"`
	Amount       float64 `json:"amount"`
	Time         string `json:"time"`
}

// FraudRing is a named cluster of accounts implicated by a single detector
// finding (spec.md §3/§4.8): a cycle, a smurfing fan-out/fan-in group, or a
// layered-shell chain. Field names follow the RingRegistry record shape in
// spec.md §3/§6.
type FraudRing struct {
	RingID       string   `json:"ring_id"`
	PatternType  string   `json:"pattern_type"`
	Nodes        []string `json:"nodes"`
	Score        int      `json:"score"`
	MemberCount  int      `json:"member_count"`
	IsHighestRisk bool    `json:"is_highest_risk,omitempty"`
}

// NodeData is one rendered node's `data` record within graph_data
// (spec.md §6).
type NodeData struct {
	ID              string         `json:"id"`
	Label           string         `json:"label"`
	Country         string         `json:"country"`
	IsSuspicious    bool           `json:"is_suspicious"`
	FraudType       string         `json:"fraud_type"`
	RiskScore       int            `json:"risk_score"`
	FraudCount      int            `json:"fraud_count"`
	TotalSent       float64        `json:"total_sent"`
	TotalReceived   float64        `json:"total_received"`
	History         []HistoryEntry `json:"history"`
	RecommendFreeze bool           `json:"recommend_freeze"`
}

// EdgeData is one rendered edge's `data` record within graph_data
// (spec.md §6): parallel transactions between the same pair collapsed to
// one representative amount/timestamp (the first encountered, per G_s's
// collapse rule in spec.md §3).
type EdgeData struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	Amount       string `json:"amount"` // 2-decimal string
	Timestamp    string `json:"timestamp"`
	IsFraudulent bool   `json:"is_fraudulent"`
}

// GraphRecord wraps a NodeData or EdgeData in the `{data: {...}}` envelope
// spec.md §6's graph_data array uses for both node and edge records.
type GraphRecord struct {
	Data interface{} `json:"data"`
}

// Analytics summarizes the analysis run as a whole (spec.md §4.9/§6).
type Analytics struct {
	TotalTransactions     int `json:"total_transactions"`
	FlaggedEntities       int `json:"flagged_entities"`
	FreezeRecommendations int `json:"freeze_recommendations"`
	MaxRiskScore          int `json:"max_risk_score"`
}

// Result is the full payload returned by a single RunAnalysis call
// (spec.md §4.9/§6).
type Result struct {
	Analytics  Analytics     `json:"analytics"`
	GraphData  []GraphRecord `json:"graph_data"`
	FraudRings []FraudRing   `json:"fraud_rings"`
	Summary    string        `json:"summary"`
}
