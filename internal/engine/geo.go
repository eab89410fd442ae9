package engine

import (
	"log/slog"
	"sort"
)

// countryResolver is the subset of CountryAssigner's behavior the detector
// needs; kept as an interface so tests can supply a fixed mapping instead
// of depending on the digest-based assignment's actual output.
type countryResolver interface {
	Assign(accountID string) string
	IsHighRisk(country string) bool
}

// GeoRiskDetector flags transactions that cross a jurisdiction boundary
// where either side is in a high-risk country (spec.md §4.3). It never
// registers a ring — geo-risk is a per-edge signal, not a ring-forming
// pattern.
type GeoRiskDetector struct {
	countries countryResolver
	points    int
	logger    *slog.Logger
}

// NewGeoRiskDetector builds a GeoRiskDetector.
func NewGeoRiskDetector(countries countryResolver, points int, logger *slog.Logger) *GeoRiskDetector {
	return &GeoRiskDetector{countries: countries, points: points, logger: logger}
}

// Detect scans every transaction and assigns points to both parties of any
// cross-border transfer touching a high-risk jurisdiction. Each qualifying
// account is assigned points exactly once for this pass, regardless of how
// many qualifying edges it participates in (original_source/backend/
// engine.py dedups the same way before assigning).
func (d *GeoRiskDetector) Detect(l Ledger, store *ScoringStore) {
	flagged := make(map[string]struct{})
	edgesFlagged := 0
	for _, t := range l {
		senderCountry := d.countries.Assign(t.Sender)
		receiverCountry := d.countries.Assign(t.Receiver)

		if senderCountry == receiverCountry {
			continue
		}
		if !d.countries.IsHighRisk(senderCountry) && !d.countries.IsHighRisk(receiverCountry) {
			continue
		}

		flagged[t.Sender] = struct{}{}
		flagged[t.Receiver] = struct{}{}
		edgesFlagged++
	}

	if len(flagged) > 0 {
		accounts := make([]string, 0, len(flagged))
		for a := range flagged {
			accounts = append(accounts, a)
		}
		sort.Strings(accounts)
		store.AssignPoints(accounts, d.points, "OFFSHORE_ROUTING")
	}

	d.logger.Info("geo-risk detection complete", "transactions_flagged", edgesFlagged, "accounts_flagged", len(flagged))
}
