package engine

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCountryResolver gives deterministic, test-controlled country
// assignments so geo-risk scenarios don't depend on the production
// digest's actual output for arbitrary account strings.
type fakeCountryResolver struct {
	countries map[string]string
	highRisk  map[string]bool
}

func (f fakeCountryResolver) Assign(accountID string) string { return f.countries[accountID] }
func (f fakeCountryResolver) IsHighRisk(country string) bool  { return f.highRisk[country] }

func TestGeoRiskDetector_FlagsCrossBorderHighRisk(t *testing.T) {
	// spec.md §8 scenario: cross-border A->B, US->KP.
	resolver := fakeCountryResolver{
		countries: map[string]string{"A": "US", "B": "KP"},
		highRisk:  map[string]bool{"KP": true},
	}
	store := NewScoringStore()
	l := Ledger{{Sender: "A", Receiver: "B", Amount: 500, Timestamp: time.Now()}}

	d := NewGeoRiskDetector(resolver, 15, discardLogger())
	d.Detect(l, store)

	assert.True(t, store.IsSuspicious("A"))
	assert.True(t, store.IsSuspicious("B"))
	assert.Contains(t, store.Labels("A"), "OFFSHORE_ROUTING")
	assert.Contains(t, store.Labels("B"), "OFFSHORE_ROUTING")
	assert.Equal(t, 15, store.Points("A"))
	assert.Equal(t, 15, store.Points("B"))
}

func TestGeoRiskDetector_NodeOnMultipleQualifyingEdgesOnlyScoredOnce(t *testing.T) {
	resolver := fakeCountryResolver{
		countries: map[string]string{"A": "US", "B": "KP", "C": "US"},
		highRisk:  map[string]bool{"KP": true},
	}
	store := NewScoringStore()
	l := Ledger{
		{Sender: "A", Receiver: "B", Amount: 500, Timestamp: time.Now()},
		{Sender: "C", Receiver: "B", Amount: 500, Timestamp: time.Now()},
	}

	d := NewGeoRiskDetector(resolver, 15, discardLogger())
	d.Detect(l, store)

	assert.Equal(t, 15, store.Points("B"))
	assert.Equal(t, 1, store.FraudCount("B"))
}

func TestGeoRiskDetector_SameCountryNeverFlagged(t *testing.T) {
	resolver := fakeCountryResolver{
		countries: map[string]string{"A": "US", "B": "US"},
		highRisk:  map[string]bool{},
	}
	store := NewScoringStore()
	l := Ledger{{Sender: "A", Receiver: "B", Amount: 500, Timestamp: time.Now()}}

	d := NewGeoRiskDetector(resolver, 15, discardLogger())
	d.Detect(l, store)

	assert.False(t, store.IsSuspicious("A"))
	assert.False(t, store.IsSuspicious("B"))
}

func TestGeoRiskDetector_CrossBorderButNotHighRiskNotFlagged(t *testing.T) {
	resolver := fakeCountryResolver{
		countries: map[string]string{"A": "US", "B": "GB"},
		highRisk:  map[string]bool{"KP": true},
	}
	store := NewScoringStore()
	l := Ledger{{Sender: "A", Receiver: "B", Amount: 500, Timestamp: time.Now()}}

	d := NewGeoRiskDetector(resolver, 15, discardLogger())
	d.Detect(l, store)

	assert.False(t, store.IsSuspicious("A"))
	assert.False(t, store.IsSuspicious("B"))
}
