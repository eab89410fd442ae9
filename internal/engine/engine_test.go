package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegisshield/fraud-graph-engine/internal/config"
)

func TestFraudEngine_EmptyLedger(t *testing.T) {
	fe, err := NewFraudEngine(config.Default(), discardLogger())
	require.NoError(t, err)

	result, err := fe.RunAnalysis(Ledger{})
	require.NoError(t, err)

	assert.Empty(t, result.GraphData)
	assert.Empty(t, result.FraudRings)
	assert.Equal(t, 0, result.Analytics.TotalTransactions)
	assert.Equal(t, 0, result.Analytics.MaxRiskScore)
	assert.Equal(t, "Analysis Complete", result.Summary)
}

func TestFraudEngine_NilLedgerIsPrecondition(t *testing.T) {
	fe, err := NewFraudEngine(config.Default(), discardLogger())
	require.NoError(t, err)

	_, err = fe.RunAnalysis(nil)
	require.Error(t, err)
	assert.True(t, IsPrecondition(err))
}

func TestFraudEngine_RejectsEmptyDetectionConfig(t *testing.T) {
	_, err := NewFraudEngine(config.DetectionConfig{}, discardLogger())
	require.Error(t, err)
	assert.True(t, IsPrecondition(err))
}

func TestFraudEngine_DoubleFlagOverlap(t *testing.T) {
	// spec.md §8 scenario: an account that is both part of a wash cycle
	// and a smurfing boss should end up with fraud_count of at least 2 (the
	// geo-risk detector may add a third hit) and an overlap primary label:
	// OVERLAPPING_FRAUD, or a Shadow-Boss label if centrality promotion
	// overrides it.
	cfg := config.Default()
	now := time.Now()

	var l Ledger
	// Triangle wash cycle through BOSS.
	l = append(l,
		Transaction{Sender: "BOSS", Receiver: "B", Amount: 100, Timestamp: now},
		Transaction{Sender: "B", Receiver: "C", Amount: 100, Timestamp: now},
		Transaction{Sender: "C", Receiver: "BOSS", Amount: 100, Timestamp: now},
	)
	// BOSS also fans out small payments to enough unique mules to trip the
	// smurfing threshold.
	for i := 0; i < cfg.SmurfMinUniqueAccounts; i++ {
		l = append(l, Transaction{
			Sender: "BOSS", Receiver: fmt.Sprintf("mule-%02d", i),
			Amount: 1000, Timestamp: now,
		})
	}

	fe, err := NewFraudEngine(cfg, discardLogger())
	require.NoError(t, err)

	result, err := fe.RunAnalysis(l)
	require.NoError(t, err)

	boss := findNode(result, "BOSS")
	require.NotNil(t, boss, "BOSS should be present in the rendered node set")

	assert.GreaterOrEqual(t, boss.FraudCount, 2)
	assert.Contains(t, []string{"OVERLAPPING_FRAUD", "SHADOW_BOSS", "SHADOW_BOSS_OVERLAP"}, boss.FraudType)
}

func TestFraudEngine_TriangleWashFlowsThroughRunAnalysis(t *testing.T) {
	cfg := config.Default()
	now := time.Now()
	l := Ledger{
		{Sender: "A", Receiver: "B", Amount: 100, Timestamp: now},
		{Sender: "B", Receiver: "C", Amount: 100, Timestamp: now},
		{Sender: "C", Receiver: "A", Amount: 100, Timestamp: now},
	}

	fe, err := NewFraudEngine(cfg, discardLogger())
	require.NoError(t, err)

	result, err := fe.RunAnalysis(l)
	require.NoError(t, err)

	require.Len(t, result.FraudRings, 1)
	assert.Equal(t, "Cyclic Wash (1x loops)", result.FraudRings[0].PatternType)
	assert.Equal(t, 3, result.Analytics.FlaggedEntities)
}
