package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCycleDetector_TriangleWash(t *testing.T) {
	// spec.md §8 scenario: triangle wash A->B->C->A.
	now := time.Now()
	l := Ledger{
		{Sender: "A", Receiver: "B", Amount: 100, Timestamp: now},
		{Sender: "B", Receiver: "C", Amount: 100, Timestamp: now},
		{Sender: "C", Receiver: "A", Amount: 100, Timestamp: now},
	}

	sg, err := NewSimpleDirectedGraph(l)
	require.NoError(t, err)
	mg := NewMultiGraph(l)

	store := NewScoringStore()
	d := NewCycleDetector(6, 10, discardLogger())
	require.NoError(t, d.Detect(mg, sg, store))

	assert.Contains(t, store.Labels("A"), "CYCLE")
	assert.Contains(t, store.Labels("B"), "CYCLE")
	assert.Contains(t, store.Labels("C"), "CYCLE")

	rings := store.Rings(25)
	require.Len(t, rings, 1)
	assert.Equal(t, "Cyclic Wash (1x loops)", rings[0].PatternType)
	assert.Equal(t, 30, rings[0].Score) // pts(10) * L(3) per spec.md §8 scenario 2
	assert.ElementsMatch(t, []string{"A", "B", "C"}, rings[0].Nodes)
}

func TestCycleDetector_TwoNodeLoopIgnored(t *testing.T) {
	// A<->B is a length-2 "cycle" and spec.md §4.5 requires length > 2.
	now := time.Now()
	l := Ledger{
		{Sender: "A", Receiver: "B", Amount: 100, Timestamp: now},
		{Sender: "B", Receiver: "A", Amount: 100, Timestamp: now},
	}

	sg, err := NewSimpleDirectedGraph(l)
	require.NoError(t, err)
	mg := NewMultiGraph(l)

	store := NewScoringStore()
	d := NewCycleDetector(6, 10, discardLogger())
	require.NoError(t, d.Detect(mg, sg, store))

	assert.Empty(t, store.Rings(25))
}

func TestCycleDetector_NoCycleInAcyclicGraph(t *testing.T) {
	now := time.Now()
	l := Ledger{
		{Sender: "A", Receiver: "B", Amount: 100, Timestamp: now},
		{Sender: "B", Receiver: "C", Amount: 100, Timestamp: now},
	}

	sg, err := NewSimpleDirectedGraph(l)
	require.NoError(t, err)
	mg := NewMultiGraph(l)

	store := NewScoringStore()
	d := NewCycleDetector(6, 10, discardLogger())
	require.NoError(t, d.Detect(mg, sg, store))

	assert.Empty(t, store.Rings(25))
	assert.False(t, store.IsSuspicious("A"))
}

func TestMinParallelCount(t *testing.T) {
	now := time.Now()
	l := Ledger{
		{Sender: "A", Receiver: "B", Amount: 100, Timestamp: now},
		{Sender: "A", Receiver: "B", Amount: 100, Timestamp: now},
		{Sender: "B", Receiver: "C", Amount: 100, Timestamp: now},
		{Sender: "C", Receiver: "A", Amount: 100, Timestamp: now},
	}
	mg := NewMultiGraph(l)

	assert.Equal(t, 1, minParallelCount(mg, []string{"A", "B", "C"}))
}
