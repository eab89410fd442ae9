package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLedger_Basic(t *testing.T) {
	csv := "sender_id,receiver_id,amount,timestamp,transaction_id\n" +
		"A,B,100.50,2024-01-01T00:00:00Z,TX1\n" +
		"B,C,0,2024-01-02T00:00:00Z,TX2\n" // amount 0 is dropped

	ledger, err := ReadLedger(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, "A", ledger[0].Sender)
	assert.Equal(t, "B", ledger[0].Receiver)
	assert.Equal(t, 100.50, ledger[0].Amount)
	assert.Equal(t, "TX1", ledger[0].TxID)
}

func TestReadLedger_MissingRequiredColumn(t *testing.T) {
	csv := "sender_id,receiver_id\nA,B\n"

	_, err := ReadLedger(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount")
}

func TestReadLedger_OptionalColumnsDefaulted(t *testing.T) {
	csv := "sender_id,receiver_id,amount\nA,B,100\n"

	ledger, err := ReadLedger(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, "GEN_TX_1", ledger[0].TxID)
	assert.False(t, ledger[0].Timestamp.IsZero())
}
