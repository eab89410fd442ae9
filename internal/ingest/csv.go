// Package ingest adapts cleaned CSV ledgers into the engine's Transaction
// type. Fuzzy column-name matching and type coercion (the prior-art
// universal_data_cleaner) remain an external ingestion adapter's job per
// spec.md §1/§6; this reader only handles the canonical column contract.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/aegisshield/fraud-graph-engine/internal/engine"
)

// canonical column names the reader requires, in any order. timestamp and
// transaction_id are optional (spec.md §6): a missing or empty timestamp
// defaults to the current wall clock, a missing or empty transaction_id
// defaults to a synthetic GEN_TX_<i> keyed on the row's position.
const (
	colSender        = "sender_id"
	colReceiver      = "receiver_id"
	colAmount        = "amount"
	colTimestamp     = "timestamp"
	colTransactionID = "transaction_id"
)

// ReadLedger parses a cleaned CSV ledger from r. The header row must
// contain sender_id, receiver_id, and amount columns; timestamp and
// transaction_id are optional. Rows with a non-positive amount are
// dropped, matching the prior-art cleaner's amount > 0 filter.
func ReadLedger(r io.Reader) (engine.Ledger, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, required := range []string{colSender, colReceiver, colAmount} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	hasTimestamp := false
	if _, ok := idx[colTimestamp]; ok {
		hasTimestamp = true
	}
	hasTxID := false
	if _, ok := idx[colTransactionID]; ok {
		hasTxID = true
	}

	// Non-nil even with no data rows: the engine treats an empty ledger as
	// valid input and a nil one as a precondition failure.
	ledger := engine.Ledger{}
	rowIndex := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		rowIndex++

		amount, err := strconv.ParseFloat(row[idx[colAmount]], 64)
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", row[idx[colAmount]], err)
		}
		if amount <= 0 {
			continue
		}

		ts := time.Now()
		if hasTimestamp && row[idx[colTimestamp]] != "" {
			parsed, err := time.Parse(time.RFC3339, row[idx[colTimestamp]])
			if err != nil {
				return nil, fmt.Errorf("parse timestamp %q: %w", row[idx[colTimestamp]], err)
			}
			ts = parsed
		}

		txID := fmt.Sprintf("GEN_TX_%d", rowIndex)
		if hasTxID && row[idx[colTransactionID]] != "" {
			txID = row[idx[colTransactionID]]
		}

		ledger = append(ledger, engine.Transaction{
			TxID:      txID,
			Sender:    row[idx[colSender]],
			Receiver:  row[idx[colReceiver]],
			Amount:    amount,
			Timestamp: ts,
		})
	}

	return ledger, nil
}
