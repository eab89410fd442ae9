package engine

import (
	"fmt"
	"log/slog"
	"math"
)

// SmurfingDetector finds structuring patterns (spec.md §4.4): one account
// fanning small payments out to many distinct recipients (fan-out), or
// many distinct senders funneling small payments into one account
// (fan-in), each restricted to transactions at or below SmurfMaxAmount so
// that small "under the radar" transfers are the ones considered.
type SmurfingDetector struct {
	minUniqueAccounts int
	maxAmount         float64
	points            int
	stdDevTolerance   float64
	logger            *slog.Logger
}

// NewSmurfingDetector builds a SmurfingDetector from config.
func NewSmurfingDetector(minUniqueAccounts int, maxAmount float64, points int, stdDevTolerance float64, logger *slog.Logger) *SmurfingDetector {
	return &SmurfingDetector{
		minUniqueAccounts: minUniqueAccounts,
		maxAmount:         maxAmount,
		points:            points,
		stdDevTolerance:   stdDevTolerance,
		logger:            logger,
	}
}

// Detect runs both the fan-out and fan-in passes.
func (d *SmurfingDetector) Detect(l Ledger, store *ScoringStore) {
	small := make(Ledger, 0, len(l))
	for _, t := range l {
		if t.Amount <= d.maxAmount {
			small = append(small, t)
		}
	}

	outGroups := 0
	byAccount := make(map[string][]Transaction)
	for _, t := range small {
		byAccount[t.Sender] = append(byAccount[t.Sender], t)
	}
	for sender, txs := range byAccount {
		receivers := uniqueCounterparties(txs, func(t Transaction) string { return t.Receiver })
		if len(receivers) < d.minUniqueAccounts {
			continue
		}

		uniform := isUniform(txs, d.stdDevTolerance)
		bossLabel := "SMURF_BOSS"
		if uniform {
			bossLabel = "SMURF_BOSS_UNIFORM"
		}

		bossScore := d.points
		if !uniform {
			bossScore = d.points / 2
		}
		mulScore := bossScore / 2

		store.AssignPoints([]string{sender}, bossScore, bossLabel)
		store.AssignPoints(receivers, mulScore, "SMURF_MULE")

		ring := FraudRing{
			RingID:      fmt.Sprintf("SMURF_OUT_%s", last4(sender)),
			Nodes:       append([]string{sender}, receivers...),
			Score:       bossScore,
			PatternType: "Structured Fan-Out",
		}
		store.AddRing(ring)
		outGroups++
	}

	inGroups := 0
	byReceiver := make(map[string][]Transaction)
	for _, t := range small {
		byReceiver[t.Receiver] = append(byReceiver[t.Receiver], t)
	}
	for receiver, txs := range byReceiver {
		senders := uniqueCounterparties(txs, func(t Transaction) string { return t.Sender })
		if len(senders) < d.minUniqueAccounts {
			continue
		}

		uniform := isUniform(txs, d.stdDevTolerance)
		targetLabel := "SMURF_TARGET"
		if uniform {
			targetLabel = "SMURF_TARGET_UNIFORM"
		}

		targetScore := d.points
		if !uniform {
			targetScore = d.points / 2
		}
		senderScore := targetScore / 2

		store.AssignPoints([]string{receiver}, targetScore, targetLabel)
		store.AssignPoints(senders, senderScore, "SMURF_SENDER")

		ring := FraudRing{
			RingID:      fmt.Sprintf("SMURF_IN_%s", last4(receiver)),
			Nodes:       append([]string{receiver}, senders...),
			Score:       targetScore,
			PatternType: "Fan-In Smurfing",
		}
		store.AddRing(ring)
		inGroups++
	}

	d.logger.Info("smurfing detection complete", "fan_out_groups", outGroups, "fan_in_groups", inGroups)
}

func uniqueCounterparties(txs []Transaction, key func(Transaction) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range txs {
		k := key(t)
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

// isUniform applies the prior-art uniformity test: the group's amounts are
// "uniform" when their standard deviation is small relative to their mean
// (σ < tolerance·μ), suggesting an automated structuring script rather
// than organic payment amounts.
func isUniform(txs []Transaction, tolerance float64) bool {
	if len(txs) == 0 {
		return false
	}

	var sum float64
	for _, t := range txs {
		sum += t.Amount
	}
	mean := sum / float64(len(txs))
	if mean == 0 {
		return false
	}

	var variance float64
	for _, t := range txs {
		diff := t.Amount - mean
		variance += diff * diff
	}
	variance /= float64(len(txs))
	stdDev := math.Sqrt(variance)

	return stdDev < tolerance*mean
}

func last4(accountID string) string {
	if len(accountID) <= 4 {
		return accountID
	}
	return accountID[len(accountID)-4:]
}
