package engine

import (
	"fmt"
	"log/slog"

	"github.com/aegisshield/fraud-graph-engine/internal/config"
)

// FraudEngine orchestrates a single analysis run over a cleaned ledger,
// mirroring the teacher's GraphEngine: a constructor that validates
// preconditions, and a single analyze entry point that runs every
// detector in a fixed order and logs start/stop around the whole pass.
type FraudEngine struct {
	cfg       config.DetectionConfig
	logger    *slog.Logger
	countries *CountryAssigner
}

// NewFraudEngine validates cfg and returns a ready-to-use FraudEngine.
// Precondition violations (spec.md §7 class 1) are returned here, before
// any ledger is touched.
func NewFraudEngine(cfg config.DetectionConfig, logger *slog.Logger) (*FraudEngine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CycleMaxLength <= 0 || cfg.LayerMinDepth <= 0 {
		return nil, newPreconditionError("detection config is not initialized")
	}
	if len(cfg.HighRiskCountries) == 0 {
		return nil, newPreconditionError("high_risk_countries must not be empty")
	}

	return &FraudEngine{
		cfg:       cfg,
		logger:    logger,
		countries: NewCountryAssigner(cfg.HighRiskCountries),
	}, nil
}

// RunAnalysis runs the full detection pipeline over l and returns the
// rendered payload (spec.md §4, §4.9). An empty ledger is a valid input
// (spec.md §8's empty-ledger scenario) and yields an empty-but-well-formed
// Result, not an error.
func (e *FraudEngine) RunAnalysis(l Ledger) (Result, error) {
	if l == nil {
		return Result{}, newPreconditionError("ledger must not be nil")
	}

	e.logger.Info("analysis run starting", "transaction_count", len(l))

	store := NewScoringStore()

	geo := NewGeoRiskDetector(e.countries, e.cfg.GeoRiskPoints, e.logger)
	geo.Detect(l, store)

	smurf := NewSmurfingDetector(e.cfg.SmurfMinUniqueAccounts, e.cfg.SmurfMaxAmount, e.cfg.SmurfPoints, e.cfg.SmurfStdDevTolerance, e.logger)
	smurf.Detect(l, store)

	sg, err := NewSimpleDirectedGraph(l)
	if err != nil {
		// Graph construction failing on a cleaned ledger is an invariant
		// violation (spec.md §7 class 3), not a recoverable condition.
		return Result{}, fmt.Errorf("build simple directed graph: %w", err)
	}
	mg := NewMultiGraph(l)

	cycle := NewCycleDetector(e.cfg.CycleMaxLength, e.cfg.CycleBasePoints, e.logger)
	if err := cycle.Detect(mg, sg, store); err != nil {
		// Detector-local computational failure (spec.md §7 class 2):
		// degrade to no findings from this detector, others still run.
		e.logger.Warn("cycle detector failed, continuing without its findings", "error", err)
	}

	shell := NewLayeredShellDetector(e.cfg.LayerMinDepth, e.cfg.LayerPoints, e.logger)
	if err := shell.Detect(sg, store); err != nil {
		e.logger.Warn("layered-shell detector failed, continuing without its findings", "error", err)
	}

	centrality := NewCentralityPromoter(e.cfg.ShadowBossPoints, e.cfg.ShadowBossPercentile, e.logger)
	assembler := NewPayloadAssembler(e.cfg.MaxNodesToRender, e.cfg.HistoryCap, e.cfg.RingCap, e.cfg.FreezeThresholdScore, centrality, e.logger)
	result := assembler.Assemble(l, store, e.countries)

	e.logger.Info("analysis run complete",
		"flagged_entities", result.Analytics.FlaggedEntities,
		"freeze_recommendations", result.Analytics.FreezeRecommendations,
		"fraud_rings", len(result.FraudRings),
	)

	return result, nil
}
