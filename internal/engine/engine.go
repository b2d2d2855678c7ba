// Package engine implements the month-by-month financial projection for a
// single scenario: volume and revenue ramp, cost schedules, the integrated
// P&L and cash flow with a revolving credit line, and the SAFE-to-equity
// cap table conversion.
package engine

import (
	"fmt"

	"github.com/broguedistilling/distillery-forecast/internal/config"
	"github.com/broguedistilling/distillery-forecast/pkg/constants"
	"github.com/broguedistilling/distillery-forecast/pkg/returns"
	"go.uber.org/zap"
)

// Result holds everything a single model run produces.
type Result struct {
	ScenarioName string
	Ledger       Ledger
	CapTable     CapTable
	Returns      returns.Metrics
}

// Model computes the projection for one scenario. Each instance owns its own
// ledger, so independent instances may run concurrently.
type Model struct {
	scenario config.Scenario
	consts   config.Constants
	ledger   Ledger
	logger   *zap.Logger
}

// NewModel constructs a Model for the given scenario and shared constants.
// Invalid configurations are rejected here; a constructed Model always runs
// to completion.
func NewModel(logger *zap.Logger, scenario config.Scenario, consts config.Constants) (*Model, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := consts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid constants: %w", err)
	}
	if err := scenario.Validate(consts); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &Model{
		scenario: scenario,
		consts:   consts,
		ledger:   make(Ledger, consts.General.ForecastMonths),
		logger:   logger,
	}, nil
}

// Run executes all calculation stages in order and returns the populated
// ledger, cap table, and investor return metrics. Cash shortfalls beyond the
// revolver limit are not errors; they surface as negative ending cash.
func (m *Model) Run() *Result {
	m.buildSchedule()
	m.projectRevenue()
	m.applyCOGS()
	m.applyOpEx()
	m.applyCapExAndDepreciation()
	m.buildProfitAndCashFlow()

	capTable := m.resolveCapTable()
	investorReturns := m.computeReturns()

	last := m.ledger[len(m.ledger)-1]
	m.logger.Debug("model run complete",
		zap.String("op", "engine.Run"),
		zap.String("scenario", m.scenario.Name),
		zap.Int("months", len(m.ledger)),
		zap.Float64("endingCash", last.EndingCash),
		zap.Float64("revolverBalance", last.RevolverBalance),
	)

	return &Result{
		ScenarioName: m.scenario.Name,
		Ledger:       m.ledger,
		CapTable:     capTable,
		Returns:      investorReturns,
	}
}

// computeReturns derives investor return metrics from the ledger: the
// initial equity deployed (starting cash plus the SAFE round) as the
// period-zero outflow, followed by annual sums of free cash flow. A trailing
// partial year contributes whatever months it has.
func (m *Model) computeReturns() returns.Metrics {
	initial := m.consts.Financing.InitialCashPosition + m.consts.Financing.SafeRoundInvestment

	years := (len(m.ledger) + constants.MonthsPerYear - 1) / constants.MonthsPerYear
	flows := make([]float64, years+1)
	flows[0] = -initial
	for _, month := range m.ledger {
		flows[month.Year] += month.FCF
	}

	return returns.Calculate(flows, initial)
}

// RunAll computes results for every active scenario in the configuration.
func RunAll(logger *zap.Logger, conf config.Configuration) ([]Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var results []Result
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.Name),
				zap.String("op", "engine.RunAll"),
			)
			continue
		}

		model, err := NewModel(logger, scenario, conf.Constants)
		if err != nil {
			return results, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		results = append(results, *model.Run())
	}

	return results, nil
}
