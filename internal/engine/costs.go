package engine

import (
	"github.com/broguedistilling/distillery-forecast/pkg/constants"
	"github.com/broguedistilling/distillery-forecast/pkg/mathutil"
)

// applyCOGS fills the cost of goods sold column: a flat per-bottle cost
// applied to monthly volume, stored with the expense sign convention.
func (m *Model) applyCOGS() {
	perBottle := m.scenario.CogsPerBottle.Total()
	for i := range m.ledger {
		m.ledger[i].COGS = -m.ledger[i].MonthlyVolume * perBottle
	}
}

// applyOpEx fills payroll, fixed, and revenue-driven operating expense
// columns. Payroll and the fixed schedules compound annually with year 1
// carrying no growth.
func (m *Model) applyOpEx() {
	opex := m.consts.OpEx

	for i := range m.ledger {
		row := &m.ledger[i]

		basePayroll := 0.0
		for _, position := range m.consts.HeadcountPlan {
			if row.Index >= position.StartMonth {
				basePayroll += position.AnnualSalary / constants.MonthsPerYear
			}
		}
		loadedPayroll := basePayroll * (1 + opex.PayrollBenefitsTaxPct)
		row.Payroll = -mathutil.CompoundGrowth(loadedPayroll, opex.PayrollAnnualGrowthPct, row.Year)

		row.Rent = -mathutil.CompoundGrowth(opex.RentYear1/constants.MonthsPerYear, opex.RentAnnualEscalatorPct, row.Year)
		row.UtilitiesInsurance = -mathutil.CompoundGrowth(opex.UtilitiesInsuranceYear1/constants.MonthsPerYear, opex.UtilitiesInsuranceGrowthPct, row.Year)

		row.Marketing = -row.Revenue * m.scenario.OpEx.MarketingPctOfRevenue
		row.GA = -row.Revenue * m.scenario.OpEx.GAPctOfRevenue

		row.OpEx = row.Payroll + row.Rent + row.UtilitiesInsurance + row.Marketing + row.GA
	}
}

// applyCapExAndDepreciation records the one-time equipment spend (base plus
// the scenario overrun) at the configured month and straight-line monthly
// depreciation from that month onward. Depreciation is intentionally not
// truncated when the useful life elapses, matching the source model.
func (m *Model) applyCapExAndDepreciation() {
	spendMonth := m.consts.CapEx.InitialSpendMonth
	amount := m.consts.CapEx.InitialSpendBase * (1 + m.scenario.CapEx.InitialSpendOverrunPct)
	monthlyDepreciation := amount / float64(m.consts.CapEx.EquipmentDepreciationYears*constants.MonthsPerYear)

	for i := range m.ledger {
		row := &m.ledger[i]
		if row.Index == spendMonth {
			row.CapEx = -amount
		}
		if row.Index >= spendMonth {
			row.Depreciation = -monthlyDepreciation
		}
	}
}
