package engine

import (
	"github.com/broguedistilling/distillery-forecast/pkg/constants"
	"github.com/broguedistilling/distillery-forecast/pkg/mathutil"
)

// buildProfitAndCashFlow integrates the earlier columns into the P&L and the
// cash flow statement. This is the one forward recurrence in the model: each
// month consumes the prior month's ending cash and revolver balance.
//
// Revolver behavior is deterministic: a shortfall draws up to the remaining
// headroom, surplus cash repays the outstanding balance first. A draw capped
// by the limit leaves ending cash negative on purpose; running out of runway
// is a reported outcome, not an error.
func (m *Model) buildProfitAndCashFlow() {
	financing := m.consts.Financing
	taxRate := m.consts.Tax.Combined()

	cash := financing.InitialCashPosition + financing.SafeRoundInvestment
	revolver := 0.0

	for i := range m.ledger {
		row := &m.ledger[i]

		row.GrossProfit = row.Revenue + row.COGS
		row.EBITDA = row.GrossProfit + row.OpEx
		row.EBIT = row.EBITDA + row.Depreciation

		row.Interest = -revolver * financing.RevolverInterestRate / constants.MonthsPerYear
		row.EBT = row.EBIT + row.Interest
		if row.EBT > 0 {
			row.Taxes = -row.EBT * taxRate
		}
		row.NetIncome = row.EBT + row.Taxes

		// Depreciation is stored negative, so subtracting it adds the
		// non-cash expense back.
		row.CFO = row.NetIncome - row.Depreciation
		row.CFI = row.CapEx
		row.FCF = row.CFO + row.CFI

		cashBeforeFinancing := cash + row.CFO + row.CFI

		if cashBeforeFinancing < 0 {
			headroom := financing.RevolverLimit - revolver
			row.RevolverDraw = mathutil.Min(-cashBeforeFinancing, headroom)
		} else {
			row.RevolverDraw = -mathutil.Min(cashBeforeFinancing, revolver)
		}

		revolver += row.RevolverDraw
		row.CFF = row.RevolverDraw
		row.NetCashFlow = row.FCF + row.CFF

		row.BeginningCash = cash
		cash = cashBeforeFinancing + row.RevolverDraw
		row.EndingCash = cash
		row.RevolverBalance = revolver
	}

	m.computeRunway()
}

// computeRunway fills the runway column: the rolling average of net cash
// flow over the trailing window (fewer months early on), and when that
// average is a burn, the months of cash left at that rate. A non-burning
// month reports the sentinel value.
func (m *Model) computeRunway() {
	for i := range m.ledger {
		start := i - constants.RunwayWindowMonths + 1
		if start < 0 {
			start = 0
		}

		sum := 0.0
		for j := start; j <= i; j++ {
			sum += m.ledger[j].NetCashFlow
		}
		averageBurn := sum / float64(i-start+1)

		if averageBurn < 0 {
			m.ledger[i].RunwayMonths = -m.ledger[i].EndingCash / averageBurn
		} else {
			m.ledger[i].RunwayMonths = constants.RunwaySentinel
		}
	}
}
