// Package output provides utilities for formatting and displaying model results.
package output

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/broguedistilling/distillery-forecast/internal/engine"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat writes a human-readable summary of each scenario: the monthly
// ledger's key columns, the cap table, and return metrics.
func PrettyFormat(w io.Writer, results []engine.Result) {
	p := message.NewPrinter(language.English)
	for n, result := range results {
		fmt.Fprintf(w, "--- Results for scenario %s ---\n", result.ScenarioName)
		fmt.Fprintf(w, "Month | Revenue       | EBITDA        | Net Income    | Ending Cash   | Revolver      | Runway\n")
		fmt.Fprintf(w, "_____ | _____________ | _____________ | _____________ | _____________ | _____________ | ______\n")
		for _, month := range result.Ledger {
			_, _ = p.Fprintf(w, "%5d | $%12.2f | $%12.2f | $%12.2f | $%12.2f | $%12.2f | %s\n",
				month.Index, month.Revenue, month.EBITDA, month.NetIncome,
				month.EndingCash, month.RevolverBalance, formatRunway(month.RunwayMonths))
		}

		fmt.Fprintf(w, "\nCap table (post Series A):\n")
		_, _ = p.Fprintf(w, "  Series A price/share: $%.2f, effective SAFE price: $%.2f\n",
			result.CapTable.SeriesAPricePerShare, result.CapTable.EffectiveSafePrice)
		_, _ = p.Fprintf(w, "  Founders & early investors: %.0f shares (%.1f%%)\n",
			result.CapTable.Founders.Shares, result.CapTable.Founders.OwnershipPct*100)
		_, _ = p.Fprintf(w, "  SAFE investors:             %.0f shares (%.1f%%)\n",
			result.CapTable.SafeInvestors.Shares, result.CapTable.SafeInvestors.OwnershipPct*100)
		_, _ = p.Fprintf(w, "  Series A investors:         %.0f shares (%.1f%%)\n",
			result.CapTable.SeriesAInvestor.Shares, result.CapTable.SeriesAInvestor.OwnershipPct*100)

		fmt.Fprintf(w, "\nInvestor returns: IRR %.1f%%, MOIC %.2fx, payback %s\n",
			result.Returns.IRR*100, result.Returns.MOIC, formatPayback(result.Returns.PaybackYears))

		if n < len(results)-1 {
			fmt.Fprintf(w, "\n")
		}
	}
}

// CsvFormat writes the full monthly ledger of all scenarios in
// comma-separated value format, one row per scenario-month.
func CsvFormat(w io.Writer, results []engine.Result) {
	columns := []string{
		"scenario", "month", "year", "monthOfYear",
		"monthlyVolume", "revenue", "cogs", "grossProfit",
		"payroll", "rent", "utilitiesInsurance", "marketing", "ga", "opex",
		"ebitda", "depreciation", "ebit", "interest", "ebt", "taxes", "netIncome",
		"cfo", "capex", "cfi", "fcf", "revolverDrawRepay", "cff", "netCashFlow",
		"beginningCash", "endingCash", "revolverBalance", "runwayMonths",
	}
	fmt.Fprintf(w, "%s\n", strings.Join(quoteAll(columns), ","))

	for _, result := range results {
		for _, m := range result.Ledger {
			fmt.Fprintf(w, `"%s",%d,%d,%d`, result.ScenarioName, m.Index, m.Year, m.MonthOfYear)
			for _, value := range []float64{
				m.MonthlyVolume, m.Revenue, m.COGS, m.GrossProfit,
				m.Payroll, m.Rent, m.UtilitiesInsurance, m.Marketing, m.GA, m.OpEx,
				m.EBITDA, m.Depreciation, m.EBIT, m.Interest, m.EBT, m.Taxes, m.NetIncome,
				m.CFO, m.CapEx, m.CFI, m.FCF, m.RevolverDraw, m.CFF, m.NetCashFlow,
				m.BeginningCash, m.EndingCash, m.RevolverBalance, m.RunwayMonths,
			} {
				fmt.Fprintf(w, `,"%.2f"`, value)
			}
			fmt.Fprintf(w, "\n")
		}
	}
}

func quoteAll(fields []string) []string {
	quoted := make([]string, len(fields))
	for i, field := range fields {
		quoted[i] = `"` + field + `"`
	}
	return quoted
}

func formatRunway(months float64) string {
	if months >= 999 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", months)
}

func formatPayback(years float64) string {
	if math.IsInf(years, 1) {
		return "never"
	}
	return fmt.Sprintf("%.2f years", years)
}
