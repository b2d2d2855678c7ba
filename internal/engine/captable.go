package engine

import "github.com/broguedistilling/distillery-forecast/pkg/mathutil"

// Stake is one investor class in the post-money cap table.
type Stake struct {
	Shares       float64
	OwnershipPct float64
}

// CapTable is the one-shot SAFE conversion and dilution result. It is
// independent of the monthly ledger. The three class ownership percentages
// sum to 1.0.
type CapTable struct {
	SeriesAPreMoneyValuation float64
	SeriesAPricePerShare     float64
	EffectiveSafePrice       float64

	Founders        Stake // founders plus early investors (pre-money holders)
	SafeInvestors   Stake
	SeriesAInvestor Stake
	TotalPostMoney  Stake
}

// resolveCapTable performs the SAFE conversion. The effective SAFE price is
// the better of the valuation-cap price and the discounted Series A price.
// Zero share counts and valuations are rejected at validation time, so the
// divisions here are safe.
func (m *Model) resolveCapTable() CapTable {
	financing := m.consts.Financing
	terms := m.scenario.Financing

	preMoneyShares := financing.FounderShares + financing.EarlyInvestorShares
	seriesAPrice := terms.SeriesAPreMoneyValuation / preMoneyShares

	priceFromCap := terms.SafeValuationCap / preMoneyShares
	priceFromDiscount := seriesAPrice * (1 - terms.SafeDiscount)
	effectiveSafePrice := mathutil.Min(priceFromCap, priceFromDiscount)

	safeShares := financing.SafeRoundInvestment / effectiveSafePrice
	seriesAShares := financing.SeriesAInvestment / seriesAPrice
	totalShares := preMoneyShares + safeShares + seriesAShares

	return CapTable{
		SeriesAPreMoneyValuation: terms.SeriesAPreMoneyValuation,
		SeriesAPricePerShare:     seriesAPrice,
		EffectiveSafePrice:       effectiveSafePrice,
		Founders: Stake{
			Shares:       preMoneyShares,
			OwnershipPct: preMoneyShares / totalShares,
		},
		SafeInvestors: Stake{
			Shares:       safeShares,
			OwnershipPct: safeShares / totalShares,
		},
		SeriesAInvestor: Stake{
			Shares:       seriesAShares,
			OwnershipPct: seriesAShares / totalShares,
		},
		TotalPostMoney: Stake{
			Shares:       totalShares,
			OwnershipPct: 1.0,
		},
	}
}
