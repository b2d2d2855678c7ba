package engine

import (
	"github.com/broguedistilling/distillery-forecast/pkg/constants"
	"github.com/broguedistilling/distillery-forecast/pkg/mathutil"
)

// annualVolumes builds the yearly bottle volume ramp: year 1 is the target,
// year 2 applies the year-2 growth rate, and every later year compounds the
// year-3-onwards rate on the prior year.
func (m *Model) annualVolumes() []float64 {
	years := (len(m.ledger) + constants.MonthsPerYear - 1) / constants.MonthsPerYear
	volumes := make([]float64, years)

	volumes[0] = m.scenario.Volume.Year1BottleTarget
	if years > 1 {
		volumes[1] = volumes[0] * (1 + m.scenario.Volume.Year2GrowthPct)
	}
	for y := 2; y < years; y++ {
		volumes[y] = volumes[y-1] * (1 + m.scenario.Volume.Year3OnwardsGrowthPct)
	}

	return volumes
}

// projectRevenue fills the volume, per-channel price, and revenue columns.
// Channel mix shares are applied exactly as configured; an inconsistent mix
// is surfaced as a configuration warning, never normalized here.
func (m *Model) projectRevenue() {
	volumes := m.annualVolumes()
	escalator := m.scenario.Pricing.AnnualPriceIncreasePct
	mix := m.scenario.ChannelMix

	for i := range m.ledger {
		row := &m.ledger[i]

		row.AnnualVolume = volumes[row.Year-1]
		row.MonthlyVolume = row.AnnualVolume / constants.MonthsPerYear

		row.TastingRoomPrice = mathutil.CompoundGrowth(m.scenario.Pricing.TastingRoomPerBottle, escalator, row.Year)
		row.ClubPrice = mathutil.CompoundGrowth(m.scenario.Pricing.ClubPerBottle, escalator, row.Year)
		row.WholesalePrice = mathutil.CompoundGrowth(m.scenario.Pricing.WholesaleFobPerBottle, escalator, row.Year)

		row.TastingRoomRev = row.MonthlyVolume * mix.TastingRoomPct * row.TastingRoomPrice
		row.ClubRev = row.MonthlyVolume * mix.ClubPct * row.ClubPrice
		row.WholesaleRev = row.MonthlyVolume * mix.WholesalePct * row.WholesalePrice

		row.Revenue = row.TastingRoomRev + row.ClubRev + row.WholesaleRev
		row.AvgPricePerBottle = mathutil.SafeDivide(row.Revenue, row.MonthlyVolume)
	}
}
