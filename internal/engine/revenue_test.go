package engine

import (
	"math"
	"testing"
)

func TestAnnualVolumeRamp(t *testing.T) {
	result := mustRun(t, baseScenario(), baseConstants())

	// Year 1 target 50,000 with 25% year-2 growth.
	if math.Abs(result.Ledger[0].AnnualVolume-50000) > 1e-9 {
		t.Errorf("year 1 annual volume = %.2f, expected 50000", result.Ledger[0].AnnualVolume)
	}
	if math.Abs(result.Ledger[12].AnnualVolume-62500) > 1e-9 {
		t.Errorf("year 2 annual volume = %.2f, expected 62500", result.Ledger[12].AnnualVolume)
	}
	// Year 3 compounds 20% on year 2.
	if math.Abs(result.Ledger[24].AnnualVolume-75000) > 1e-9 {
		t.Errorf("year 3 annual volume = %.2f, expected 75000", result.Ledger[24].AnnualVolume)
	}

	// Month 13 monthly volume = 62,500 / 12.
	expectedMonthly := 62500.0 / 12.0
	if math.Abs(result.Ledger[12].MonthlyVolume-expectedMonthly) > 0.01 {
		t.Errorf("month 13 monthly volume = %.4f, expected %.4f", result.Ledger[12].MonthlyVolume, expectedMonthly)
	}
}

func TestChannelPricesEscalateAnnually(t *testing.T) {
	result := mustRun(t, baseScenario(), baseConstants())

	// Year 1 uses base prices unchanged.
	if math.Abs(result.Ledger[0].TastingRoomPrice-65.00) > 1e-9 {
		t.Errorf("month 1 tasting room price = %.4f, expected 65.00", result.Ledger[0].TastingRoomPrice)
	}

	// Year 2 applies one escalation step to every channel.
	if math.Abs(result.Ledger[12].TastingRoomPrice-65.00*1.03) > 1e-9 {
		t.Errorf("month 13 tasting room price = %.4f, expected %.4f", result.Ledger[12].TastingRoomPrice, 65.00*1.03)
	}
	if math.Abs(result.Ledger[12].WholesalePrice-30.00*1.03) > 1e-9 {
		t.Errorf("month 13 wholesale price = %.4f, expected %.4f", result.Ledger[12].WholesalePrice, 30.00*1.03)
	}

	// Price is constant within a year.
	if result.Ledger[0].ClubPrice != result.Ledger[11].ClubPrice {
		t.Errorf("club price changed within year 1: %.4f vs %.4f", result.Ledger[0].ClubPrice, result.Ledger[11].ClubPrice)
	}
}

func TestRevenueIsChannelSum(t *testing.T) {
	result := mustRun(t, baseScenario(), baseConstants())

	monthlyVolume := 50000.0 / 12.0
	expected := monthlyVolume * (0.25*65.00 + 0.15*55.00 + 0.60*30.00)

	if math.Abs(result.Ledger[0].Revenue-expected) > 0.01 {
		t.Errorf("month 1 revenue = %.2f, expected %.2f", result.Ledger[0].Revenue, expected)
	}

	sum := result.Ledger[0].TastingRoomRev + result.Ledger[0].ClubRev + result.Ledger[0].WholesaleRev
	if math.Abs(result.Ledger[0].Revenue-sum) > 1e-9 {
		t.Errorf("revenue %.2f does not equal channel sum %.2f", result.Ledger[0].Revenue, sum)
	}
}

func TestInconsistentChannelMixIsNotNormalized(t *testing.T) {
	scenario := baseScenario()
	scenario.ChannelMix.TastingRoomPct = 0.25
	scenario.ChannelMix.ClubPct = 0.15
	scenario.ChannelMix.WholesalePct = 0.30 // sums to 0.70

	result := mustRun(t, scenario, baseConstants())

	monthlyVolume := 50000.0 / 12.0
	expected := monthlyVolume * (0.25*65.00 + 0.15*55.00 + 0.30*30.00)

	if math.Abs(result.Ledger[0].Revenue-expected) > 0.01 {
		t.Errorf("month 1 revenue = %.2f, expected unnormalized %.2f", result.Ledger[0].Revenue, expected)
	}
}

func TestAveragePricePerBottle(t *testing.T) {
	result := mustRun(t, baseScenario(), baseConstants())

	expected := 0.25*65.00 + 0.15*55.00 + 0.60*30.00
	if math.Abs(result.Ledger[0].AvgPricePerBottle-expected) > 0.01 {
		t.Errorf("month 1 average price = %.4f, expected %.4f", result.Ledger[0].AvgPricePerBottle, expected)
	}
}
