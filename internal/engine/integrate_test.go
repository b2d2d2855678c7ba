package engine

import (
	"math"
	"testing"

	"github.com/broguedistilling/distillery-forecast/internal/config"
	"github.com/broguedistilling/distillery-forecast/pkg/constants"
)

// burnConstants sets up a pure cash-burn fixture: no revenue, a flat
// $60,000/month rent bill, $10,000 of starting cash, and a $30,000 revolver.
func burnConstants() config.Constants {
	consts := baseConstants()
	consts.HeadcountPlan = nil
	consts.OpEx = config.FixedOpEx{RentYear1: 720000}
	consts.CapEx = config.CapExPlan{
		InitialSpendBase:           0,
		InitialSpendMonth:          1,
		EquipmentDepreciationYears: 7,
	}
	consts.Financing.InitialCashPosition = 5000
	consts.Financing.SafeRoundInvestment = 5000
	consts.Financing.RevolverLimit = 30000
	consts.Financing.RevolverInterestRate = 0.12
	consts.Tax = config.TaxRates{}
	return consts
}

func burnScenario() config.Scenario {
	scenario := baseScenario()
	scenario.Name = "Burn Case"
	scenario.Pricing = config.PricingAssumptions{}
	scenario.CogsPerBottle = config.CogsPerBottle{}
	scenario.OpEx = config.VariableOpEx{}
	scenario.CapEx = config.CapExAssumptions{}
	return scenario
}

// recoveryFixture burns cash in year 1 and turns profitable in year 2, so
// the revolver is drawn to its limit and then repaid in full.
func recoveryFixture() (config.Scenario, config.Constants) {
	consts := baseConstants()
	consts.HeadcountPlan = []config.Position{
		{Position: "Operations", AnnualSalary: 720000, StartMonth: 1},
	}
	consts.OpEx = config.FixedOpEx{}
	consts.CapEx = config.CapExPlan{
		InitialSpendBase:           0,
		InitialSpendMonth:          1,
		EquipmentDepreciationYears: 7,
	}
	consts.Financing.InitialCashPosition = 0
	consts.Financing.SafeRoundInvestment = 50000
	consts.Financing.RevolverLimit = 30000
	consts.Financing.RevolverInterestRate = 0.12
	consts.Tax = config.TaxRates{}

	scenario := baseScenario()
	scenario.Name = "Recovery Case"
	scenario.Volume = config.VolumeAssumptions{
		Year1BottleTarget: 12000,
		Year2GrowthPct:    0.50,
	}
	scenario.Pricing = config.PricingAssumptions{TastingRoomPerBottle: 50}
	scenario.ChannelMix = config.ChannelMix{TastingRoomPct: 1.0}
	scenario.CogsPerBottle = config.CogsPerBottle{}
	scenario.OpEx = config.VariableOpEx{}
	scenario.CapEx = config.CapExAssumptions{}
	return scenario, consts
}

func TestLedgerContinuity(t *testing.T) {
	fixtures := []struct {
		name     string
		scenario config.Scenario
		consts   config.Constants
	}{
		{"base case", baseScenario(), baseConstants()},
		{"burn case", burnScenario(), burnConstants()},
	}

	for _, fixture := range fixtures {
		t.Run(fixture.name, func(t *testing.T) {
			result := mustRun(t, fixture.scenario, fixture.consts)

			startingCash := fixture.consts.Financing.InitialCashPosition + fixture.consts.Financing.SafeRoundInvestment
			if math.Abs(result.Ledger[0].BeginningCash-startingCash) > 1e-9 {
				t.Errorf("month 1 beginning cash = %.2f, expected %.2f", result.Ledger[0].BeginningCash, startingCash)
			}

			for i := 1; i < len(result.Ledger); i++ {
				prev := result.Ledger[i-1]
				curr := result.Ledger[i]
				if math.Abs(curr.BeginningCash-prev.EndingCash) > 1e-9 {
					t.Fatalf("month %d beginning cash %.2f != month %d ending cash %.2f",
						curr.Index, curr.BeginningCash, prev.Index, prev.EndingCash)
				}
				if math.Abs(curr.EndingCash-curr.BeginningCash-curr.NetCashFlow) > 1e-6 {
					t.Fatalf("month %d ending cash does not reconcile with net cash flow", curr.Index)
				}
			}
		})
	}
}

func TestRevolverDrawNotClampedAtLimit(t *testing.T) {
	result := mustRun(t, burnScenario(), burnConstants())

	// Month 1: $10,000 of cash against a $60,000 rent bill leaves a
	// $50,000 shortfall with only $30,000 of revolver headroom.
	month := result.Ledger[0]
	if math.Abs(month.RevolverDraw-30000) > 0.01 {
		t.Errorf("month 1 revolver draw = %.2f, expected 30000", month.RevolverDraw)
	}
	if math.Abs(month.RevolverBalance-30000) > 0.01 {
		t.Errorf("month 1 revolver balance = %.2f, expected 30000", month.RevolverBalance)
	}
	if math.Abs(month.EndingCash-(-20000)) > 0.01 {
		t.Errorf("month 1 ending cash = %.2f, expected -20000 (not clamped to zero)", month.EndingCash)
	}
}

func TestInterestChargedOnPriorRevolverBalance(t *testing.T) {
	result := mustRun(t, burnScenario(), burnConstants())

	// Month 1 has no prior balance, month 2 pays 1% monthly on $30,000.
	if result.Ledger[0].Interest != 0 {
		t.Errorf("month 1 interest = %.2f, expected 0", result.Ledger[0].Interest)
	}
	if math.Abs(result.Ledger[1].Interest-(-300)) > 0.01 {
		t.Errorf("month 2 interest = %.2f, expected -300", result.Ledger[1].Interest)
	}
}

func TestRevolverBalanceStaysWithinBounds(t *testing.T) {
	scenario, consts := recoveryFixture()
	fixtures := []struct {
		name     string
		scenario config.Scenario
		consts   config.Constants
	}{
		{"base case", baseScenario(), baseConstants()},
		{"burn case", burnScenario(), burnConstants()},
		{"recovery case", scenario, consts},
	}

	for _, fixture := range fixtures {
		t.Run(fixture.name, func(t *testing.T) {
			result := mustRun(t, fixture.scenario, fixture.consts)
			limit := fixture.consts.Financing.RevolverLimit
			for _, month := range result.Ledger {
				if month.RevolverBalance < -1e-9 || month.RevolverBalance > limit+1e-9 {
					t.Errorf("month %d revolver balance %.2f outside [0, %.2f]",
						month.Index, month.RevolverBalance, limit)
				}
			}
		})
	}
}

func TestRevolverRepaidFromSurplus(t *testing.T) {
	scenario, consts := recoveryFixture()
	result := mustRun(t, scenario, consts)

	repaid := false
	for _, month := range result.Ledger {
		if month.RevolverDraw < 0 {
			repaid = true
			// A partial repayment consumes the entire surplus, so
			// ending cash lands exactly at zero unless the balance
			// was cleared.
			if month.RevolverBalance > 1e-9 && math.Abs(month.EndingCash) > 1e-6 {
				t.Errorf("month %d: partial repayment should leave zero cash, got %.2f",
					month.Index, month.EndingCash)
			}
		}
	}
	if !repaid {
		t.Fatalf("expected at least one repayment month in the recovery fixture")
	}

	final := result.Ledger[len(result.Ledger)-1]
	if final.RevolverBalance != 0 {
		t.Errorf("final revolver balance = %.2f, expected fully repaid", final.RevolverBalance)
	}
	if final.EndingCash <= 0 {
		t.Errorf("final ending cash = %.2f, expected positive after recovery", final.EndingCash)
	}
}

func TestTaxesOnlyOnPositiveEBT(t *testing.T) {
	fixtures := []struct {
		name     string
		scenario config.Scenario
		consts   config.Constants
	}{
		{"base case", baseScenario(), baseConstants()},
		{"burn case", burnScenario(), burnConstants()},
	}

	for _, fixture := range fixtures {
		t.Run(fixture.name, func(t *testing.T) {
			result := mustRun(t, fixture.scenario, fixture.consts)
			rate := fixture.consts.Tax.Combined()
			for _, month := range result.Ledger {
				if month.EBT > 0 {
					if math.Abs(month.Taxes-(-month.EBT*rate)) > 0.01 {
						t.Errorf("month %d taxes = %.2f, expected %.2f", month.Index, month.Taxes, -month.EBT*rate)
					}
				} else if month.Taxes != 0 {
					t.Errorf("month %d taxes = %.2f on non-positive EBT", month.Index, month.Taxes)
				}
			}
		})
	}
}

func TestDepreciationAddedBackToCashFlow(t *testing.T) {
	result := mustRun(t, baseScenario(), baseConstants())

	for _, month := range result.Ledger {
		expected := month.NetIncome - month.Depreciation
		if math.Abs(month.CFO-expected) > 1e-6 {
			t.Errorf("month %d CFO = %.2f, expected %.2f", month.Index, month.CFO, expected)
		}
	}
}

func TestRunwaySentinelWhenNotBurning(t *testing.T) {
	result := mustRun(t, baseScenario(), baseConstants())

	// Month 1 is cash flow positive in the base case.
	if result.Ledger[0].RunwayMonths != constants.RunwaySentinel {
		t.Errorf("month 1 runway = %.2f, expected sentinel %.0f", result.Ledger[0].RunwayMonths, constants.RunwaySentinel)
	}

	// Month 3 includes the equipment spend in its trailing average, so the
	// reported runway turns finite.
	if result.Ledger[2].RunwayMonths >= constants.RunwaySentinel {
		t.Errorf("month 3 runway = %.2f, expected finite value after the CapEx month", result.Ledger[2].RunwayMonths)
	}
}

func TestRunwayReflectsAverageBurn(t *testing.T) {
	result := mustRun(t, burnScenario(), burnConstants())

	// Deep in the burn the trailing average is roughly the monthly rent
	// bill, so runway is ending cash over that burn (negative cash gives
	// a negative figure, signaling the till is already empty).
	month := result.Ledger[11]
	if month.RunwayMonths >= 0 {
		t.Errorf("month 12 runway = %.2f, expected negative once cash is exhausted", month.RunwayMonths)
	}
}
