package config

import (
	"fmt"

	"github.com/broguedistilling/distillery-forecast/pkg/constants"
	"github.com/broguedistilling/distillery-forecast/pkg/mathutil"
)

// Validate performs fail-fast validation of the configuration. Any error
// returned here means the model must not run; values are never coerced.
func (conf *Configuration) Validate() error {
	if err := conf.Constants.Validate(); err != nil {
		return err
	}

	if len(conf.Scenarios) == 0 {
		return fmt.Errorf("no scenarios found in the configuration")
	}

	for i := range conf.Scenarios {
		if err := conf.Scenarios[i].Validate(conf.Constants); err != nil {
			return err
		}
	}

	return nil
}

// Validate checks the shared constants for values that would make any model
// run meaningless or divide by zero.
func (c *Constants) Validate() error {
	if c.General.ForecastMonths <= 0 {
		return fmt.Errorf("general.forecastMonths must be positive, got %d", c.General.ForecastMonths)
	}

	if c.CapEx.EquipmentDepreciationYears <= 0 {
		return fmt.Errorf("capex.equipmentDepreciationYears must be positive, got %d", c.CapEx.EquipmentDepreciationYears)
	}
	if c.CapEx.InitialSpendMonth < 1 || c.CapEx.InitialSpendMonth > c.General.ForecastMonths {
		return fmt.Errorf("capex.initialSpendMonth %d is outside the forecast horizon 1..%d",
			c.CapEx.InitialSpendMonth, c.General.ForecastMonths)
	}
	if c.CapEx.InitialSpendBase < 0 {
		return fmt.Errorf("capex.initialSpendBase must not be negative, got %.2f", c.CapEx.InitialSpendBase)
	}

	if c.Financing.FounderShares <= 0 {
		return fmt.Errorf("financing.founderShares must be positive, got %.0f", c.Financing.FounderShares)
	}
	if c.Financing.EarlyInvestorShares < 0 {
		return fmt.Errorf("financing.earlyInvestorShares must not be negative, got %.0f", c.Financing.EarlyInvestorShares)
	}
	if c.Financing.SafeRoundInvestment <= 0 {
		return fmt.Errorf("financing.safeRoundInvestment must be positive, got %.2f", c.Financing.SafeRoundInvestment)
	}
	if c.Financing.SeriesAInvestment <= 0 {
		return fmt.Errorf("financing.seriesAInvestment must be positive, got %.2f", c.Financing.SeriesAInvestment)
	}
	if c.Financing.RevolverLimit < 0 {
		return fmt.Errorf("financing.revolverLimit must not be negative, got %.2f", c.Financing.RevolverLimit)
	}
	if c.Financing.RevolverInterestRate < 0 {
		return fmt.Errorf("financing.revolverInterestRate must not be negative, got %.4f", c.Financing.RevolverInterestRate)
	}

	if c.Tax.Combined() < 0 || c.Tax.Combined() >= 1 {
		return fmt.Errorf("combined tax rate must be within [0, 1), got %.4f", c.Tax.Combined())
	}

	for _, position := range c.HeadcountPlan {
		if position.AnnualSalary < 0 {
			return fmt.Errorf("headcount position %q has negative salary %.2f", position.Position, position.AnnualSalary)
		}
		if position.StartMonth < 1 {
			return fmt.Errorf("headcount position %q has start month %d before month 1", position.Position, position.StartMonth)
		}
	}

	return nil
}

// Validate checks one scenario against the shared constants.
func (s *Scenario) Validate(consts Constants) error {
	if s.Name == "" {
		return fmt.Errorf("scenario is missing a name")
	}

	if s.Volume.Year1BottleTarget <= 0 {
		return fmt.Errorf("scenario %s: volume.year1BottleTarget must be positive, got %.0f", s.Name, s.Volume.Year1BottleTarget)
	}

	for _, pct := range []struct {
		field string
		value float64
	}{
		{"channelMix.tastingRoomPct", s.ChannelMix.TastingRoomPct},
		{"channelMix.clubPct", s.ChannelMix.ClubPct},
		{"channelMix.wholesalePct", s.ChannelMix.WholesalePct},
	} {
		if pct.value < 0 || pct.value > 1 {
			return fmt.Errorf("scenario %s: %s must be within [0, 1], got %.4f", s.Name, pct.field, pct.value)
		}
	}

	for _, price := range []struct {
		field string
		value float64
	}{
		{"pricing.tastingRoomPerBottle", s.Pricing.TastingRoomPerBottle},
		{"pricing.clubPerBottle", s.Pricing.ClubPerBottle},
		{"pricing.wholesaleFobPerBottle", s.Pricing.WholesaleFobPerBottle},
	} {
		if price.value < 0 {
			return fmt.Errorf("scenario %s: %s must not be negative, got %.2f", s.Name, price.field, price.value)
		}
	}

	if s.CogsPerBottle.Total() < 0 {
		return fmt.Errorf("scenario %s: per-bottle COGS components must not sum negative, got %.2f", s.Name, s.CogsPerBottle.Total())
	}

	if s.Financing.SafeValuationCap <= 0 {
		return fmt.Errorf("scenario %s: financing.safeValuationCap must be positive, got %.2f", s.Name, s.Financing.SafeValuationCap)
	}
	if s.Financing.SafeDiscount < 0 || s.Financing.SafeDiscount >= 1 {
		return fmt.Errorf("scenario %s: financing.safeDiscount must be within [0, 1), got %.4f", s.Name, s.Financing.SafeDiscount)
	}
	if s.Financing.SeriesAPreMoneyValuation <= 0 {
		return fmt.Errorf("scenario %s: financing.seriesAPreMoneyValuation must be positive, got %.2f", s.Name, s.Financing.SeriesAPreMoneyValuation)
	}

	// A zero pre-money share count would make every per-share price a
	// division by zero; reject it here rather than guard downstream.
	if consts.Financing.FounderShares+consts.Financing.EarlyInvestorShares <= 0 {
		return fmt.Errorf("scenario %s: pre-money share count must be positive", s.Name)
	}

	return nil
}

// Warnings performs general validation of the configuration and returns
// human-readable warnings for conditions that are suspicious but still
// produce a valid model run.
func (conf *Configuration) Warnings() []string {
	var warnings []string

	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' is inactive and will be skipped", scenario.Name))
			continue
		}

		if !mathutil.WithinTolerance(scenario.ChannelMix.Sum(), 1.0, constants.CurrencyTolerance) {
			warnings = append(warnings, fmt.Sprintf(
				"Scenario '%s' channel mix sums to %.4f, not 1.0; revenue will use the shares as configured without normalization",
				scenario.Name, scenario.ChannelMix.Sum()))
		}
	}

	for _, position := range conf.Constants.HeadcountPlan {
		if position.StartMonth > conf.Constants.General.ForecastMonths {
			warnings = append(warnings, fmt.Sprintf(
				"Headcount position '%s' starts in month %d, after the %d-month horizon",
				position.Position, position.StartMonth, conf.Constants.General.ForecastMonths))
		}
	}

	return warnings
}
