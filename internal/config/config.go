// Package config defines the data structures related to configuration and
// includes functions for loading and validating the assumptions file.
package config

import (
	"fmt"
	"io"

	"github.com/spf13/viper"
)

// Configuration holds all configuration for distillery-forecast.
type Configuration struct {
	Constants Constants
	Scenarios []Scenario
	Logging   LoggingConfig `yaml:"logging,omitempty"`
	Output    OutputConfig  `yaml:"output,omitempty"`
	Storage   StorageConfig `yaml:"storage,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// StorageConfig holds the optional run-history database location.
type StorageConfig struct {
	HistoryFile string `yaml:"historyFile,omitempty"` // optional SQLite file
}

// Constants holds the assumptions that are fixed across all scenarios.
type Constants struct {
	General       General
	HeadcountPlan []Position
	OpEx          FixedOpEx
	CapEx         CapExPlan
	Financing     FinancingTerms
	Tax           TaxRates
}

// General holds cross-cutting model parameters.
type General struct {
	ForecastMonths int
}

// Position is one entry in the headcount plan. Salary is annual; the
// position draws payroll from StartMonth onward.
type Position struct {
	Position     string
	AnnualSalary float64
	StartMonth   int
}

// FixedOpEx holds the fixed operating expense schedules and their growth rates.
type FixedOpEx struct {
	PayrollBenefitsTaxPct       float64
	PayrollAnnualGrowthPct      float64
	RentYear1                   float64
	RentAnnualEscalatorPct      float64
	UtilitiesInsuranceYear1     float64
	UtilitiesInsuranceGrowthPct float64
}

// CapExPlan holds the initial capital expenditure schedule.
type CapExPlan struct {
	InitialSpendBase           float64
	InitialSpendMonth          int
	EquipmentDepreciationYears int
}

// FinancingTerms holds the financing constants shared by all scenarios.
type FinancingTerms struct {
	InitialCashPosition  float64
	SafeRoundInvestment  float64
	SeriesAInvestment    float64
	FounderShares        float64
	EarlyInvestorShares  float64
	RevolverLimit        float64
	RevolverInterestRate float64 // annual rate
}

// TaxRates holds the combined income tax assumptions.
type TaxRates struct {
	FederalIncomeTaxRate float64
	StateIncomeTaxRate   float64
}

// Combined returns the combined income tax rate applied to positive EBT.
func (t TaxRates) Combined() float64 {
	return t.FederalIncomeTaxRate + t.StateIncomeTaxRate
}

// Scenario holds all assumptions for a single scenario.
type Scenario struct {
	Name          string
	Active        bool
	Volume        VolumeAssumptions
	Pricing       PricingAssumptions
	ChannelMix    ChannelMix
	CogsPerBottle CogsPerBottle
	OpEx          VariableOpEx
	CapEx         CapExAssumptions
	Financing     EquityAssumptions
}

// VolumeAssumptions drives the annual bottle volume ramp.
type VolumeAssumptions struct {
	Year1BottleTarget     float64
	Year2GrowthPct        float64
	Year3OnwardsGrowthPct float64
}

// PricingAssumptions holds per-channel base prices and the annual escalator.
type PricingAssumptions struct {
	TastingRoomPerBottle   float64
	ClubPerBottle          float64
	WholesaleFobPerBottle  float64
	AnnualPriceIncreasePct float64
}

// ChannelMix holds the share of volume flowing through each sales channel.
// The shares are expected to sum to 1 but are intentionally not normalized;
// an inconsistent mix flows straight into revenue (see Warnings).
type ChannelMix struct {
	TastingRoomPct float64
	ClubPct        float64
	WholesalePct   float64
}

// Sum returns the total of the configured channel shares.
func (m ChannelMix) Sum() float64 {
	return m.TastingRoomPct + m.ClubPct + m.WholesalePct
}

// CogsPerBottle holds the per-bottle cost components.
type CogsPerBottle struct {
	Grain          float64
	OtherMaterials float64
	DirectLabor    float64
	Packaging      float64
}

// Total returns the flat per-bottle cost.
func (c CogsPerBottle) Total() float64 {
	return c.Grain + c.OtherMaterials + c.DirectLabor + c.Packaging
}

// VariableOpEx holds revenue-driven operating expense percentages.
type VariableOpEx struct {
	MarketingPctOfRevenue float64
	GAPctOfRevenue        float64
}

// CapExAssumptions holds scenario-level capital expenditure adjustments.
type CapExAssumptions struct {
	InitialSpendOverrunPct float64
}

// EquityAssumptions holds the scenario-level financing terms.
type EquityAssumptions struct {
	SafeValuationCap         float64
	SafeDiscount             float64
	SeriesAPreMoneyValuation float64
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// ParseConfiguration decodes a YAML-formatted configuration from the given
// reader, e.g. an uploaded document. It uses an isolated viper instance so
// concurrent parses do not share state.
func ParseConfiguration(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config document, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// ActiveScenarios returns the scenarios flagged active, preserving order.
func (conf *Configuration) ActiveScenarios() []Scenario {
	var active []Scenario
	for _, scenario := range conf.Scenarios {
		if scenario.Active {
			active = append(active, scenario)
		}
	}
	return active
}

// FindScenario returns the scenario with the given name, or nil.
func (conf *Configuration) FindScenario(name string) *Scenario {
	for i := range conf.Scenarios {
		if conf.Scenarios[i].Name == name {
			return &conf.Scenarios[i]
		}
	}
	return nil
}
