package config

import (
	"math"
	"os"
	"strings"
	"testing"
)

func loadTestConfiguration(t *testing.T) *Configuration {
	t.Helper()
	conf, err := LoadConfiguration("testdata/assumptions.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	return conf
}

func TestLoadConfiguration(t *testing.T) {
	conf := loadTestConfiguration(t)

	if conf.Constants.General.ForecastMonths != 36 {
		t.Errorf("ForecastMonths = %d, expected 36", conf.Constants.General.ForecastMonths)
	}
	if len(conf.Scenarios) != 2 {
		t.Fatalf("expected 2 scenarios, got %d", len(conf.Scenarios))
	}
	if conf.Scenarios[0].Name != "Base Case" {
		t.Errorf("first scenario = %q, expected 'Base Case'", conf.Scenarios[0].Name)
	}

	if conf.Logging.Level != "debug" || conf.Logging.Format != "console" {
		t.Errorf("logging config not loaded: %+v", conf.Logging)
	}
	if conf.Output.Format != "csv" {
		t.Errorf("output format = %q, expected csv", conf.Output.Format)
	}
	if conf.Storage.HistoryFile != "/tmp/distillery-runs.db" {
		t.Errorf("history file = %q, expected /tmp/distillery-runs.db", conf.Storage.HistoryFile)
	}
}

func TestLoadConfigurationNestedAssumptions(t *testing.T) {
	conf := loadTestConfiguration(t)

	base := conf.Scenarios[0]
	if math.Abs(base.Volume.Year1BottleTarget-50000) > 1e-9 {
		t.Errorf("Year1BottleTarget = %.0f, expected 50000", base.Volume.Year1BottleTarget)
	}
	if math.Abs(base.Pricing.WholesaleFobPerBottle-30.00) > 1e-9 {
		t.Errorf("WholesaleFobPerBottle = %.2f, expected 30.00", base.Pricing.WholesaleFobPerBottle)
	}
	if math.Abs(base.CogsPerBottle.Total()-18.20) > 1e-9 {
		t.Errorf("per-bottle COGS = %.2f, expected 18.20", base.CogsPerBottle.Total())
	}
	if math.Abs(base.OpEx.GAPctOfRevenue-0.08) > 1e-9 {
		t.Errorf("GAPctOfRevenue = %.2f, expected 0.08", base.OpEx.GAPctOfRevenue)
	}

	if len(conf.Constants.HeadcountPlan) != 2 {
		t.Fatalf("expected 2 headcount positions, got %d", len(conf.Constants.HeadcountPlan))
	}
	if conf.Constants.HeadcountPlan[1].StartMonth != 6 {
		t.Errorf("second position start month = %d, expected 6", conf.Constants.HeadcountPlan[1].StartMonth)
	}

	if math.Abs(conf.Constants.Tax.Combined()-0.276) > 1e-9 {
		t.Errorf("combined tax rate = %.4f, expected 0.276", conf.Constants.Tax.Combined())
	}
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	_, err := LoadConfiguration("testdata/does-not-exist.yaml")
	if err == nil {
		t.Fatalf("expected error for missing file, got nil")
	}
}

func TestParseConfigurationFromReader(t *testing.T) {
	data, err := os.ReadFile("testdata/assumptions.yaml")
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}

	conf, err := ParseConfiguration(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("ParseConfiguration() error = %v", err)
	}
	if len(conf.Scenarios) != 2 {
		t.Errorf("expected 2 scenarios, got %d", len(conf.Scenarios))
	}
	if conf.Constants.Financing.RevolverLimit != 500000 {
		t.Errorf("RevolverLimit = %.0f, expected 500000", conf.Constants.Financing.RevolverLimit)
	}
}

func TestParseConfigurationInvalidYAML(t *testing.T) {
	_, err := ParseConfiguration(strings.NewReader("{not yaml: ["))
	if err == nil {
		t.Fatalf("expected error for invalid YAML, got nil")
	}
}

func TestActiveScenarios(t *testing.T) {
	conf := loadTestConfiguration(t)

	active := conf.ActiveScenarios()
	if len(active) != 1 {
		t.Fatalf("expected 1 active scenario, got %d", len(active))
	}
	if active[0].Name != "Base Case" {
		t.Errorf("active scenario = %q, expected 'Base Case'", active[0].Name)
	}
}

func TestFindScenario(t *testing.T) {
	conf := loadTestConfiguration(t)

	if scenario := conf.FindScenario("Shelved Case"); scenario == nil {
		t.Errorf("FindScenario should locate 'Shelved Case'")
	}
	if scenario := conf.FindScenario("Missing Case"); scenario != nil {
		t.Errorf("FindScenario should return nil for an unknown name")
	}
}
