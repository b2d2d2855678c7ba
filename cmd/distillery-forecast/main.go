package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/broguedistilling/distillery-forecast/internal/config"
	"github.com/broguedistilling/distillery-forecast/internal/engine"
	"github.com/broguedistilling/distillery-forecast/internal/server"
	"github.com/broguedistilling/distillery-forecast/internal/store"
	"github.com/broguedistilling/distillery-forecast/pkg/constants"
	"github.com/broguedistilling/distillery-forecast/pkg/output"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info" // Default to info level
	}

	// Parse log level
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	// Determine output format
	format := loggingConfig.Format
	if format == "" {
		format = "json" // Default to JSON for production
	}

	// Configure encoder
	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		// Ensure the directory exists
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to assumptions file")
	scenarioName := flag.String("scenario", "", "run only the named scenario")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	serve := flag.Bool("serve", false, "run the HTTP forecast API instead of a one-shot projection")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	showHistory := flag.Int("show-history", 0, "print the N most recent persisted runs and exit")
	flag.Parse()

	if *serve {
		runServer(*serverConfigLocation, *logLevel)
		return
	}

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	// Initialize logging based on config and CLI override
	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if *showHistory > 0 {
		printHistory(logger, conf.Storage.HistoryFile, *showHistory)
		return
	}

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if outputFormat != constants.OutputFormatPretty && outputFormat != constants.OutputFormatCSV {
		logger.Fatal(fmt.Sprintf("invalid output format %s", outputFormat),
			zap.String("op", "main"),
		)
	}

	// Reject invalid assumptions before running anything
	if err := conf.Validate(); err != nil {
		logger.Fatal("configuration failed validation",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Display any non-fatal configuration warnings
	for _, warning := range conf.Warnings() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	// Optionally narrow to a single scenario
	if *scenarioName != "" {
		scenario := conf.FindScenario(*scenarioName)
		if scenario == nil {
			logger.Fatal(fmt.Sprintf("scenario %s not found in configuration", *scenarioName),
				zap.String("op", "main"),
			)
		}
		scenario.Active = true
		conf.Scenarios = []config.Scenario{*scenario}
	}

	// Run the projection for all active scenarios.
	results, err := engine.RunAll(logger, *conf)
	if err != nil {
		logger.Fatal("failed to compute projection",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	if len(results) == 0 {
		logger.Fatal("no active scenarios to run",
			zap.String("op", "main"),
		)
	}

	// Persist run summaries when a history file is configured.
	if conf.Storage.HistoryFile != "" {
		saveHistory(logger, conf.Storage.HistoryFile, results)
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(os.Stdout, results)
	case constants.OutputFormatCSV:
		output.CsvFormat(os.Stdout, results)
	}
}

func runServer(serverConfigLocation, logLevelOverride string) {
	serverConf, err := server.LoadConfig(serverConfigLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}

	logger, err := initializeLogger(serverConf.Logging, logLevelOverride)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	handler := server.NewHandler(logger, serverConf.UploadSizeBytes(), version)

	logger.Info("starting forecast API",
		zap.String("op", "main"),
		zap.String("address", serverConf.Address),
	)
	if err := http.ListenAndServe(serverConf.Address, handler); err != nil {
		logger.Fatal("server exited",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

func saveHistory(logger *zap.Logger, historyFile string, results []engine.Result) {
	history, err := store.Open(historyFile)
	if err != nil {
		logger.Error("failed to open run history",
			zap.String("op", "main"),
			zap.String("historyFile", historyFile),
			zap.Error(err),
		)
		return
	}
	defer func() {
		_ = history.Close()
	}()

	for _, result := range results {
		if err := history.SaveRun(result); err != nil {
			logger.Error("failed to persist run summary",
				zap.String("op", "main"),
				zap.String("scenario", result.ScenarioName),
				zap.Error(err),
			)
		}
	}
}

func printHistory(logger *zap.Logger, historyFile string, limit int) {
	if historyFile == "" {
		logger.Fatal("storage.historyFile is not configured",
			zap.String("op", "main"),
		)
	}

	history, err := store.Open(historyFile)
	if err != nil {
		logger.Fatal("failed to open run history",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	defer func() {
		_ = history.Close()
	}()

	runs, err := history.ListRuns(limit)
	if err != nil {
		logger.Fatal("failed to read run history",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	fmt.Printf("Run At               | Scenario        | Ending Cash   | Min Cash      | Peak Revolver | Runway | IRR    | MOIC\n")
	for _, run := range runs {
		fmt.Printf("%-20s | %-15s | %13.2f | %13.2f | %13.2f | %6.1f | %5.1f%% | %.2fx\n",
			run.RunAt.Format("2006-01-02 15:04:05"), run.Scenario, run.EndingCash,
			run.MinimumCash, run.PeakRevolver, run.FinalRunway, run.IRR*100, run.MOIC)
	}
}
