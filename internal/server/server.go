// Package server exposes the projection engine over an HTTP JSON API.
package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/broguedistilling/distillery-forecast/internal/config"
	"github.com/broguedistilling/distillery-forecast/internal/engine"
	"github.com/broguedistilling/distillery-forecast/pkg/constants"
	"github.com/broguedistilling/distillery-forecast/pkg/output"
	"go.uber.org/zap"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the forecast API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion}

	mux := http.NewServeMux()

	// Forecast API endpoint (YAML assumptions upload)
	mux.HandleFunc("/api/forecast", h.handleForecast)

	// Version endpoint for client metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	// Liveness probe
	mux.HandleFunc("/healthz", h.handleHealth)

	return mux
}

type forecastResponse struct {
	Scenarios []string         `json:"scenarios"`
	Results   []scenarioResult `json:"results"`
	CSV       string           `json:"csv"`
	Warnings  []string         `json:"warnings,omitempty"`
	Duration  string           `json:"duration"`
}

type scenarioResult struct {
	Name     string       `json:"name"`
	Months   []monthRow   `json:"months"`
	CapTable capTableJSON `json:"capTable"`
	Returns  returnsJSON  `json:"returns"`
}

type monthRow struct {
	Month           int     `json:"month"`
	Revenue         float64 `json:"revenue"`
	COGS            float64 `json:"cogs"`
	OpEx            float64 `json:"opex"`
	EBITDA          float64 `json:"ebitda"`
	NetIncome       float64 `json:"netIncome"`
	EndingCash      float64 `json:"endingCash"`
	RevolverBalance float64 `json:"revolverBalance"`
	RunwayMonths    float64 `json:"runwayMonths"`
}

type capTableJSON struct {
	SeriesAPricePerShare float64   `json:"seriesAPricePerShare"`
	EffectiveSafePrice   float64   `json:"effectiveSafePrice"`
	Founders             stakeJSON `json:"founders"`
	SafeInvestors        stakeJSON `json:"safeInvestors"`
	SeriesAInvestors     stakeJSON `json:"seriesAInvestors"`
}

type stakeJSON struct {
	Shares       float64 `json:"shares"`
	OwnershipPct float64 `json:"ownershipPct"`
}

type returnsJSON struct {
	IRR          float64  `json:"irr"`
	MOIC         float64  `json:"moic"`
	PaybackYears *float64 `json:"paybackYears,omitempty"` // omitted when capital is never recovered
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "only POST is supported")
		return
	}

	start := time.Now()

	body, err := h.readConfigPayload(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conf, err := config.ParseConfiguration(bytes.NewReader(body))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid configuration: %v", err))
		return
	}

	if err := conf.Validate(); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	results, err := engine.RunAll(h.logger, *conf)
	if err != nil {
		h.logger.Error("forecast run failed",
			zap.String("op", "server.handleForecast"),
			zap.Error(err),
		)
		h.writeError(w, http.StatusInternalServerError, "forecast run failed")
		return
	}
	if len(results) == 0 {
		h.writeError(w, http.StatusUnprocessableEntity, "no active scenarios in configuration")
		return
	}

	response := forecastResponse{
		Warnings: conf.Warnings(),
		Duration: time.Since(start).String(),
	}

	var csvBuffer bytes.Buffer
	output.CsvFormat(&csvBuffer, results)
	response.CSV = csvBuffer.String()

	for _, result := range results {
		response.Scenarios = append(response.Scenarios, result.ScenarioName)
		response.Results = append(response.Results, toScenarioResult(result))
	}

	h.logger.Info("forecast computed",
		zap.String("op", "server.handleForecast"),
		zap.Int("scenarios", len(results)),
		zap.Duration("duration", time.Since(start)),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "only GET is supported")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readConfigPayload accepts either a multipart upload with a "config" file
// field or a raw YAML request body, bounded by the configured upload size.
func (h *handler) readConfigPayload(r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, h.maxUploadSize)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
			return nil, fmt.Errorf("failed to parse upload: %v", err)
		}
		file, _, err := r.FormFile("config")
		if err != nil {
			return nil, fmt.Errorf("missing config file field: %v", err)
		}
		defer func() { _ = file.Close() }()
		return io.ReadAll(file)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %v", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty configuration payload")
	}
	return body, nil
}

func toScenarioResult(result engine.Result) scenarioResult {
	sr := scenarioResult{
		Name: result.ScenarioName,
		CapTable: capTableJSON{
			SeriesAPricePerShare: result.CapTable.SeriesAPricePerShare,
			EffectiveSafePrice:   result.CapTable.EffectiveSafePrice,
			Founders: stakeJSON{
				Shares:       result.CapTable.Founders.Shares,
				OwnershipPct: result.CapTable.Founders.OwnershipPct,
			},
			SafeInvestors: stakeJSON{
				Shares:       result.CapTable.SafeInvestors.Shares,
				OwnershipPct: result.CapTable.SafeInvestors.OwnershipPct,
			},
			SeriesAInvestors: stakeJSON{
				Shares:       result.CapTable.SeriesAInvestor.Shares,
				OwnershipPct: result.CapTable.SeriesAInvestor.OwnershipPct,
			},
		},
		Returns: returnsJSON{
			IRR:  result.Returns.IRR,
			MOIC: result.Returns.MOIC,
		},
	}

	if !math.IsInf(result.Returns.PaybackYears, 1) {
		payback := result.Returns.PaybackYears
		sr.Returns.PaybackYears = &payback
	}

	for _, month := range result.Ledger {
		sr.Months = append(sr.Months, monthRow{
			Month:           month.Index,
			Revenue:         month.Revenue,
			COGS:            month.COGS,
			OpEx:            month.OpEx,
			EBITDA:          month.EBITDA,
			NetIncome:       month.NetIncome,
			EndingCash:      month.EndingCash,
			RevolverBalance: month.RevolverBalance,
			RunwayMonths:    month.RunwayMonths,
		})
	}

	return sr
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}

func (h *handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}
