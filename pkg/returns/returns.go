// Package returns provides investor return metrics (IRR, MOIC, payback
// period) for a series of periodic cash flows.
package returns

import "math"

// Metrics summarizes investor returns for one cash flow series.
type Metrics struct {
	IRR          float64 // periodic internal rate of return; 0 when undefined
	MOIC         float64 // multiple on invested capital
	PaybackYears float64 // fractional periods to recover capital; +Inf when never
}

const (
	irrLowerBound = -0.9999
	irrUpperBound = 10.0
	irrIterations = 200
)

// Calculate derives IRR, MOIC, and payback period from the cash flow series.
// cashFlows[0] is the period-zero flow and should be negative (the initial
// outflow); if it is not, it is replaced with -initialInvestment so the IRR
// is well defined.
func Calculate(cashFlows []float64, initialInvestment float64) Metrics {
	if len(cashFlows) == 0 {
		return Metrics{PaybackYears: math.Inf(1)}
	}

	flows := make([]float64, len(cashFlows))
	copy(flows, cashFlows)
	if flows[0] > 0 {
		flows[0] = -initialInvestment
	}

	totalReturns := 0.0
	for _, flow := range flows[1:] {
		totalReturns += flow
	}

	moic := 0.0
	if initialInvestment > 0 {
		moic = totalReturns / initialInvestment
	}

	return Metrics{
		IRR:          irr(flows),
		MOIC:         moic,
		PaybackYears: payback(flows),
	}
}

// NPV computes the net present value of the series at the given periodic rate.
func NPV(rate float64, cashFlows []float64) float64 {
	npv := 0.0
	for t, flow := range cashFlows {
		npv += flow / math.Pow(1+rate, float64(t))
	}
	return npv
}

// irr finds the rate where NPV crosses zero via bisection. Series with no
// sign change in the search interval report 0, mirroring how the dashboard
// treated undefined IRRs.
func irr(cashFlows []float64) float64 {
	low, high := irrLowerBound, irrUpperBound

	npvLow := NPV(low, cashFlows)
	npvHigh := NPV(high, cashFlows)
	if math.IsNaN(npvLow) || math.IsNaN(npvHigh) || npvLow*npvHigh > 0 {
		return 0
	}

	for i := 0; i < irrIterations; i++ {
		mid := (low + high) / 2
		npvMid := NPV(mid, cashFlows)
		if npvMid == 0 {
			return mid
		}
		if npvLow*npvMid < 0 {
			high = mid
		} else {
			low = mid
			npvLow = npvMid
		}
	}

	return (low + high) / 2
}

// payback returns the fractional number of periods until cumulative cash
// flow first turns non-negative, interpolating within the crossing period.
func payback(cashFlows []float64) float64 {
	cumulative := cashFlows[0]
	previous := cumulative

	for i := 1; i < len(cashFlows); i++ {
		cumulative += cashFlows[i]
		if cumulative >= 0 && previous < 0 {
			fraction := 0.0
			if cashFlows[i] != 0 {
				fraction = -previous / cashFlows[i]
			}
			return float64(i-1) + fraction
		}
		previous = cumulative
	}

	if cumulative >= 0 {
		return float64(len(cashFlows) - 1)
	}
	return math.Inf(1)
}
