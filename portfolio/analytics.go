// Copyright 2021-2022
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package portfolio

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/penny-vault/pv-arena/market"
)

// DefaultRollingWindow is the number of trailing periods in rolling metrics
const DefaultRollingWindow = 4

// ExpandedMetrics are the per-week analytics series reported after a
// season along with their most recent values
type ExpandedMetrics struct {
	RollingVolatility    []float64   `json:"rollingVolatility"`
	RollingSharpe        []float64   `json:"rollingSharpe"`
	DrawDownSeries       []float64   `json:"drawDownSeries"`
	ConcentrationScores  []float64   `json:"concentrationScores"`
	GrossExposureSeries  []float64   `json:"grossExposureSeries"`
	DrawDowns            []*DrawDown `json:"drawDowns"`
	CurrentRollingVol    float64     `json:"currentRollingVol"`
	CurrentRollingSharpe float64     `json:"currentRollingSharpe"`
	CurrentDrawDown      float64     `json:"currentDrawDown"`
	CurrentConcentration float64     `json:"currentConcentration"`
	CurrentGrossExposure float64     `json:"currentGrossExposure"`
	AverageGrossExposure float64     `json:"averageGrossExposure"`
}

// trailing returns the window ending at index ii; shorter at the start
func trailing(returns []float64, ii, window int) []float64 {
	if window < 1 {
		window = 1
	}
	start := ii - window + 1
	if start < 0 {
		start = 0
	}
	return returns[start : ii+1]
}

// RollingVolatility is the annualized volatility of the trailing window
// ending at each period. Windows with fewer than 2 returns report 0.
func RollingVolatility(returns []float64, window int) []float64 {
	result := make([]float64, len(returns))
	for ii := range returns {
		result[ii] = AnnualizedVolatility(trailing(returns, ii, window))
	}
	return result
}

// RollingSharpe is the Sharpe ratio of the trailing window ending at each
// period. Windows with fewer than 2 returns or zero volatility report 0.
func RollingSharpe(returns []float64, window int, riskFree float64) []float64 {
	result := make([]float64, len(returns))
	for ii := range returns {
		result[ii] = SharpeRatio(trailing(returns, ii, window), riskFree)
	}
	return result
}

// DrawDownSeries is the fractional distance below the running peak at each
// point: 0 at a new high, negative otherwise
func DrawDownSeries(values []float64) []float64 {
	result := make([]float64, len(values))
	if len(values) == 0 {
		return result
	}
	peak := values[0]
	for ii, v := range values {
		peak = math.Max(peak, v)
		if peak > 0 {
			result[ii] = (v - peak) / peak
		}
	}
	return result
}

// Concentration is the Herfindahl-Hirschman index of an allocation. Weights
// are taken in absolute value and normalized by gross exposure so shorts
// count as concentration too; the result lies in [1/n, 1] for any non-empty
// allocation and is 0 for an all-cash one.
func Concentration(alloc market.Allocation) float64 {
	fracs := alloc.Fractions()
	abs := make([]float64, 0, len(market.Sectors))
	for _, s := range market.Sectors {
		abs = append(abs, math.Abs(fracs[s]))
	}

	gross := floats.Sum(abs)
	if gross < volatilityEpsilon {
		return 0.0
	}

	floats.Scale(1.0/gross, abs)
	return floats.Dot(abs, abs)
}

// GrossExposureSeries is the gross exposure of each allocation
func GrossExposureSeries(allocs []market.Allocation) []float64 {
	result := make([]float64, len(allocs))
	for ii, alloc := range allocs {
		result[ii] = alloc.GrossExposure()
	}
	return result
}

// NewExpandedMetrics computes every analytics series for a season
func NewExpandedMetrics(values []float64, allocs []market.Allocation, window int, riskFree float64) ExpandedMetrics {
	rets := PeriodReturns(values)

	concentration := make([]float64, len(allocs))
	for ii, alloc := range allocs {
		concentration[ii] = Concentration(alloc)
	}

	metrics := ExpandedMetrics{
		RollingVolatility:    RollingVolatility(rets, window),
		RollingSharpe:        RollingSharpe(rets, window, riskFree),
		DrawDownSeries:       DrawDownSeries(values),
		ConcentrationScores:  concentration,
		GrossExposureSeries:  GrossExposureSeries(allocs),
		DrawDowns:            DrawDowns(values),
		CurrentGrossExposure: 1.0,
		AverageGrossExposure: AverageGrossExposure(allocs),
	}

	if n := len(metrics.RollingVolatility); n > 0 {
		metrics.CurrentRollingVol = metrics.RollingVolatility[n-1]
		metrics.CurrentRollingSharpe = metrics.RollingSharpe[n-1]
	}
	if n := len(metrics.DrawDownSeries); n > 0 {
		metrics.CurrentDrawDown = metrics.DrawDownSeries[n-1]
	}
	if n := len(concentration); n > 0 {
		metrics.CurrentConcentration = concentration[n-1]
		metrics.CurrentGrossExposure = metrics.GrossExposureSeries[n-1]
	}

	return metrics
}

// AverageGrossExposure is the mean gross exposure over a season
func AverageGrossExposure(allocs []market.Allocation) float64 {
	if len(allocs) == 0 {
		return 0
	}
	return stat.Mean(GrossExposureSeries(allocs), nil)
}
