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
	"sort"

	"gonum.org/v1/gonum/stat"
)

// periodsPerYear annualizes per-turn statistics. A season turn is scored
// as if it were one month of real trading.
const periodsPerYear = 12.0

// volatilityEpsilon is the smallest volatility a Sharpe ratio is computed for
const volatilityEpsilon = 1e-10

// DrawDown is one peak-to-recovery episode. Indices refer to positions in
// the weekly value series; Recovery is -1 if the portfolio never regained
// its prior peak.
type DrawDown struct {
	Begin       int     `json:"begin"`
	End         int     `json:"end"`
	Recovery    int     `json:"recovery"`
	LossPercent float64 `json:"lossPercent"`
}

// CAGR annualizes the growth from initial to final over the given number
// of periods: (final/initial)^(12/periods) - 1. A wiped out or otherwise
// degenerate portfolio returns -1.
func CAGR(initial, final float64, periods int) float64 {
	if initial <= 0 || final <= 0 || periods <= 0 {
		return -1.0
	}
	return math.Pow(final/initial, periodsPerYear/float64(periods)) - 1.0
}

// MaxDrawDown is the most negative peak-to-trough decline in values,
// tracking the peak from the first value. A series that never falls below
// its running peak has a max draw down of 0.
func MaxDrawDown(values []float64) float64 {
	if len(values) < 2 {
		return 0.0
	}

	peak := values[0]
	maxDD := 0.0
	for _, v := range values[1:] {
		peak = math.Max(peak, v)
		if peak <= 0 {
			continue
		}
		if dd := (v - peak) / peak; dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// DrawDowns finds every draw down episode in values, largest loss first
func DrawDowns(values []float64) []*DrawDown {
	all := []*DrawDown{}
	if len(values) < 2 {
		return all
	}

	peak := values[0]
	var drawDown *DrawDown
	for ii, v := range values {
		peak = math.Max(peak, v)
		if v < peak && peak > 0 {
			loss := v/peak - 1.0
			if drawDown == nil {
				drawDown = &DrawDown{
					Begin:       ii - 1,
					End:         ii,
					Recovery:    -1,
					LossPercent: loss,
				}
			}
			if loss < drawDown.LossPercent {
				drawDown.End = ii
				drawDown.LossPercent = loss
			}
		} else if drawDown != nil {
			drawDown.Recovery = ii
			all = append(all, drawDown)
			drawDown = nil
		}
	}

	if drawDown != nil {
		all = append(all, drawDown)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].LossPercent < all[j].LossPercent
	})
	return all
}

// PeriodReturns converts a value series into simple period returns. A
// period that starts at a non-positive value has a return of 0.
func PeriodReturns(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}
	rets := make([]float64, len(values)-1)
	for ii := 1; ii < len(values); ii++ {
		prev := values[ii-1]
		if prev <= 0 {
			rets[ii-1] = 0.0
			continue
		}
		rets[ii-1] = (values[ii] - prev) / prev
	}
	return rets
}

// AnnualizedVolatility is the sample standard deviation of period returns
// scaled by sqrt(12); 0 when there are fewer than 2 returns
func AnnualizedVolatility(returns []float64) float64 {
	if len(returns) < 2 {
		return 0.0
	}
	return stat.StdDev(returns, nil) * math.Sqrt(periodsPerYear)
}

// SharpeRatio is (mean period return * 12 - riskFree) / annualized
// volatility. It is 0 when there are fewer than 2 returns or volatility is
// effectively zero.
func SharpeRatio(returns []float64, riskFree float64) float64 {
	if len(returns) < 2 {
		return 0.0
	}
	vol := AnnualizedVolatility(returns)
	if vol < volatilityEpsilon {
		return 0.0
	}
	return (stat.Mean(returns, nil)*periodsPerYear - riskFree) / vol
}

// Grade maps a Sharpe ratio to a letter grade
func Grade(sharpe float64) string {
	switch {
	case sharpe >= 3.0:
		return "A+"
	case sharpe >= 2.0:
		return "A"
	case sharpe >= 1.5:
		return "B"
	case sharpe >= 0.8:
		return "C"
	case sharpe >= 0.0:
		return "D"
	default:
		return "F"
	}
}
