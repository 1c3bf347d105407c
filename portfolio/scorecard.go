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
	"fmt"
)

// ScoreCard summarizes a completed season
type ScoreCard struct {
	InitialValue         float64 `json:"initialValue"`
	FinalValue           float64 `json:"finalValue"`
	TotalReturnPct       float64 `json:"totalReturnPct"`
	CAGR                 float64 `json:"cagr"`
	MaxDrawDown          float64 `json:"maxDrawDown"`
	AnnualizedVolatility float64 `json:"annualizedVolatility"`
	SharpeRatio          float64 `json:"sharpeRatio"`
	TotalWeeks           int     `json:"totalWeeks"`
	Grade                string  `json:"grade"`
}

// NewScoreCard computes the season summary from the weekly value series
// (index 0 is the starting value)
func NewScoreCard(values []float64, riskFree float64) ScoreCard {
	if len(values) == 0 {
		return ScoreCard{CAGR: -1.0, Grade: Grade(0)}
	}

	initial := values[0]
	final := values[len(values)-1]
	weeks := len(values) - 1
	rets := PeriodReturns(values)

	totalReturn := 0.0
	if initial > 0 {
		totalReturn = (final - initial) / initial * 100.0
	}

	sharpe := SharpeRatio(rets, riskFree)
	return ScoreCard{
		InitialValue:         initial,
		FinalValue:           final,
		TotalReturnPct:       totalReturn,
		CAGR:                 CAGR(initial, final, weeks),
		MaxDrawDown:          MaxDrawDown(values),
		AnnualizedVolatility: AnnualizedVolatility(rets),
		SharpeRatio:          sharpe,
		TotalWeeks:           weeks,
		Grade:                Grade(sharpe),
	}
}

// ProfitLoss is the dollar gain over the season
func (sc ScoreCard) ProfitLoss() float64 {
	return sc.FinalValue - sc.InitialValue
}

func (sc ScoreCard) String() string {
	return fmt.Sprintf("%d weeks: $%.2f -> $%.2f (%+.2f%%), CAGR %.2f%%, max DD %.2f%%, vol %.2f%%, Sharpe %.2f (%s)",
		sc.TotalWeeks, sc.InitialValue, sc.FinalValue, sc.TotalReturnPct, sc.CAGR*100,
		sc.MaxDrawDown*100, sc.AnnualizedVolatility*100, sc.SharpeRatio, sc.Grade)
}
