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

package market

import (
	"golang.org/x/exp/rand"
)

// sectorParam is the weekly (mean, standard deviation) of a sector's return
type sectorParam struct {
	Mean float64
	Std  float64
}

// rateModifier shifts the mean and scales the standard deviation
type rateModifier struct {
	MeanAdd float64
	StdMult float64
}

var regimeParams = map[Regime]map[Sector]sectorParam{
	Bull: {
		Tech:        {0.020, 0.035},
		Energy:      {0.012, 0.040},
		Financials:  {0.015, 0.030},
		Consumer:    {0.010, 0.020},
		Industrials: {0.013, 0.025},
	},
	Bear: {
		Tech:        {-0.015, 0.045},
		Energy:      {-0.010, 0.050},
		Financials:  {-0.020, 0.040},
		Consumer:    {-0.005, 0.025},
		Industrials: {-0.012, 0.035},
	},
	Recession: {
		Tech:        {-0.025, 0.055},
		Energy:      {-0.020, 0.060},
		Financials:  {-0.030, 0.050},
		Consumer:    {-0.008, 0.030},
		Industrials: {-0.022, 0.045},
	},
	Recovery: {
		Tech:        {0.015, 0.040},
		Energy:      {0.018, 0.045},
		Financials:  {0.020, 0.035},
		Consumer:    {0.008, 0.022},
		Industrials: {0.016, 0.030},
	},
}

var rateModifiers = map[RateDirection]map[Sector]rateModifier{
	Rising: {
		Tech:        {-0.003, 1.10},
		Energy:      {0.002, 1.00},
		Financials:  {0.005, 0.90},
		Consumer:    {-0.002, 1.05},
		Industrials: {-0.001, 1.05},
	},
	Stable: {
		Tech:        {0, 1},
		Energy:      {0, 1},
		Financials:  {0, 1},
		Consumer:    {0, 1},
		Industrials: {0, 1},
	},
	Falling: {
		Tech:        {0.004, 0.95},
		Energy:      {-0.001, 1.05},
		Financials:  {-0.004, 1.10},
		Consumer:    {0.002, 0.95},
		Industrials: {0.001, 0.98},
	},
}

var volatilityScaling = map[VolatilityState]float64{
	LowVol:    0.60,
	NormalVol: 1.00,
	HighVol:   1.50,
	CrisisVol: 2.20,
}

// EventEffect is anything that shifts sector returns for a week
type EventEffect interface {
	Effects() map[Sector]float64
}

// Generator produces weekly sector returns from the macro state
type Generator struct {
	Bounds Bounds
}

// NewGenerator creates a generator that clamps to the given bounds
func NewGenerator(bounds Bounds) *Generator {
	return &Generator{Bounds: bounds}
}

// Distribution returns the mean and standard deviation used for sector s
// under macro. The regime sets the base, the rate direction adds to the mean
// and scales the deviation, and the volatility state scales it again.
func Distribution(macro MacroState, s Sector) (mean, std float64) {
	base := regimeParams[macro.Regime][s]
	mod := rateModifiers[macro.Rate][s]
	mean = base.Mean + mod.MeanAdd
	std = base.Std * mod.StdMult * volatilityScaling[macro.Volatility]
	return mean, std
}

// Generate draws one week of clamped sector returns. It consumes exactly
// one correlated sample (one normal per sector) from rng.
func (g *Generator) Generate(macro MacroState, rng *rand.Rand) SectorReturns {
	z := Sample(macro.Regime, rng)
	returns := make(SectorReturns, len(Sectors))
	for _, s := range Sectors {
		mean, std := Distribution(macro, s)
		returns[s] = g.Bounds.Clamp(mean + std*z[s])
	}
	return returns
}

// ApplyEvents adds every event's sector effects to raw and clamps the
// result. Sectors an event does not mention are unaffected. raw is not
// modified.
func (g *Generator) ApplyEvents(raw SectorReturns, events ...EventEffect) SectorReturns {
	adjusted := make(SectorReturns, len(Sectors))
	for _, s := range Sectors {
		adjusted[s] = raw[s]
	}
	for _, ev := range events {
		for s, effect := range ev.Effects() {
			if _, ok := adjusted[s]; ok {
				adjusted[s] += effect
			}
		}
	}
	return adjusted.Clamp(g.Bounds)
}
