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
	"fmt"
	"math"
)

// MacroState is the macroeconomic environment for a single week
type MacroState struct {
	Regime     Regime          `json:"regime"`
	Volatility VolatilityState `json:"volatilityState"`
	Rate       RateDirection   `json:"rateDirection"`
	Week       int             `json:"week"`
}

var regimeDescriptions = map[Regime]string{
	Bull:      "The economy is expanding. Risk appetite is strong.",
	Bear:      "Markets are declining. Caution is warranted.",
	Recession: "Economic contraction underway. Defensive positioning advised.",
	Recovery:  "Signs of recovery emerging. Opportunities abound.",
}

// Description is a one line summary of the regime
func (m MacroState) Description() string {
	return regimeDescriptions[m.Regime]
}

// WithWeek returns a copy of m for the given week
func (m MacroState) WithWeek(week int) MacroState {
	m.Week = week
	return m
}

func (m MacroState) String() string {
	return fmt.Sprintf("week %d: %s regime, %s volatility, rates %s", m.Week, m.Regime, m.Volatility, m.Rate)
}

// Bounds is the symmetric clamp applied to weekly sector returns
type Bounds struct {
	Min float64 `json:"min" toml:"min_return"`
	Max float64 `json:"max" toml:"max_return"`
}

// DefaultBounds clamps weekly returns to +/- 30%
var DefaultBounds = Bounds{Min: -0.30, Max: 0.30}

// Clamp limits r to the bounds
func (b Bounds) Clamp(r float64) float64 {
	return math.Max(b.Min, math.Min(b.Max, r))
}

// SectorReturns holds one week of returns for every sector
type SectorReturns map[Sector]float64

// Clamp returns a copy with every value clamped to b
func (sr SectorReturns) Clamp(b Bounds) SectorReturns {
	out := make(SectorReturns, len(sr))
	for s, r := range sr {
		out[s] = b.Clamp(r)
	}
	return out
}

// Values returns the returns in canonical sector order
func (sr SectorReturns) Values() []float64 {
	vals := make([]float64, len(Sectors))
	for ii, s := range Sectors {
		vals[ii] = sr[s]
	}
	return vals
}

// PortfolioReturn is the weighted sum of sector returns for an allocation;
// cash earns nothing
func (sr SectorReturns) PortfolioReturn(alloc Allocation) float64 {
	fracs := alloc.Fractions()
	ret := 0.0
	for _, s := range Sectors {
		ret += fracs[s] * sr[s]
	}
	return ret
}
