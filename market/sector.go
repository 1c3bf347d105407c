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

// Package market holds the value types shared by every engine component
// (sectors, macro state, allocations, sector returns) together with the
// stochastic market engine: the correlated normal sampler, the regime
// Markov chain and the sector return generator.
package market

import (
	"fmt"
	"strings"
)

// Sector is an investable market sector
type Sector string

const (
	Tech        Sector = "tech"
	Energy      Sector = "energy"
	Financials  Sector = "financials"
	Consumer    Sector = "consumer"
	Industrials Sector = "industrials"
)

// Sectors is the canonical processing and display order. Anything whose
// output depends on iteration order must range over this list rather than
// over a map keyed by Sector.
var Sectors = []Sector{Tech, Energy, Financials, Consumer, Industrials}

// Cyclicals are the sectors most exposed to the economic cycle
var Cyclicals = []Sector{Tech, Energy, Industrials}

var sectorNames = map[Sector]string{
	Tech:        "Tech",
	Energy:      "Energy",
	Financials:  "Financials",
	Consumer:    "Consumer Staples",
	Industrials: "Industrials",
}

// DisplayName returns the human readable sector name
func (s Sector) DisplayName() string {
	if name, ok := sectorNames[s]; ok {
		return name
	}
	return string(s)
}

func (s Sector) String() string {
	return string(s)
}

// Valid reports whether s is one of the modeled sectors
func (s Sector) Valid() bool {
	_, ok := sectorNames[s]
	return ok
}

// ParseSector accepts either the sector id or its display name
func ParseSector(name string) (Sector, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, s := range Sectors {
		if needle == string(s) || needle == strings.ToLower(s.DisplayName()) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSector, name)
}

// Regime is the macroeconomic regime
type Regime string

const (
	Bull      Regime = "bull"
	Bear      Regime = "bear"
	Recession Regime = "recession"
	Recovery  Regime = "recovery"
)

var Regimes = []Regime{Bull, Bear, Recession, Recovery}

func (r Regime) String() string {
	return string(r)
}

func ParseRegime(name string) (Regime, error) {
	needle := Regime(strings.ToLower(strings.TrimSpace(name)))
	for _, r := range Regimes {
		if r == needle {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: regime %q", ErrUnknownState, name)
}

// VolatilityState is the categorical market turbulence level
type VolatilityState string

const (
	LowVol    VolatilityState = "low"
	NormalVol VolatilityState = "normal"
	HighVol   VolatilityState = "high"
	CrisisVol VolatilityState = "crisis"
)

var VolatilityStates = []VolatilityState{LowVol, NormalVol, HighVol, CrisisVol}

func (v VolatilityState) String() string {
	return string(v)
}

// Stressed is true for the high and crisis states
func (v VolatilityState) Stressed() bool {
	return v == HighVol || v == CrisisVol
}

func ParseVolatilityState(name string) (VolatilityState, error) {
	needle := VolatilityState(strings.ToLower(strings.TrimSpace(name)))
	for _, v := range VolatilityStates {
		if v == needle {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: volatility %q", ErrUnknownState, name)
}

// RateDirection is the interest-rate trend
type RateDirection string

const (
	Rising  RateDirection = "rising"
	Stable  RateDirection = "stable"
	Falling RateDirection = "falling"
)

var RateDirections = []RateDirection{Rising, Stable, Falling}

func (r RateDirection) String() string {
	return string(r)
}

func ParseRateDirection(name string) (RateDirection, error) {
	needle := RateDirection(strings.ToLower(strings.TrimSpace(name)))
	for _, r := range RateDirections {
		if r == needle {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: rate direction %q", ErrUnknownState, name)
}
