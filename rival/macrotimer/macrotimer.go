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

// Package macrotimer implements a rival that rotates sectors according to
// the macroeconomic regime.
package macrotimer

import (
	"github.com/goccy/go-json"
	"golang.org/x/exp/rand"

	"github.com/penny-vault/pv-arena/market"
	"github.com/penny-vault/pv-arena/portfolio"
	"github.com/penny-vault/pv-arena/rival/strategy"
)

// RegimeTimer strategy type
type RegimeTimer struct {
	floor   float64
	noise   float64
	targets map[market.Regime]map[market.Sector]float64
}

// New constructs a new macro timer strategy
func New(args map[string]json.RawMessage) (strategy.Strategy, error) {
	floor, err := strategy.Float(args, "floor")
	if err != nil {
		return nil, err
	}
	noise, err := strategy.Float(args, "noise")
	if err != nil {
		return nil, err
	}
	targets, err := strategy.Targets(args, "targets")
	if err != nil {
		return nil, err
	}

	var strat strategy.Strategy = &RegimeTimer{
		floor:   floor,
		noise:   noise,
		targets: targets,
	}
	return strat, nil
}

// Allocate perturbs the current regime's targets and renormalizes. One
// draw per sector is taken from rng.
func (strat *RegimeTimer) Allocate(macro market.MacroState, history *portfolio.History, rng *rand.Rand) (market.Allocation, error) {
	return strategy.Normalize(strategy.Jitter(strat.targets[macro.Regime], strat.noise, rng), strat.floor)
}
