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

// Package value implements a contrarian rival that buys the sectors with
// the weakest trailing returns.
package value

import (
	"github.com/goccy/go-json"
	"golang.org/x/exp/rand"

	"github.com/penny-vault/pv-arena/market"
	"github.com/penny-vault/pv-arena/portfolio"
	"github.com/penny-vault/pv-arena/rival/strategy"
)

// Contrarian strategy type
type Contrarian struct {
	window     int
	floor      float64
	seedWeight float64
	seedNoise  float64
}

// New constructs a new contrarian value strategy
func New(args map[string]json.RawMessage) (strategy.Strategy, error) {
	window, err := strategy.Int(args, "window")
	if err != nil {
		return nil, err
	}
	floor, err := strategy.Float(args, "floor")
	if err != nil {
		return nil, err
	}
	seedWeight, err := strategy.Float(args, "seed_weight")
	if err != nil {
		return nil, err
	}
	seedNoise, err := strategy.Float(args, "seed_noise")
	if err != nil {
		return nil, err
	}

	var val strategy.Strategy = &Contrarian{
		window:     window,
		floor:      floor,
		seedWeight: seedWeight,
		seedNoise:  seedNoise,
	}
	return val, nil
}

// Allocate inverts trailing returns around the best performer so the
// biggest laggard gets the largest weight
func (val *Contrarian) Allocate(macro market.MacroState, history *portfolio.History, rng *rand.Rand) (market.Allocation, error) {
	trailing := strategy.TrailingReturns(history, val.window)
	if history.Len() == 0 || strategy.AllZero(trailing) {
		return strategy.Normalize(strategy.Jitter(strategy.Flat(val.seedWeight), val.seedNoise, rng), val.floor)
	}

	high := trailing[market.Sectors[0]]
	for _, s := range market.Sectors {
		if trailing[s] > high {
			high = trailing[s]
		}
	}

	total := 0.0
	inverted := make(map[market.Sector]float64, len(market.Sectors))
	for _, s := range market.Sectors {
		inverted[s] = high - trailing[s] + 0.01
		total += inverted[s]
	}

	raw := make(map[market.Sector]float64, len(market.Sectors))
	for _, s := range market.Sectors {
		raw[s] = inverted[s] / total * 100.0
	}
	return strategy.Normalize(raw, val.floor)
}
