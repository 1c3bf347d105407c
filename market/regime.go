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

// Transitioner advances the macro environment by one week
type Transitioner interface {
	Advance(current MacroState, rng *rand.Rand) MacroState
}

// regimeTransitions[from] holds the probability of moving to each regime
// in Regimes order
var regimeTransitions = map[Regime][]float64{
	Bull:      {0.60, 0.20, 0.05, 0.15},
	Bear:      {0.10, 0.50, 0.30, 0.10},
	Recession: {0.05, 0.15, 0.50, 0.30},
	Recovery:  {0.35, 0.10, 0.05, 0.50},
}

// rateProbabilities in RateDirections order, keyed by the new regime
var rateProbabilities = map[Regime][]float64{
	Bull:      {0.50, 0.35, 0.15},
	Bear:      {0.20, 0.30, 0.50},
	Recession: {0.05, 0.25, 0.70},
	Recovery:  {0.35, 0.45, 0.20},
}

// volatilityProbabilities in VolatilityStates order, keyed by the new regime
var volatilityProbabilities = map[Regime][]float64{
	Bull:      {0.40, 0.45, 0.12, 0.03},
	Bear:      {0.05, 0.30, 0.45, 0.20},
	Recession: {0.02, 0.18, 0.40, 0.40},
	Recovery:  {0.25, 0.50, 0.20, 0.05},
}

// MarkovChain is the stochastic regime engine. The zero value is ready to
// use.
type MarkovChain struct{}

// Advance draws the next regime from the current one, then the rate
// direction and the volatility state conditioned on the new regime. The
// week number is carried over unchanged; the caller stamps the new week.
func (MarkovChain) Advance(current MacroState, rng *rand.Rand) MacroState {
	regime := Regimes[WeightedChoice(regimeTransitions[current.Regime], rng)]
	rate := RateDirections[WeightedChoice(rateProbabilities[regime], rng)]
	vol := VolatilityStates[WeightedChoice(volatilityProbabilities[regime], rng)]

	return MacroState{
		Regime:     regime,
		Volatility: vol,
		Rate:       rate,
		Week:       current.Week,
	}
}

// TransitionProbabilities returns the probability of moving from one
// regime to each regime, in Regimes order
func TransitionProbabilities(from Regime) []float64 {
	return append([]float64(nil), regimeTransitions[from]...)
}

// FixedPath replays a predetermined sequence of macro states and ignores
// the generator. Once the path is exhausted the last state repeats. It is
// used for scripted scenarios and tests.
type FixedPath struct {
	States []MacroState
	next   int
}

func (f *FixedPath) Advance(current MacroState, rng *rand.Rand) MacroState {
	if len(f.States) == 0 {
		return current
	}
	idx := f.next
	if idx >= len(f.States) {
		idx = len(f.States) - 1
	} else {
		f.next++
	}
	state := f.States[idx]
	state.Week = current.Week
	return state
}
