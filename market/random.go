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
	"gonum.org/v1/gonum/stat/distuv"
)

// NewRand creates the seeded generator for one game session. Every
// stochastic operation takes this generator explicitly and none creates its
// own, so replaying a seed with the same player inputs replays the season.
// A generator must never be shared between sessions.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// WeightedChoice draws an index in [0, len(weights)) with probability
// proportional to its weight. Weights must be non-negative with a positive sum.
func WeightedChoice(weights []float64, rng *rand.Rand) int {
	return int(distuv.NewCategorical(weights, rng).Rand())
}

// Uniform draws from [min, max)
func Uniform(min, max float64, rng *rand.Rand) float64 {
	return distuv.Uniform{Min: min, Max: max, Src: rng}.Rand()
}

// StandardNormal draws from N(0, 1)
func StandardNormal(rng *rand.Rand) float64 {
	return distuv.Normal{Mu: 0, Sigma: 1, Src: rng}.Rand()
}

// Pick draws a uniformly distributed index in [0, n)
func Pick(n int, rng *rand.Rand) int {
	return rng.Intn(n)
}
