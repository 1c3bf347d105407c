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

package agents

import (
	"fmt"
	"math"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/exp/rand"

	"github.com/penny-vault/pv-arena/market"
)

// FedStatement is the central bank's weekly policy communication
type FedStatement struct {
	Statement  string  `json:"statement"`
	PolicyBias string  `json:"policyBias"`
	Confidence float64 `json:"confidence"`
}

var policyBias = map[market.RateDirection]string{
	market.Rising:  "tightening",
	market.Stable:  "neutral",
	market.Falling: "easing",
}

// confidenceRanges narrow and rise as markets calm down
var confidenceRanges = map[market.VolatilityState][2]float64{
	market.LowVol:    {0.75, 0.95},
	market.NormalVol: {0.60, 0.80},
	market.HighVol:   {0.40, 0.65},
	market.CrisisVol: {0.20, 0.45},
}

// FedChair writes the weekly policy statement from a pool of templates per
// regime and rate direction
type FedChair struct {
	statements map[market.Regime]map[market.RateDirection][]string
}

// NewFedChair returns a FedChair using the built-in statement pools
func NewFedChair() *FedChair {
	return defaultFedStatements
}

// ParseFedStatements loads statement pools from TOML. Every regime and rate
// direction combination must have at least one statement.
func ParseFedStatements(data []byte) (*FedChair, error) {
	var doc struct {
		Statements map[string]map[string][]string `toml:"statements"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: fed statements: %s", ErrInvalidTemplate, err)
	}

	fed := &FedChair{
		statements: make(map[market.Regime]map[market.RateDirection][]string, len(market.Regimes)),
	}
	for _, regime := range market.Regimes {
		fed.statements[regime] = make(map[market.RateDirection][]string, len(market.RateDirections))
		for _, rate := range market.RateDirections {
			pool := doc.Statements[string(regime)][string(rate)]
			if len(pool) == 0 {
				return nil, fmt.Errorf("%w: fed statement for %s regime with %s rates", ErrMissingTemplate, regime, rate)
			}
			fed.statements[regime][rate] = pool
		}
	}
	return fed, nil
}

// Statements returns the pool used for a regime and rate direction
func (fc *FedChair) Statements(regime market.Regime, rate market.RateDirection) []string {
	return append([]string(nil), fc.statements[regime][rate]...)
}

// Generate picks a statement and then draws the chair's confidence from
// the range for the volatility state, rounded to two decimals. Exactly two
// draws are taken from rng.
func (fc *FedChair) Generate(macro market.MacroState, rng *rand.Rand) FedStatement {
	pool := fc.statements[macro.Regime][macro.Rate]
	statement := pool[market.Pick(len(pool), rng)]

	bounds := confidenceRanges[macro.Volatility]
	confidence := round2(market.Uniform(bounds[0], bounds[1], rng))

	return FedStatement{
		Statement:  statement,
		PolicyBias: policyBias[macro.Rate],
		Confidence: confidence,
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
