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

package rival

import (
	"math"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"github.com/penny-vault/pv-arena/market"
	"github.com/penny-vault/pv-arena/portfolio"
	"github.com/penny-vault/pv-arena/rival/strategy"
)

// WeekResult is one week of a rival's season
type WeekResult struct {
	Name        string            `json:"name"`
	Strategy    string            `json:"strategy"`
	Allocation  market.Allocation `json:"allocation"`
	Return      float64           `json:"return"`
	ValueBefore float64           `json:"valueBefore"`
	Value       float64           `json:"value"`
}

// Competitor runs one rival strategy through a season against the same
// returns the player earns
type Competitor struct {
	Info   *strategy.StrategyInfo
	Value  float64
	Values []float64

	strategy strategy.Strategy
}

// NewCompetitor starts the named rival with startingCash
func NewCompetitor(shortcode string, startingCash float64) (*Competitor, error) {
	info, err := Lookup(shortcode)
	if err != nil {
		return nil, err
	}
	strat, err := info.New()
	if err != nil {
		return nil, err
	}
	return &Competitor{
		Info:     info,
		Value:    startingCash,
		Values:   []float64{startingCash},
		strategy: strat,
	}, nil
}

// Decide asks the rival's strategy for this week's allocation without
// advancing the rival's book
func (c *Competitor) Decide(macro market.MacroState, history *portfolio.History, rng *rand.Rand) (market.Allocation, error) {
	return c.strategy.Allocate(macro, history, rng)
}

// ProcessWeek has the rival decide with the weeks played so far and then
// earn this week's adjusted returns. history must not yet contain the week
// being processed.
func (c *Competitor) ProcessWeek(macro market.MacroState, adjusted market.SectorReturns, history *portfolio.History, rng *rand.Rand) (WeekResult, error) {
	alloc, err := c.Decide(macro, history, rng)
	if err != nil {
		log.Error().Err(err).Str("Strategy", c.Info.Shortcode).Int("Week", macro.Week).Msg("rival could not allocate")
		return WeekResult{}, err
	}

	ret := adjusted.PortfolioReturn(alloc)
	before := c.Value
	c.Value *= 1 + ret
	c.Values = append(c.Values, c.Value)

	log.Debug().Str("Rival", c.Info.Name).Int("Week", macro.Week).Float64("Return", ret).Float64("Value", c.Value).Msg("rival processed week")

	return WeekResult{
		Name:        c.Info.Name,
		Strategy:    c.Info.Shortcode,
		Allocation:  alloc,
		Return:      roundTo(ret, 6),
		ValueBefore: roundTo(before, 2),
		Value:       roundTo(c.Value, 2),
	}, nil
}

// ScoreCard summarizes the rival's season so far
func (c *Competitor) ScoreCard(riskFreeRate float64) portfolio.ScoreCard {
	return portfolio.NewScoreCard(c.Values, riskFreeRate)
}

func roundTo(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(x*scale) / scale
}
