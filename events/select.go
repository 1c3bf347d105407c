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

package events

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"

	"github.com/penny-vault/pv-arena/market"
)

// countWeights is the probability of 0, 1 or 2 events in a week
var countWeights = map[market.VolatilityState][]float64{
	market.LowVol:    {0.60, 0.30, 0.10},
	market.NormalVol: {0.45, 0.40, 0.15},
	market.HighVol:   {0.25, 0.45, 0.30},
	market.CrisisVol: {0.10, 0.40, 0.50},
}

// Event is a shock that occurred in a specific week
type Event struct {
	Name          string                    `json:"name"`
	Description   string                    `json:"description"`
	SectorEffects map[market.Sector]float64 `json:"sectorEffects"`
	VolImpact     float64                   `json:"volImpact"`
	Week          int                       `json:"week"`
}

// Effects satisfies market.EventEffect
func (e Event) Effects() map[market.Sector]float64 {
	return e.SectorEffects
}

// CountProbabilities returns the probability of drawing 0, 1 or 2 events
func CountProbabilities(vol market.VolatilityState) []float64 {
	return append([]float64(nil), countWeights[vol]...)
}

// Select draws this week's shocks. The event count is drawn first from the
// volatility state's distribution, then that many templates are drawn with
// replacement weighted by their affinity for the current regime. A template
// drawn twice is kept once and is not redrawn, so a week may end up with
// fewer events than the count that was drawn. A catalog with no weight for
// the regime yields no events.
func Select(macro market.MacroState, rng *rand.Rand, catalog Catalog) []Event {
	count := market.WeightedChoice(countWeights[macro.Volatility], rng)
	if count == 0 || len(catalog) == 0 {
		return []Event{}
	}

	// catalogs built by hand can leave a regime with nothing to draw
	weights := catalog.Weights(macro.Regime)
	if floats.Sum(weights) <= 0 {
		log.Debug().Int("Week", macro.Week).Str("Regime", macro.Regime.String()).Msg("no event can occur in this regime")
		return []Event{}
	}

	picks := make([]int, count)
	for ii := range picks {
		picks[ii] = market.WeightedChoice(weights, rng)
	}

	seen := make(map[string]bool, count)
	selected := make([]Event, 0, count)
	for _, idx := range picks {
		tmpl := catalog[idx]
		if seen[tmpl.Name] {
			continue
		}
		seen[tmpl.Name] = true
		selected = append(selected, tmpl.Instantiate(macro.Week))
	}

	log.Debug().Int("Week", macro.Week).Str("Regime", macro.Regime.String()).Int("Drawn", count).Int("Kept", len(selected)).Msg("selected shock events")
	return selected
}

// Instantiate creates an event from the template for the given week
func (t Template) Instantiate(week int) Event {
	effects := make(map[market.Sector]float64, len(t.SectorEffects))
	for s, e := range t.SectorEffects {
		effects[s] = e
	}
	return Event{
		Name:          t.Name,
		Description:   t.Description,
		SectorEffects: effects,
		VolImpact:     t.VolImpact,
		Week:          week,
	}
}
