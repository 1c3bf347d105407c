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

// Package portfolio tracks the player's capital through a season and
// computes the performance statistics reported at the end of it.
package portfolio

import (
	"math"

	"github.com/penny-vault/pv-arena/events"
	"github.com/penny-vault/pv-arena/market"
)

// State is a snapshot of the portfolio at the end of a week
type State struct {
	Cash       float64                   `json:"cash"`
	Holdings   map[market.Sector]float64 `json:"holdings"`
	TotalValue float64                   `json:"totalValue"`
	Week       int                       `json:"week"`
}

// NewState creates an all-cash portfolio for week 0
func NewState(cash float64) State {
	holdings := make(map[market.Sector]float64, len(market.Sectors))
	for _, s := range market.Sectors {
		holdings[s] = 0
	}
	return State{
		Cash:       cash,
		Holdings:   holdings,
		TotalValue: cash,
	}
}

// Apply realizes one week of returns on alloc and rebalances the proceeds
// back to alloc. The new value is floored at 0; a leveraged portfolio can be
// wiped out but never owes money. Apply returns the new state and the
// portfolio return for the week. s is not modified.
func (s State) Apply(alloc market.Allocation, adjusted market.SectorReturns, week int) (State, float64) {
	ret := adjusted.PortfolioReturn(alloc)
	value := math.Max(0.0, s.TotalValue*(1.0+ret))

	fracs := alloc.Fractions()
	holdings := make(map[market.Sector]float64, len(market.Sectors))
	for _, sector := range market.Sectors {
		holdings[sector] = value * fracs[sector]
	}

	return State{
		Cash:       value * alloc.CashWeight(),
		Holdings:   holdings,
		TotalValue: value,
		Week:       week,
	}, ret
}

// WeekResult is the immutable record of one played week
type WeekResult struct {
	Week            int                  `json:"week"`
	Macro           market.MacroState    `json:"macro"`
	Allocation      market.Allocation    `json:"allocation"`
	RawReturns      market.SectorReturns `json:"rawReturns"`
	Events          []events.Event       `json:"events"`
	AdjustedReturns market.SectorReturns `json:"adjustedReturns"`
	PortfolioReturn float64              `json:"portfolioReturn"`
	ValueBefore     float64              `json:"valueBefore"`
	ValueAfter      float64              `json:"valueAfter"`
}

// History is the ordered record of a season. WeeklyValues always has one
// more entry than Weeks: index 0 is the starting value.
type History struct {
	Weeks        []WeekResult `json:"weeks"`
	WeeklyValues []float64    `json:"weeklyValues"`
}

// NewHistory starts a season history at the initial portfolio value
func NewHistory(initial float64) *History {
	return &History{
		Weeks:        []WeekResult{},
		WeeklyValues: []float64{initial},
	}
}

// Append records a completed week
func (h *History) Append(result WeekResult) {
	h.Weeks = append(h.Weeks, result)
	h.WeeklyValues = append(h.WeeklyValues, result.ValueAfter)
}

// Len is the number of completed weeks
func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.Weeks)
}

// Recent returns up to the last n completed weeks, oldest first
func (h *History) Recent(n int) []WeekResult {
	if h == nil || n <= 0 {
		return []WeekResult{}
	}
	start := len(h.Weeks) - n
	if start < 0 {
		start = 0
	}
	return h.Weeks[start:]
}

// Peak is the highest weekly value seen so far, or 0 for an empty history
func (h *History) Peak() float64 {
	if h == nil || len(h.WeeklyValues) == 0 {
		return 0
	}
	peak := h.WeeklyValues[0]
	for _, v := range h.WeeklyValues[1:] {
		peak = math.Max(peak, v)
	}
	return peak
}

// Allocations lists the allocation held in each completed week
func (h *History) Allocations() []market.Allocation {
	if h == nil {
		return []market.Allocation{}
	}
	allocs := make([]market.Allocation, len(h.Weeks))
	for ii, week := range h.Weeks {
		allocs[ii] = week.Allocation
	}
	return allocs
}

// Returns is the series of weekly portfolio returns implied by the values
func (h *History) Returns() []float64 {
	if h == nil {
		return []float64{}
	}
	return PeriodReturns(h.WeeklyValues)
}
