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

// Package career tracks a player's record across seasons and awards titles
// for sustained performance.
package career

import (
	"math"
	"time"

	"github.com/penny-vault/pv-arena/portfolio"
)

// Title is a career rank
type Title string

const (
	RetailSpeculator        Title = "Retail Speculator"
	JuniorPM                Title = "Junior PM"
	MacroOperator           Title = "Macro Operator"
	InstitutionalStrategist Title = "Institutional Strategist"
	LegendaryAllocator      Title = "Legendary Allocator"
)

// Titles in ascending order of prestige
var Titles = []Title{RetailSpeculator, JuniorPM, MacroOperator, InstitutionalStrategist, LegendaryAllocator}

// Rank is the position of t in Titles, or -1 for an unknown title
func (t Title) Rank() int {
	for ii, title := range Titles {
		if title == t {
			return ii
		}
	}
	return -1
}

// Profile is a player's lifetime record
type Profile struct {
	Player        string    `json:"player"`
	Title         Title     `json:"title"`
	SeasonsPlayed int       `json:"seasonsPlayed"`
	LifetimeCAGR  float64   `json:"lifetimeCagr"`
	BestSharpe    float64   `json:"bestSharpe"`
	WorstDrawDown float64   `json:"worstDrawDown"`
	TotalPnL      float64   `json:"totalPnl"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewProfile starts a career with no seasons
func NewProfile(player string) Profile {
	return Profile{
		Player:    player,
		Title:     RetailSpeculator,
		UpdatedAt: time.Now(),
	}
}

// ComputeTitle returns the highest title whose requirements are all met
func ComputeTitle(p Profile) Title {
	switch {
	case p.SeasonsPlayed >= 10 && p.BestSharpe > 1.5 && p.WorstDrawDown > -0.25:
		return LegendaryAllocator
	case p.SeasonsPlayed >= 5 && p.BestSharpe > 1.0:
		return InstitutionalStrategist
	case p.SeasonsPlayed >= 3 && p.LifetimeCAGR > 0:
		return MacroOperator
	case p.SeasonsPlayed >= 1:
		return JuniorPM
	default:
		return RetailSpeculator
	}
}

// Update folds a completed season into the profile and returns the new
// profile; p is not modified. Lifetime CAGR is the mean of every season's
// CAGR. A worst drawdown of exactly zero is treated as unset and replaced
// by the season's drawdown.
func Update(p Profile, card portfolio.ScoreCard) Profile {
	seasons := p.SeasonsPlayed + 1

	cagr := card.CAGR
	if seasons > 1 {
		cagr = (p.LifetimeCAGR*float64(p.SeasonsPlayed) + card.CAGR) / float64(seasons)
	}

	worst := card.MaxDrawDown
	if p.WorstDrawDown != 0 {
		worst = math.Min(p.WorstDrawDown, card.MaxDrawDown)
	}

	updated := Profile{
		Player:        p.Player,
		SeasonsPlayed: seasons,
		LifetimeCAGR:  round(cagr, 4),
		BestSharpe:    round(math.Max(p.BestSharpe, card.SharpeRatio), 4),
		WorstDrawDown: round(worst, 4),
		TotalPnL:      round(p.TotalPnL+card.ProfitLoss(), 2),
		UpdatedAt:     time.Now(),
	}
	updated.Title = ComputeTitle(updated)
	return updated
}

// Promoted reports whether after carries a higher title than before
func Promoted(before, after Profile) bool {
	return after.Title.Rank() > before.Title.Rank()
}

func round(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(x*scale) / scale
}
