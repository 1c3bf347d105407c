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
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"github.com/penny-vault/pv-arena/market"
	"github.com/penny-vault/pv-arena/portfolio"
)

// Attack names the vulnerability a short seller went after
type Attack string

const (
	AttackConcentration      Attack = "concentration"
	AttackShortSqueeze       Attack = "short_squeeze"
	AttackRegimeMisalignment Attack = "regime_misalignment"
	AttackRateSensitivity    Attack = "rate_sensitivity"
	AttackMomentumReversal   Attack = "momentum_reversal"
)

// weight thresholds in percent
const (
	concentrationThreshold   = 40.0
	squeezeThreshold         = -10.0
	misalignmentThreshold    = 25.0
	rateSensitivityThreshold = 30.0
	momentumThreshold        = 25.0
	momentumStreak           = 2
)

// ShortThesis is a public attack on the player's positioning
type ShortThesis struct {
	Target     market.Sector `json:"target"`
	Attack     Attack        `json:"attack"`
	Critique   string        `json:"critique"`
	Conviction float64       `json:"conviction"`
}

// ShortSeller scans an allocation for the single most exploitable weakness
type ShortSeller struct {
	rateSensitivity []string
	concentration   map[market.Sector][]string
	squeeze         map[market.Sector][]string
	misalignment    map[market.Sector][]string
	momentum        map[market.Sector][]string
}

// NewShortSeller returns a short seller using the built-in critique pools
func NewShortSeller() *ShortSeller {
	return defaultShortSeller
}

// ParseShortSeller loads critique pools from TOML. Each sector keyed pool
// must cover every sector.
func ParseShortSeller(data []byte) (*ShortSeller, error) {
	var doc struct {
		RateSensitivity []string            `toml:"rate_sensitivity"`
		Concentration   map[string][]string `toml:"concentration"`
		Squeeze         map[string][]string `toml:"squeeze"`
		Misalignment    map[string][]string `toml:"misalignment"`
		Momentum        map[string][]string `toml:"momentum"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: short seller: %s", ErrInvalidTemplate, err)
	}

	if len(doc.RateSensitivity) == 0 {
		return nil, fmt.Errorf("%w: short seller %s critique", ErrMissingTemplate, AttackRateSensitivity)
	}

	ss := &ShortSeller{rateSensitivity: doc.RateSensitivity}
	var err error
	if ss.concentration, err = sectorPools(AttackConcentration, doc.Concentration); err != nil {
		return nil, err
	}
	if ss.squeeze, err = sectorPools(AttackShortSqueeze, doc.Squeeze); err != nil {
		return nil, err
	}
	if ss.misalignment, err = sectorPools(AttackRegimeMisalignment, doc.Misalignment); err != nil {
		return nil, err
	}
	if ss.momentum, err = sectorPools(AttackMomentumReversal, doc.Momentum); err != nil {
		return nil, err
	}
	return ss, nil
}

func sectorPools(attack Attack, raw map[string][]string) (map[market.Sector][]string, error) {
	pools := make(map[market.Sector][]string, len(market.Sectors))
	for k, v := range raw {
		sector, err := market.ParseSector(k)
		if err != nil {
			return nil, fmt.Errorf("%w: short seller %s critique: %s", ErrInvalidTemplate, attack, err)
		}
		pools[sector] = v
	}
	for _, s := range market.Sectors {
		if len(pools[s]) == 0 {
			return nil, fmt.Errorf("%w: short seller %s critique for %s", ErrMissingTemplate, attack, s)
		}
	}
	return pools, nil
}

// Analyze runs the vulnerability checks in priority order and returns the
// first one that finds something, or nil. At most one draw is taken from
// rng and only when a thesis is produced. history holds the weeks played
// before this one.
func (ss *ShortSeller) Analyze(alloc market.Allocation, macro market.MacroState, history *portfolio.History, rng *rand.Rand) *ShortThesis {
	checks := []func() *ShortThesis{
		func() *ShortThesis { return ss.concentrationAttack(alloc, rng) },
		func() *ShortThesis { return ss.squeezeAttack(alloc, macro, rng) },
		func() *ShortThesis { return ss.misalignmentAttack(alloc, macro, rng) },
		func() *ShortThesis { return ss.rateAttack(alloc, macro, rng) },
		func() *ShortThesis { return ss.momentumAttack(alloc, history, rng) },
	}
	for _, check := range checks {
		if thesis := check(); thesis != nil {
			log.Debug().Str("Attack", string(thesis.Attack)).Str("Target", string(thesis.Target)).Float64("Conviction", thesis.Conviction).Msg("short seller found a target")
			return thesis
		}
	}
	return nil
}

// conviction interpolates linearly from base by span as severity goes from
// 0 to 1, rounded to two decimals and capped
func conviction(severity, base, span, ceiling float64) float64 {
	return math.Min(round2(base+severity*span), ceiling)
}

func pickCritique(pool []string, rng *rand.Rand) string {
	return pool[market.Pick(len(pool), rng)]
}

func (ss *ShortSeller) concentrationAttack(alloc market.Allocation, rng *rand.Rand) *ShortThesis {
	for _, s := range market.Sectors {
		w := math.Abs(alloc.Weight(s))
		if w > concentrationThreshold {
			severity := (w - concentrationThreshold) / 60.0
			return &ShortThesis{
				Target:     s,
				Attack:     AttackConcentration,
				Critique:   pickCritique(ss.concentration[s], rng),
				Conviction: conviction(severity, 0.60, 0.35, 0.95),
			}
		}
	}
	return nil
}

func (ss *ShortSeller) squeezeAttack(alloc market.Allocation, macro market.MacroState, rng *rand.Rand) *ShortThesis {
	if macro.Regime != market.Bull && macro.Regime != market.Recovery {
		return nil
	}

	found := false
	var target market.Sector
	for _, s := range market.Sectors {
		w := alloc.Weight(s)
		if w < squeezeThreshold && (!found || w < alloc.Weight(target)) {
			target = s
			found = true
		}
	}
	if !found {
		return nil
	}

	severity := (math.Abs(alloc.Weight(target)) - 10.0) / 40.0
	return &ShortThesis{
		Target:     target,
		Attack:     AttackShortSqueeze,
		Critique:   pickCritique(ss.squeeze[target], rng),
		Conviction: conviction(severity, 0.55, 0.35, 0.90),
	}
}

func (ss *ShortSeller) misalignmentAttack(alloc market.Allocation, macro market.MacroState, rng *rand.Rand) *ShortThesis {
	if macro.Regime != market.Recession && macro.Regime != market.Bear {
		return nil
	}

	found := false
	var target market.Sector
	for _, s := range market.Cyclicals {
		w := alloc.Weight(s)
		if w > misalignmentThreshold && (!found || w > alloc.Weight(target)) {
			target = s
			found = true
		}
	}
	if !found {
		return nil
	}

	severity := (alloc.Weight(target) - misalignmentThreshold) / 75.0
	return &ShortThesis{
		Target:     target,
		Attack:     AttackRegimeMisalignment,
		Critique:   pickCritique(ss.misalignment[target], rng),
		Conviction: conviction(severity, 0.55, 0.35, 0.90),
	}
}

func (ss *ShortSeller) rateAttack(alloc market.Allocation, macro market.MacroState, rng *rand.Rand) *ShortThesis {
	if macro.Rate != market.Rising {
		return nil
	}
	w := alloc.Weight(market.Tech)
	if w <= rateSensitivityThreshold {
		return nil
	}

	severity := (w - rateSensitivityThreshold) / 70.0
	return &ShortThesis{
		Target:     market.Tech,
		Attack:     AttackRateSensitivity,
		Critique:   pickCritique(ss.rateSensitivity, rng),
		Conviction: conviction(severity, 0.50, 0.40, 0.90),
	}
}

func (ss *ShortSeller) momentumAttack(alloc market.Allocation, history *portfolio.History, rng *rand.Rand) *ShortThesis {
	if history.Len() < momentumStreak {
		return nil
	}
	recent := history.Recent(momentumStreak)

	for _, s := range market.Sectors {
		streak := true
		for _, week := range recent {
			if week.AdjustedReturns[s] <= 0 {
				streak = false
				break
			}
		}
		if !streak {
			continue
		}

		w := alloc.Weight(s)
		if w < momentumThreshold {
			continue
		}

		severity := (w - momentumThreshold) / 75.0
		return &ShortThesis{
			Target:     s,
			Attack:     AttackMomentumReversal,
			Critique:   pickCritique(ss.momentum[s], rng),
			Conviction: conviction(severity, 0.50, 0.30, 0.80),
		}
	}
	return nil
}
