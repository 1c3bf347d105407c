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

package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"github.com/penny-vault/pv-arena/market"
	"github.com/penny-vault/pv-arena/rival"
	"github.com/penny-vault/pv-arena/rival/strategy"
)

var (
	ErrNoPilot = errors.New("season request needs exactly one of an allocation or an autopilot strategy")
)

// pilotSeedOffset separates the autopilot's random stream from the season's
// so that letting a strategy play does not shift the market draws
const pilotSeedOffset = 0x9e3779b97f4a7c15

// SeasonRequest describes a headless season. Exactly one of Allocation or
// Autopilot must be set: a fixed allocation is held every week, an
// autopilot names a rival strategy that plays in the player's seat.
type SeasonRequest struct {
	Config     Config             `json:"config"`
	Allocation *market.Allocation `json:"allocation,omitempty"`
	Autopilot  string             `json:"autopilot,omitempty"`
}

// Pilot chooses the player's allocation each week of a headless season
type Pilot interface {
	Choose(briefing *Briefing, session *Session) (market.Allocation, error)
}

// FixedPilot holds the same allocation all season
type FixedPilot struct {
	Allocation market.Allocation
}

func (fp FixedPilot) Choose(*Briefing, *Session) (market.Allocation, error) {
	return fp.Allocation, nil
}

// StrategyPilot lets a rival strategy play the player's book
type StrategyPilot struct {
	Info     *strategy.StrategyInfo
	strategy strategy.Strategy
	rng      *rand.Rand
}

// NewStrategyPilot builds a pilot from a registered rival strategy. Its
// noise is drawn from its own stream derived from seed.
func NewStrategyPilot(shortcode string, seed uint64) (*StrategyPilot, error) {
	info, err := rival.Lookup(shortcode)
	if err != nil {
		return nil, err
	}
	strat, err := info.New()
	if err != nil {
		return nil, err
	}
	return &StrategyPilot{
		Info:     info,
		strategy: strat,
		rng:      market.NewRand(seed ^ pilotSeedOffset),
	}, nil
}

func (sp *StrategyPilot) Choose(briefing *Briefing, session *Session) (market.Allocation, error) {
	return sp.strategy.Allocate(briefing.Macro, session.History(), sp.rng)
}

// Pilot resolves the request into the pilot that will play it. A fixed
// allocation must satisfy the request's exposure limits.
func (req SeasonRequest) Pilot() (Pilot, error) {
	switch {
	case req.Allocation != nil && req.Autopilot == "":
		// a decoded allocation has only been checked structurally
		checked, err := market.NewAllocation(req.Allocation.Weights(), req.Config.Limits)
		if err != nil {
			return nil, err
		}
		return FixedPilot{Allocation: checked}, nil
	case req.Allocation == nil && req.Autopilot != "":
		return NewStrategyPilot(req.Autopilot, req.Config.Seed)
	default:
		return nil, ErrNoPilot
	}
}

// RunSeason plays an entire season without a human in the loop
func RunSeason(ctx context.Context, req SeasonRequest, opts ...Option) (*Summary, error) {
	pilot, err := req.Pilot()
	if err != nil {
		return nil, err
	}

	session, err := NewSession(req.Config, opts...)
	if err != nil {
		return nil, err
	}

	return Play(ctx, session, pilot)
}

// Play drives session to the end of the season with pilot choosing every
// allocation
func Play(ctx context.Context, session *Session, pilot Pilot) (*Summary, error) {
	for !session.Complete() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		briefing, err := session.Open(ctx)
		if err != nil {
			return nil, err
		}

		alloc, err := pilot.Choose(briefing, session)
		if err != nil {
			log.Error().Err(err).Int("Week", briefing.Week).Msg("pilot could not choose an allocation")
			return nil, fmt.Errorf("week %d: %w", briefing.Week, err)
		}

		if _, err := session.Commit(ctx, alloc); err != nil {
			return nil, err
		}
	}

	return session.Finish(ctx)
}
