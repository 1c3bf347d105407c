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

// Package game runs a season week by week. A Session owns the random
// stream and every piece of season state; each week is opened, assessed
// any number of times, and then committed.
package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/exp/rand"

	"github.com/penny-vault/pv-arena/agents"
	"github.com/penny-vault/pv-arena/events"
	"github.com/penny-vault/pv-arena/market"
	"github.com/penny-vault/pv-arena/observability/opentelemetry"
	"github.com/penny-vault/pv-arena/portfolio"
	"github.com/penny-vault/pv-arena/rival"
)

var (
	ErrSeasonComplete   = errors.New("season is complete")
	ErrSeasonInProgress = errors.New("season is still in progress")
	ErrTurnNotOpen      = errors.New("no week is open")
	ErrTurnAlreadyOpen  = errors.New("week is already open")
)

// Briefing is everything the player sees before choosing an allocation
type Briefing struct {
	Week       int               `json:"week"`
	TotalWeeks int               `json:"totalWeeks"`
	Macro      market.MacroState `json:"macro"`
	Events     []events.Event    `json:"events"`
	Narrative  agents.Narrative  `json:"narrative"`
	Portfolio  portfolio.State   `json:"portfolio"`
}

// Turn is the outcome of a committed week
type Turn struct {
	Result    portfolio.WeekResult  `json:"result"`
	Risk      agents.RiskAssessment `json:"risk"`
	Short     *agents.ShortThesis   `json:"short,omitempty"`
	Rival     rival.WeekResult      `json:"rival"`
	Narrative agents.Narrative      `json:"narrative"`
}

// Summary is the end of season report
type Summary struct {
	ID             string                    `json:"id"`
	Player         string                    `json:"player"`
	Seed           uint64                    `json:"seed"`
	ScoreCard      portfolio.ScoreCard       `json:"scoreCard"`
	Expanded       portfolio.ExpandedMetrics `json:"expanded"`
	RivalName      string                    `json:"rivalName"`
	RivalScoreCard portfolio.ScoreCard       `json:"rivalScoreCard"`
	BeatRival      bool                      `json:"beatRival"`
	History        *portfolio.History        `json:"history"`
}

// Option customizes a Session
type Option func(*Session)

// WithTransitioner replaces the Markov regime engine, e.g. with a
// market.FixedPath for scripted scenarios
func WithTransitioner(t market.Transitioner) Option {
	return func(s *Session) {
		s.transitioner = t
	}
}

// WithCatalog replaces the built-in shock catalog. Regimes the catalog
// gives no weight to see no events.
func WithCatalog(c events.Catalog) Option {
	return func(s *Session) {
		s.catalog = c
	}
}

// Session is one season in progress. It is not safe for concurrent use.
//
// All randomness is drawn from a single stream seeded by Config.Seed in a
// fixed order each week: the macro transition and event selection, the Fed
// statement and headlines in Open; the short seller, the sector returns and
// the rival's noise in Commit. Replaying the same seed and allocations
// reproduces the season exactly.
type Session struct {
	ID     uuid.UUID
	Config Config

	rng          *rand.Rand
	transitioner market.Transitioner
	generator    *market.Generator
	catalog      events.Catalog
	desk         *agents.NarrativeDesk
	risk         agents.RiskAgent
	competitor   *rival.Competitor

	macro    market.MacroState
	state    portfolio.State
	history  *portfolio.History
	week     int
	open     bool
	events   []events.Event
	briefing agents.Narrative
}

// NewSession validates cfg and sets up a season at week 0
func NewSession(cfg Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	riskAgent, err := agents.NewRiskAgent(cfg.RiskAgent)
	if err != nil {
		return nil, err
	}

	competitor, err := rival.NewCompetitor(cfg.Rival, cfg.StartingCash)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:           uuid.New(),
		Config:       cfg,
		rng:          market.NewRand(cfg.Seed),
		transitioner: market.MarkovChain{},
		generator:    market.NewGenerator(cfg.Bounds),
		catalog:      events.Default(),
		desk:         agents.NewNarrativeDesk(),
		risk:         riskAgent,
		competitor:   competitor,
		macro:        cfg.InitialMacro(),
		state:        portfolio.NewState(cfg.StartingCash),
		history:      portfolio.NewHistory(cfg.StartingCash),
	}

	for _, opt := range opts {
		opt(s)
	}

	log.Debug().Str("SessionID", s.ID.String()).Uint64("Seed", cfg.Seed).Int("Weeks", cfg.TotalWeeks).Str("Rival", competitor.Info.Name).Msg("new session")
	return s, nil
}

// Week is the last week opened (0 before the season starts)
func (s *Session) Week() int {
	return s.week
}

// Complete is true once every week has been committed
func (s *Session) Complete() bool {
	return s.week >= s.Config.TotalWeeks && !s.open
}

// Macro is the macro state currently in force
func (s *Session) Macro() market.MacroState {
	return s.macro
}

// Portfolio is the portfolio as of the last committed week
func (s *Session) Portfolio() portfolio.State {
	return s.state
}

// History is the record of committed weeks
func (s *Session) History() *portfolio.History {
	return s.history
}

// RivalName is the display name of the rival fund
func (s *Session) RivalName() string {
	return s.competitor.Info.Name
}

// Open starts the next week: the macro state advances, shock events are
// drawn and the desk writes the week's Fed statement and headlines
func (s *Session) Open(ctx context.Context) (*Briefing, error) {
	_, span := otel.Tracer(opentelemetry.Name).Start(ctx, "Session.Open")
	defer span.End()
	span.SetAttributes(opentelemetry.SeasonAttributes(s.ID.String(), s.Config.Player, s.Config.Seed)...)

	if s.open {
		return nil, ErrTurnAlreadyOpen
	}
	if s.week >= s.Config.TotalWeeks {
		return nil, ErrSeasonComplete
	}

	s.week++
	s.macro = s.transitioner.Advance(s.macro, s.rng).WithWeek(s.week)
	s.events = events.Select(s.macro, s.rng, s.catalog)
	s.briefing = s.desk.Briefing(s.macro, s.events, s.rng)
	s.open = true

	span.SetAttributes(
		attribute.Int("week", s.week),
		attribute.String("regime", s.macro.Regime.String()),
		attribute.Int("events", len(s.events)),
	)

	log.Debug().Str("SessionID", s.ID.String()).Int("Week", s.week).Str("Macro", s.macro.String()).Int("Events", len(s.events)).Msg("opened week")

	return &Briefing{
		Week:       s.week,
		TotalWeeks: s.Config.TotalWeeks,
		Macro:      s.macro,
		Events:     s.events,
		Narrative:  s.briefing,
		Portfolio:  s.state,
	}, nil
}

// Assess asks the risk committee about a proposed allocation. It draws no
// randomness and may be called any number of times before Commit.
func (s *Session) Assess(alloc market.Allocation) (agents.RiskAssessment, error) {
	if !s.open {
		return agents.RiskAssessment{}, ErrTurnNotOpen
	}
	alloc, err := s.withinLimits(alloc)
	if err != nil {
		return agents.RiskAssessment{}, err
	}
	return s.risk.Evaluate(alloc, s.macro, s.state, s.history), nil
}

// withinLimits re-checks alloc against the season's exposure limits. An
// allocation may have been validated under looser limits or decoded from
// JSON, which only checks its structure.
func (s *Session) withinLimits(alloc market.Allocation) (market.Allocation, error) {
	if alloc.IsZero() {
		return market.Allocation{}, fmt.Errorf("%w: allocation was never validated", market.ErrInvalidAllocation)
	}
	return market.NewAllocation(alloc.Weights(), s.Config.Limits)
}

// Commit locks in alloc for the open week. The short seller reviews it,
// the week's returns are drawn and realized, and the rival plays the same
// week with only the weeks before it to go on.
func (s *Session) Commit(ctx context.Context, alloc market.Allocation) (*Turn, error) {
	_, span := otel.Tracer(opentelemetry.Name).Start(ctx, "Session.Commit")
	defer span.End()
	span.SetAttributes(opentelemetry.SeasonAttributes(s.ID.String(), s.Config.Player, s.Config.Seed)...)

	if !s.open {
		return nil, ErrTurnNotOpen
	}
	alloc, err := s.withinLimits(alloc)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	risk := s.risk.Evaluate(alloc, s.macro, s.state, s.history)
	short := s.desk.Scan(alloc, s.macro, s.history, s.rng)

	raw := s.generator.Generate(s.macro, s.rng)
	effects := make([]market.EventEffect, len(s.events))
	for ii, evt := range s.events {
		effects[ii] = evt
	}
	adjusted := s.generator.ApplyEvents(raw, effects...)

	rivalWeek, err := s.competitor.ProcessWeek(s.macro, adjusted, s.history, s.rng)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	before := s.state.TotalValue
	next, ret := s.state.Apply(alloc, adjusted, s.week)
	result := portfolio.WeekResult{
		Week:            s.week,
		Macro:           s.macro,
		Allocation:      alloc,
		RawReturns:      raw,
		Events:          s.events,
		AdjustedReturns: adjusted,
		PortfolioReturn: ret,
		ValueBefore:     before,
		ValueAfter:      next.TotalValue,
	}
	s.state = next
	s.history.Append(result)
	s.open = false

	narrative := s.briefing
	narrative.Short = short

	span.SetAttributes(
		attribute.Int("week", s.week),
		attribute.Float64("return", ret),
		attribute.Int("risk", risk.Score),
	)

	log.Debug().Str("SessionID", s.ID.String()).Int("Week", s.week).Float64("Return", ret).Float64("Value", next.TotalValue).Float64("RivalValue", rivalWeek.Value).Int("Risk", risk.Score).Msg("committed week")

	return &Turn{
		Result:    result,
		Risk:      risk,
		Short:     short,
		Rival:     rivalWeek,
		Narrative: narrative,
	}, nil
}

// Finish scores a completed season
func (s *Session) Finish(ctx context.Context) (*Summary, error) {
	_, span := otel.Tracer(opentelemetry.Name).Start(ctx, "Session.Finish")
	defer span.End()
	span.SetAttributes(opentelemetry.SeasonAttributes(s.ID.String(), s.Config.Player, s.Config.Seed)...)

	if !s.Complete() {
		return nil, fmt.Errorf("%w: week %d of %d", ErrSeasonInProgress, s.week, s.Config.TotalWeeks)
	}

	card := portfolio.NewScoreCard(s.history.WeeklyValues, s.Config.RiskFreeRate)
	rivalCard := s.competitor.ScoreCard(s.Config.RiskFreeRate)
	summary := &Summary{
		ID:             s.ID.String(),
		Player:         s.Config.Player,
		Seed:           s.Config.Seed,
		ScoreCard:      card,
		Expanded:       portfolio.NewExpandedMetrics(s.history.WeeklyValues, s.history.Allocations(), s.Config.RollingWindow, s.Config.RiskFreeRate),
		RivalName:      s.competitor.Info.Name,
		RivalScoreCard: rivalCard,
		BeatRival:      card.FinalValue > rivalCard.FinalValue,
		History:        s.history,
	}

	span.SetAttributes(attribute.Float64("final_value", card.FinalValue), attribute.Float64("sharpe", card.SharpeRatio))
	log.Debug().Str("SessionID", summary.ID).Str("Player", summary.Player).Float64("FinalValue", card.FinalValue).Float64("Sharpe", card.SharpeRatio).Bool("BeatRival", summary.BeatRival).Msg("season complete")

	return summary, nil
}
