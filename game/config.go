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
	"errors"
	"fmt"

	"github.com/penny-vault/pv-arena/agents"
	"github.com/penny-vault/pv-arena/market"
	"github.com/penny-vault/pv-arena/portfolio"
)

var (
	ErrInvalidConfig = errors.New("invalid game configuration")
)

// Config holds everything needed to start a season. It is a plain value so
// the engine never depends on where the settings came from.
type Config struct {
	Player            string                 `json:"player" toml:"player"`
	Seed              uint64                 `json:"seed" toml:"seed"`
	StartingCash      float64                `json:"startingCash" toml:"starting_cash"`
	TotalWeeks        int                    `json:"totalWeeks" toml:"total_weeks"`
	Bounds            market.Bounds          `json:"bounds" toml:"bounds"`
	Limits            market.Limits          `json:"limits" toml:"limits"`
	InitialRegime     market.Regime          `json:"initialRegime" toml:"initial_regime"`
	InitialVolatility market.VolatilityState `json:"initialVolatility" toml:"initial_volatility"`
	InitialRate       market.RateDirection   `json:"initialRate" toml:"initial_rate"`
	RollingWindow     int                    `json:"rollingWindow" toml:"rolling_window"`
	RiskFreeRate      float64                `json:"riskFreeRate" toml:"risk_free_rate"`
	Rival             string                 `json:"rival" toml:"rival"`
	RiskAgent         agents.Kind            `json:"riskAgent" toml:"risk_agent"`
}

const (
	DefaultStartingCash = 1_000_000.0
	DefaultTotalWeeks   = 26
	QuickWeeks          = 3
)

// DefaultConfig is a 26 week season starting with $1,000,000 in a calm
// bull market against the momentum rival
func DefaultConfig() Config {
	return Config{
		Player:            "Player",
		StartingCash:      DefaultStartingCash,
		TotalWeeks:        DefaultTotalWeeks,
		Bounds:            market.DefaultBounds,
		Limits:            market.DefaultLimits,
		InitialRegime:     market.Bull,
		InitialVolatility: market.NormalVol,
		InitialRate:       market.Stable,
		RollingWindow:     portfolio.DefaultRollingWindow,
		RiskFreeRate:      0.0,
		Rival:             "momentum",
		RiskAgent:         agents.KindRules,
	}
}

// Validate checks the configuration for values the engine cannot run with
func (cfg Config) Validate() error {
	switch {
	case cfg.StartingCash <= 0:
		return fmt.Errorf("%w: starting cash must be positive, got %.2f", ErrInvalidConfig, cfg.StartingCash)
	case cfg.TotalWeeks < 1:
		return fmt.Errorf("%w: a season needs at least one week, got %d", ErrInvalidConfig, cfg.TotalWeeks)
	case cfg.Bounds.Min >= cfg.Bounds.Max:
		return fmt.Errorf("%w: return bounds [%.2f, %.2f] are empty", ErrInvalidConfig, cfg.Bounds.Min, cfg.Bounds.Max)
	case cfg.Bounds.Min <= -1:
		return fmt.Errorf("%w: minimum weekly return %.2f would lose more than everything", ErrInvalidConfig, cfg.Bounds.Min)
	case cfg.Limits.MaxGrossExposure < 100:
		return fmt.Errorf("%w: max gross exposure %.0f%% cannot hold a fully invested portfolio", ErrInvalidConfig, cfg.Limits.MaxGrossExposure)
	case cfg.Limits.MaxShort > 0:
		return fmt.Errorf("%w: max short %.0f%% must be zero or negative", ErrInvalidConfig, cfg.Limits.MaxShort)
	case cfg.RollingWindow < 1:
		return fmt.Errorf("%w: rolling window must be at least 1, got %d", ErrInvalidConfig, cfg.RollingWindow)
	}

	if _, err := market.ParseRegime(string(cfg.InitialRegime)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	if _, err := market.ParseVolatilityState(string(cfg.InitialVolatility)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	if _, err := market.ParseRateDirection(string(cfg.InitialRate)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	return nil
}

// InitialMacro is the macro state in force before week 1
func (cfg Config) InitialMacro() market.MacroState {
	return market.MacroState{
		Regime:     cfg.InitialRegime,
		Volatility: cfg.InitialVolatility,
		Rate:       cfg.InitialRate,
		Week:       0,
	}
}
