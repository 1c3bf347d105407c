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

package cmd

import (
	"time"

	"github.com/spf13/viper"

	"github.com/penny-vault/pv-arena/agents"
	"github.com/penny-vault/pv-arena/game"
	"github.com/penny-vault/pv-arena/market"
	"github.com/penny-vault/pv-arena/portfolio"
)

func init() {
	defaults := game.DefaultConfig()
	viper.SetDefault("game.starting_cash", defaults.StartingCash)
	viper.SetDefault("game.total_weeks", defaults.TotalWeeks)
	viper.SetDefault("game.quick_weeks", game.QuickWeeks)
	viper.SetDefault("game.initial_regime", string(defaults.InitialRegime))
	viper.SetDefault("game.initial_volatility", string(defaults.InitialVolatility))
	viper.SetDefault("game.initial_rate", string(defaults.InitialRate))
	viper.SetDefault("game.risk_agent", string(defaults.RiskAgent))
	viper.SetDefault("market.min_return", defaults.Bounds.Min)
	viper.SetDefault("market.max_return", defaults.Bounds.Max)
	viper.SetDefault("market.max_gross_exposure", defaults.Limits.MaxGrossExposure)
	viper.SetDefault("market.max_short", defaults.Limits.MaxShort)
	viper.SetDefault("analytics.rolling_window", portfolio.DefaultRollingWindow)
	viper.SetDefault("analytics.risk_free_rate", defaults.RiskFreeRate)
	viper.SetDefault("cache.local_size", 64)
	viper.SetDefault("cache.ttl", 86400)
}

// configFromViper assembles the season configuration from flags, the
// environment and the config file
func configFromViper() game.Config {
	cfg := game.Config{
		Player:       viper.GetString("game.player"),
		Seed:         viper.GetUint64("game.seed"),
		StartingCash: viper.GetFloat64("game.starting_cash"),
		TotalWeeks:   viper.GetInt("game.total_weeks"),
		Bounds: market.Bounds{
			Min: viper.GetFloat64("market.min_return"),
			Max: viper.GetFloat64("market.max_return"),
		},
		Limits: market.Limits{
			MaxGrossExposure: viper.GetFloat64("market.max_gross_exposure"),
			MaxShort:         viper.GetFloat64("market.max_short"),
		},
		InitialRegime:     market.Regime(viper.GetString("game.initial_regime")),
		InitialVolatility: market.VolatilityState(viper.GetString("game.initial_volatility")),
		InitialRate:       market.RateDirection(viper.GetString("game.initial_rate")),
		RollingWindow:     viper.GetInt("analytics.rolling_window"),
		RiskFreeRate:      viper.GetFloat64("analytics.risk_free_rate"),
		Rival:             viper.GetString("game.rival"),
		RiskAgent:         agents.Kind(viper.GetString("game.risk_agent")),
	}

	if weeks := viper.GetInt("game.weeks"); weeks > 0 {
		cfg.TotalWeeks = weeks
	} else if viper.GetBool("game.quick") {
		cfg.TotalWeeks = viper.GetInt("game.quick_weeks")
	}

	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	return cfg
}
