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

package game_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-arena/agents"
	"github.com/penny-vault/pv-arena/game"
	"github.com/penny-vault/pv-arena/market"
	"github.com/penny-vault/pv-arena/rival"
)

var _ = Describe("Config", func() {
	It("has sensible defaults", func() {
		cfg := game.DefaultConfig()
		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.StartingCash).To(Equal(1_000_000.0))
		Expect(cfg.TotalWeeks).To(Equal(26))
		Expect(cfg.Rival).To(Equal("momentum"))
		Expect(cfg.InitialMacro()).To(Equal(market.MacroState{Regime: market.Bull, Volatility: market.NormalVol, Rate: market.Stable, Week: 0}))
	})

	DescribeTable("rejects unusable settings",
		func(mutate func(*game.Config)) {
			cfg := game.DefaultConfig()
			mutate(&cfg)
			err := cfg.Validate()
			Expect(errors.Is(err, game.ErrInvalidConfig)).To(BeTrue(), "got %v", err)
			_, err = game.NewSession(cfg)
			Expect(errors.Is(err, game.ErrInvalidConfig)).To(BeTrue())
		},
		Entry("no cash", func(c *game.Config) { c.StartingCash = 0 }),
		Entry("no weeks", func(c *game.Config) { c.TotalWeeks = 0 }),
		Entry("inverted bounds", func(c *game.Config) { c.Bounds = market.Bounds{Min: 0.3, Max: -0.3} }),
		Entry("total loss bound", func(c *game.Config) { c.Bounds = market.Bounds{Min: -1.5, Max: 0.3} }),
		Entry("gross exposure under 100%", func(c *game.Config) { c.Limits.MaxGrossExposure = 80 }),
		Entry("positive short limit", func(c *game.Config) { c.Limits.MaxShort = 10 }),
		Entry("unknown regime", func(c *game.Config) { c.InitialRegime = "boom" }),
		Entry("unknown volatility", func(c *game.Config) { c.InitialVolatility = "wild" }),
		Entry("unknown rate direction", func(c *game.Config) { c.InitialRate = "sideways" }),
		Entry("empty rolling window", func(c *game.Config) { c.RollingWindow = 0 }),
	)

	It("rejects an unknown rival", func() {
		cfg := game.DefaultConfig()
		cfg.Rival = "yolo"
		_, err := game.NewSession(cfg)
		Expect(errors.Is(err, rival.ErrUnknownStrategy)).To(BeTrue())
	})

	It("rejects an unknown risk agent", func() {
		cfg := game.DefaultConfig()
		cfg.RiskAgent = "llm"
		_, err := game.NewSession(cfg)
		Expect(errors.Is(err, agents.ErrUnknownAgentKind)).To(BeTrue())
	})
})
