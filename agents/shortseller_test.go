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

package agents_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-arena/agents"
	"github.com/penny-vault/pv-arena/market"
	"github.com/penny-vault/pv-arena/portfolio"
)

func streakWeek(week int, winner market.Sector) portfolio.WeekResult {
	returns := market.SectorReturns{}
	for _, s := range market.Sectors {
		returns[s] = -0.01
	}
	returns[winner] = 0.01
	return portfolio.WeekResult{Week: week, AdjustedReturns: returns, ValueBefore: 100_000, ValueAfter: 100_000}
}

var _ = Describe("Short seller", func() {
	var (
		seller  *agents.ShortSeller
		history *portfolio.History
		calm    market.MacroState
	)

	BeforeEach(func() {
		seller = agents.NewShortSeller()
		history = portfolio.NewHistory(100_000)
		calm = macro(market.Bull, market.NormalVol, market.Stable)
	})

	It("should leave an equal weight allocation alone without touching the generator", func() {
		rng := market.NewRand(42)
		Expect(seller.Analyze(market.EqualWeight(), calm, history, rng)).To(BeNil())
		Expect(rng.Uint64()).To(Equal(market.NewRand(42).Uint64()))
	})

	It("should attack a 41% position", func() {
		thesis := seller.Analyze(alloc(41, 14.75, 14.75, 14.75, 14.75), calm, history, market.NewRand(1))
		Expect(thesis).ToNot(BeNil())
		Expect(thesis.Attack).To(Equal(agents.AttackConcentration))
		Expect(thesis.Target).To(Equal(market.Tech))
		Expect(thesis.Conviction).To(BeNumerically(">=", 0.60))
		Expect(thesis.Critique).ToNot(BeEmpty())
	})

	It("should cap concentration conviction at 0.95", func() {
		thesis := seller.Analyze(alloc(100, 0, 0, 0, 0), calm, history, market.NewRand(1))
		Expect(thesis.Conviction).To(Equal(0.95))
	})

	It("should not attack a 40% position for concentration", func() {
		thesis := seller.Analyze(alloc(40, 15, 15, 15, 15), calm, history, market.NewRand(1))
		Expect(thesis).To(BeNil())
	})

	It("should go after the largest short in a bull market", func() {
		thesis := seller.Analyze(alloc(30, -15, -25, 40, 30), calm, history, market.NewRand(1))
		Expect(thesis).ToNot(BeNil())
		Expect(thesis.Attack).To(Equal(agents.AttackShortSqueeze))
		Expect(thesis.Target).To(Equal(market.Financials))
		Expect(thesis.Conviction).To(Equal(0.68))
	})

	It("should ignore shorts in a bear market", func() {
		thesis := seller.Analyze(alloc(20, -15, 20, 40, 20), macro(market.Bear, market.NormalVol, market.Stable), history, market.NewRand(1))
		Expect(thesis).To(BeNil())
	})

	It("should attack the heaviest cyclical in a recession", func() {
		thesis := seller.Analyze(alloc(30, 35, 0, 15, 20), macro(market.Recession, market.NormalVol, market.Stable), history, market.NewRand(1))
		Expect(thesis).ToNot(BeNil())
		Expect(thesis.Attack).To(Equal(agents.AttackRegimeMisalignment))
		Expect(thesis.Target).To(Equal(market.Energy))
		Expect(thesis.Conviction).To(Equal(0.60))
	})

	It("should attack tech when rates are rising", func() {
		thesis := seller.Analyze(alloc(35, 16.25, 16.25, 16.25, 16.25), macro(market.Bull, market.NormalVol, market.Rising), history, market.NewRand(1))
		Expect(thesis).ToNot(BeNil())
		Expect(thesis.Attack).To(Equal(agents.AttackRateSensitivity))
		Expect(thesis.Target).To(Equal(market.Tech))
		Expect(thesis.Conviction).To(Equal(0.53))
	})

	It("should attack a heavy position in a sector on a winning streak", func() {
		history.Append(streakWeek(1, market.Energy))
		history.Append(streakWeek(2, market.Energy))
		thesis := seller.Analyze(alloc(17.5, 30, 17.5, 17.5, 17.5), calm, history, market.NewRand(1))
		Expect(thesis).ToNot(BeNil())
		Expect(thesis.Attack).To(Equal(agents.AttackMomentumReversal))
		Expect(thesis.Target).To(Equal(market.Energy))
		Expect(thesis.Conviction).To(Equal(0.52))
	})

	It("should need two weeks of history for a streak", func() {
		history.Append(streakWeek(1, market.Energy))
		thesis := seller.Analyze(alloc(17.5, 30, 17.5, 17.5, 17.5), calm, history, market.NewRand(1))
		Expect(thesis).To(BeNil())
	})

	It("should check concentration before anything else", func() {
		thesis := seller.Analyze(alloc(50, -20, 10, 30, 20), macro(market.Recovery, market.NormalVol, market.Rising), history, market.NewRand(1))
		Expect(thesis.Attack).To(Equal(agents.AttackConcentration))
	})

	It("should reject a critique file that misses a sector", func() {
		_, err := agents.ParseShortSeller([]byte(`
rate_sensitivity = ["Rates up, tech down."]

[concentration]
tech = ["Too much tech."]
`))
		Expect(errors.Is(err, agents.ErrMissingTemplate)).To(BeTrue())
	})
})
