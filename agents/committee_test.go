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

var _ = Describe("Risk committee", func() {
	var (
		committee agents.RiskAgent
		calm      market.MacroState
		state     portfolio.State
		history   *portfolio.History
	)

	BeforeEach(func() {
		var err error
		committee, err = agents.NewRiskAgent(agents.KindRules)
		Expect(err).To(BeNil())
		calm = macro(market.Bull, market.NormalVol, market.Stable)
		state = portfolio.NewState(100_000)
		history = portfolio.NewHistory(100_000)
	})

	It("should reject an unknown agent kind", func() {
		_, err := agents.NewRiskAgent("llm")
		Expect(errors.Is(err, agents.ErrUnknownAgentKind)).To(BeTrue())
	})

	It("should find an equal weight allocation in a calm bull market prudent", func() {
		assessment := committee.Evaluate(market.EqualWeight(), calm, state, history)
		Expect(assessment.Score).To(BeNumerically("<=", 3))
		Expect(assessment.Warnings).To(BeEmpty())
		Expect(assessment.Critique).To(HavePrefix("The committee finds your allocation prudent."))
		Expect(assessment.Critique).To(HaveSuffix("Overall risk assessment: 1/10."))
	})

	It("should score a 70% single sector bet at 4 or more", func() {
		assessment := committee.Evaluate(alloc(70, 0, 0, 30, 0), calm, state, history)
		Expect(assessment.Score).To(BeNumerically(">=", 4))
		Expect(assessment.Warnings).To(ContainElement(ContainSubstring("extreme concentration")))
	})

	It("should be deterministic", func() {
		a := alloc(50, -20, 10, 30, 20)
		stressed := macro(market.Recession, market.CrisisVol, market.Rising)
		first := committee.Evaluate(a, stressed, state, history)
		second := committee.Evaluate(a, stressed, state, history)
		Expect(second).To(Equal(first))
	})

	It("should clamp the score at 10", func() {
		a := alloc(95, 0, -50, 0, 55)
		assessment := committee.Evaluate(a, macro(market.Recession, market.CrisisVol, market.Rising), state, history)
		Expect(assessment.Score).To(Equal(10))
		Expect(assessment.Critique).To(HavePrefix("The committee is alarmed"))
	})

	It("should warn when the portfolio is well below its peak", func() {
		history.Append(portfolio.WeekResult{Week: 1, ValueBefore: 100_000, ValueAfter: 80_000})
		state.TotalValue = 80_000
		assessment := committee.Evaluate(market.EqualWeight(), calm, state, history)
		Expect(assessment.Warnings).To(ContainElement(ContainSubstring("-20.0% from peak")))
	})

	It("should not penalize a small drawdown", func() {
		history.Append(portfolio.WeekResult{Week: 1, ValueBefore: 100_000, ValueAfter: 90_000})
		state.TotalValue = 90_000
		assessment := committee.Evaluate(market.EqualWeight(), calm, state, history)
		Expect(assessment.Warnings).To(BeEmpty())
	})

	DescribeTable("individual rules",
		func(a market.Allocation, m market.MacroState, expected string) {
			assessment := committee.Evaluate(a, m, state, history)
			Expect(assessment.Warnings).To(ContainElement(ContainSubstring(expected)))
			Expect(assessment.Critique).To(ContainSubstring(expected))
			Expect(assessment.Score).To(BeNumerically(">=", 1))
			Expect(assessment.Score).To(BeNumerically("<=", 10))
		},
		Entry("extreme concentration", alloc(70, 0, 0, 30, 0), macro(market.Bull, market.NormalVol, market.Stable), "Tech long at 70% -- extreme concentration"),
		Entry("high concentration", alloc(10, 10, 10, 45, 25), macro(market.Bull, market.NormalVol, market.Stable), "Consumer Staples long at 45% -- high concentration"),
		Entry("short concentration", alloc(50, 0, -45, 50, 45), macro(market.Recovery, market.NormalVol, market.Stable), "Financials short at 45%"),
		Entry("recession cyclicals", alloc(25, 20, 0, 35, 20), macro(market.Recession, market.NormalVol, market.Stable), "Cyclical exposure (65%) is high for a recession regime."),
		Entry("volatility exposure", alloc(40, 15, 15, 15, 15), macro(market.Bull, market.HighVol, market.Stable), "High volatility environment"),
		Entry("rate sensitivity", alloc(40, 15, 15, 15, 15), macro(market.Bull, market.NormalVol, market.Rising), "Heavy tech (40%) during rising rates"),
		Entry("extreme leverage", alloc(50, -25, -25, 45, 40), macro(market.Recovery, market.NormalVol, market.Stable), "CRITICAL: Gross exposure at 185%"),
		Entry("elevated leverage", alloc(40, -25, -10, 40, 30), macro(market.Recovery, market.NormalVol, market.Stable), "WARNING: Gross exposure at 145%"),
		Entry("short squeeze", alloc(30, -10, 20, 30, 30), macro(market.Recovery, market.CrisisVol, market.Stable), "Short positions (Energy) during high volatility"),
		Entry("counter-trend short", alloc(30, -10, 20, 30, 30), macro(market.Bull, market.NormalVol, market.Stable), "Shorting (Energy) in a bull market"),
		Entry("cash drag", alloc(8, 8, 8, 8, 8), macro(market.Bull, market.NormalVol, market.Stable), "Holding 60% cash"),
	)

	It("should give a diversification point back without going below 1", func() {
		// 28% tech under rising rates triggers nothing, so the bonus has no effect
		assessment := committee.Evaluate(alloc(28, 18, 18, 18, 18), macro(market.Bull, market.NormalVol, market.Rising), state, history)
		Expect(assessment.Score).To(Equal(1))

		// the bonus is taken before the leverage penalty is added
		assessment = committee.Evaluate(alloc(30, -30, 30, 30, 30), macro(market.Recovery, market.NormalVol, market.Stable), state, history)
		Expect(assessment.Score).To(Equal(2))
		Expect(assessment.Warnings).To(ContainElement(ContainSubstring("elevated leverage")))
	})
})
