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
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-arena/agents"
	"github.com/penny-vault/pv-arena/market"
)

var _ = Describe("Fed chair", func() {
	fed := agents.NewFedChair()

	It("should have at least five statements for every regime and rate direction", func() {
		for _, regime := range market.Regimes {
			for _, rate := range market.RateDirections {
				Expect(len(fed.Statements(regime, rate))).To(BeNumerically(">=", 5), "%s/%s", regime, rate)
			}
		}
	})

	DescribeTable("policy bias follows the rate direction",
		func(rate market.RateDirection, bias string) {
			rng := market.NewRand(7)
			statement := fed.Generate(macro(market.Bull, market.NormalVol, rate), rng)
			Expect(statement.PolicyBias).To(Equal(bias))
			Expect(fed.Statements(market.Bull, rate)).To(ContainElement(statement.Statement))
		},
		Entry("rising", market.Rising, "tightening"),
		Entry("stable", market.Stable, "neutral"),
		Entry("falling", market.Falling, "easing"),
	)

	DescribeTable("confidence is drawn from the volatility range",
		func(vol market.VolatilityState, low, high float64) {
			rng := market.NewRand(11)
			for ii := 0; ii < 200; ii++ {
				statement := fed.Generate(macro(market.Recovery, vol, market.Stable), rng)
				Expect(statement.Confidence).To(BeNumerically(">=", low))
				Expect(statement.Confidence).To(BeNumerically("<=", high))
				Expect(statement.Confidence*100).To(BeNumerically("~", math.Round(statement.Confidence*100), 1e-9))
			}
		},
		Entry("low", market.LowVol, 0.75, 0.95),
		Entry("normal", market.NormalVol, 0.60, 0.80),
		Entry("high", market.HighVol, 0.40, 0.65),
		Entry("crisis", market.CrisisVol, 0.20, 0.45),
	)

	It("should repeat itself for the same seed", func() {
		m := macro(market.Bear, market.HighVol, market.Falling)
		Expect(fed.Generate(m, market.NewRand(3))).To(Equal(fed.Generate(m, market.NewRand(3))))
	})

	It("should reject a template file with a missing pool", func() {
		_, err := agents.ParseFedStatements([]byte(`
[statements.bull]
rising = ["Rates are going up."]
`))
		Expect(errors.Is(err, agents.ErrMissingTemplate)).To(BeTrue())
	})

	It("should reject malformed TOML", func() {
		_, err := agents.ParseFedStatements([]byte(`[statements`))
		Expect(errors.Is(err, agents.ErrInvalidTemplate)).To(BeTrue())
	})
})
