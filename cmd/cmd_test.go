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
	"bytes"
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/penny-vault/pv-arena/game"
	"github.com/penny-vault/pv-arena/market"
)

var _ = Describe("Prompts", func() {
	DescribeTable("parsing allocations",
		func(line string, tech, consumer float64) {
			alloc, err := parseAllocation(line, market.DefaultLimits)
			Expect(err).To(BeNil())
			Expect(alloc.Weight(market.Tech)).To(Equal(tech))
			Expect(alloc.Weight(market.Consumer)).To(Equal(consumer))
		},
		Entry("positional", "40 20 20 10 10", 40.0, 10.0),
		Entry("comma separated with percent signs", "40%,20%,20%,10%,10%", 40.0, 10.0),
		Entry("sector pairs", "tech=50, consumer=25", 50.0, 25.0),
		Entry("shorts", "60 -20 20 20 20", 60.0, 20.0),
	)

	DescribeTable("rejecting allocations",
		func(line string) {
			_, err := parseAllocation(line, market.DefaultLimits)
			Expect(errors.Is(err, market.ErrInvalidAllocation)).To(BeTrue(), "got %v", err)
		},
		Entry("too few weights", "50 50"),
		Entry("not a number", "40 20 x 10 10"),
		Entry("over invested", "40 40 40 10 10"),
		Entry("short too deep", "100 -60 30 30 0"),
	)

	It("asks again until the allocation is valid", func() {
		out := &bytes.Buffer{}
		p := newPrompter(strings.NewReader("\nbanana\n90 90 0 0 0\n20 20 20 20 20\n"), out, market.DefaultLimits)
		alloc, err := p.Allocation(market.Allocation{})
		Expect(err).To(BeNil())
		Expect(alloc.Weight(market.Energy)).To(Equal(20.0))
		Expect(strings.Count(out.String(), "Invalid allocation")).To(Equal(2))
	})

	It("keeps the previous allocation on an empty line", func() {
		previous := market.EqualWeight()
		p := newPrompter(strings.NewReader("\n"), &bytes.Buffer{}, market.DefaultLimits)
		alloc, err := p.Allocation(previous)
		Expect(err).To(BeNil())
		Expect(alloc).To(Equal(previous))
	})

	It("reports closed input", func() {
		p := newPrompter(strings.NewReader(""), &bytes.Buffer{}, market.DefaultLimits)
		_, err := p.Allocation(market.Allocation{})
		Expect(errors.Is(err, ErrInputClosed)).To(BeTrue())
	})

	DescribeTable("confirmations",
		func(answer string, expected bool) {
			p := newPrompter(strings.NewReader(answer+"\n"), &bytes.Buffer{}, market.DefaultLimits)
			ok, err := p.Confirm("Revise?")
			Expect(err).To(BeNil())
			Expect(ok).To(Equal(expected))
		},
		Entry("y", "y", true),
		Entry("YES", "YES", true),
		Entry("no", "no", false),
		Entry("blank", "", false),
	)
})

var _ = Describe("Formatting", func() {
	DescribeTable("dollar amounts",
		func(x float64, expected string) {
			Expect(commas(x)).To(Equal(expected))
		},
		Entry("small", 12.5, "12.50"),
		Entry("thousands", 1234.5, "1,234.50"),
		Entry("millions", 1_000_000.0, "1,000,000.00"),
		Entry("negative", -98765.432, "-98,765.43"),
	)
})

var _ = Describe("Configuration", func() {
	AfterEach(func() {
		viper.Set("game.quick", false)
		viper.Set("game.weeks", 0)
		viper.Set("game.seed", 0)
	})

	It("starts from the defaults", func() {
		viper.Set("game.seed", 42)
		cfg := configFromViper()
		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.Seed).To(Equal(uint64(42)))
		Expect(cfg.TotalWeeks).To(Equal(game.DefaultTotalWeeks))
		Expect(cfg.StartingCash).To(Equal(game.DefaultStartingCash))
		Expect(cfg.Bounds).To(Equal(market.DefaultBounds))
		Expect(cfg.Limits).To(Equal(market.DefaultLimits))
	})

	It("picks a seed when none is given", func() {
		Expect(configFromViper().Seed).ToNot(BeZero())
	})

	It("shortens the season in quick mode unless weeks are given", func() {
		viper.Set("game.quick", true)
		Expect(configFromViper().TotalWeeks).To(Equal(game.QuickWeeks))
		viper.Set("game.weeks", 8)
		Expect(configFromViper().TotalWeeks).To(Equal(8))
	})
})

var _ = Describe("Playing a season", func() {
	var cfg game.Config

	BeforeEach(func() {
		cfg = game.DefaultConfig()
		cfg.Seed = 42
		cfg.TotalWeeks = game.QuickWeeks
	})

	It("plays every week and reports the result", func() {
		out := &bytes.Buffer{}
		in := strings.NewReader("20 20 20 20 20\n\n\n\n\n\n")
		Expect(playSeason(context.Background(), cfg, in, out, false)).To(Succeed())

		text := out.String()
		Expect(text).To(ContainSubstring("Week 1 of 3"))
		Expect(text).To(ContainSubstring("Week 3 results"))
		Expect(text).To(ContainSubstring("Season complete"))
		Expect(text).To(ContainSubstring("Velocity Capital"))
	})

	It("stops when the player walks away", func() {
		in := strings.NewReader("20 20 20 20 20\n")
		err := playSeason(context.Background(), cfg, in, &bytes.Buffer{}, false)
		Expect(errors.Is(err, ErrInputClosed)).To(BeTrue())
	})
})
