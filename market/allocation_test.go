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

package market_test

import (
	"errors"

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-arena/market"
)

func weights(tech, energy, fin, cons, indus float64) map[market.Sector]float64 {
	return map[market.Sector]float64{
		market.Tech:        tech,
		market.Energy:      energy,
		market.Financials:  fin,
		market.Consumer:    cons,
		market.Industrials: indus,
	}
}

var _ = Describe("Allocation", func() {
	Context("with a fully invested long-only allocation", func() {
		It("should be accepted", func() {
			alloc, err := market.NewAllocation(weights(20, 20, 20, 20, 20), market.DefaultLimits)
			Expect(err).To(BeNil())
			Expect(alloc.GrossExposure()).Should(BeNumerically("~", 1.0))
			Expect(alloc.NetExposure()).Should(BeNumerically("~", 1.0))
			Expect(alloc.CashWeight()).Should(BeNumerically("~", 0.0))
			Expect(alloc.HasShorts()).To(BeFalse())
		})
	})

	Context("with a leveraged long-short allocation", func() {
		It("should be accepted at exactly the limits", func() {
			alloc, err := market.NewAllocation(weights(75, -50, 25, 25, 25), market.DefaultLimits)
			Expect(err).To(BeNil())
			Expect(alloc.GrossExposure()).Should(BeNumerically("~", 2.0))
			Expect(alloc.Shorts()).To(Equal([]market.Sector{market.Energy}))
			Expect(alloc.MaxAbsWeight()).Should(BeNumerically("~", 0.75))
		})
	})

	Context("with partial cash", func() {
		It("should report the cash weight", func() {
			alloc, err := market.NewAllocation(weights(10, 10, 10, 10, 10), market.DefaultLimits)
			Expect(err).To(BeNil())
			Expect(alloc.CashWeight()).Should(BeNumerically("~", 0.5))
		})
	})

	Context("with weights inside the rounding tolerance", func() {
		It("should accept a sum of 100.005", func() {
			_, err := market.NewAllocation(weights(20.005, 20, 20, 20, 20), market.DefaultLimits)
			Expect(err).To(BeNil())
		})
	})

	DescribeTable("rejected allocations",
		func(w map[market.Sector]float64, expected error) {
			_, err := market.NewAllocation(w, market.DefaultLimits)
			Expect(err).ToNot(BeNil())
			Expect(errors.Is(err, market.ErrInvalidAllocation)).To(BeTrue())
			Expect(errors.Is(err, expected)).To(BeTrue())
		},
		Entry("when the net exceeds 100%", weights(30, 30, 30, 10, 10), market.ErrNetExposure),
		Entry("when the net is negative", weights(-20, 5, 5, 5, 0), market.ErrNetExposure),
		Entry("when a short is beyond the limit", weights(60, -51, 30, 30, 31), market.ErrShortLimit),
		Entry("when gross exposure exceeds the limit", weights(100, -50, -50, 50, 50), market.ErrGrossExposure),
		Entry("when a sector is missing", map[market.Sector]float64{market.Tech: 50, market.Energy: 50}, market.ErrMissingSector),
		Entry("when an unknown sector is present", map[market.Sector]float64{
			market.Tech: 20, market.Energy: 20, market.Financials: 20, market.Consumer: 20,
			market.Industrials: 10, market.Sector("healthcare"): 10,
		}, market.ErrExtraSector),
	)

	It("should not share the caller's map", func() {
		w := weights(20, 20, 20, 20, 20)
		alloc := market.MustAllocation(w)
		w[market.Tech] = 90
		Expect(alloc.Weight(market.Tech)).Should(BeNumerically("~", 20.0))

		cp := alloc.Weights()
		cp[market.Tech] = 90
		Expect(alloc.Weight(market.Tech)).Should(BeNumerically("~", 20.0))
	})

	Describe("when parsing an allocation string", func() {
		It("should default unnamed sectors to zero", func() {
			alloc, err := market.ParseAllocation("tech=40, Energy=20%, consumer staples=10", market.DefaultLimits)
			Expect(err).To(BeNil())
			Expect(alloc.Weight(market.Tech)).Should(BeNumerically("~", 40.0))
			Expect(alloc.Weight(market.Energy)).Should(BeNumerically("~", 20.0))
			Expect(alloc.Weight(market.Consumer)).Should(BeNumerically("~", 10.0))
			Expect(alloc.Weight(market.Financials)).Should(BeNumerically("~", 0.0))
			Expect(alloc.CashWeight()).Should(BeNumerically("~", 0.3))
		})

		It("should reject unknown sectors", func() {
			_, err := market.ParseAllocation("healthcare=40", market.DefaultLimits)
			Expect(errors.Is(err, market.ErrUnknownSector)).To(BeTrue())
		})

		It("should reject malformed pairs", func() {
			_, err := market.ParseAllocation("tech:40", market.DefaultLimits)
			Expect(errors.Is(err, market.ErrInvalidAllocation)).To(BeTrue())
		})
	})

	Describe("when encoding to JSON", func() {
		It("should restore the same weights", func() {
			alloc := market.MustAllocation(weights(60, -10, 20, 20, 10))
			data, err := json.Marshal(alloc)
			Expect(err).To(BeNil())

			var restored market.Allocation
			Expect(json.Unmarshal(data, &restored)).To(Succeed())
			Expect(restored.Weights()).To(Equal(alloc.Weights()))
		})

		It("should refuse a record that does not cover every sector", func() {
			var restored market.Allocation
			err := json.Unmarshal([]byte(`{"tech": 100}`), &restored)
			Expect(errors.Is(err, market.ErrMissingSector)).To(BeTrue())
		})
	})
})
