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

package portfolio_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-arena/market"
	"github.com/penny-vault/pv-arena/portfolio"
)

func alloc(tech, energy, fin, cons, indus float64) market.Allocation {
	return market.MustAllocation(map[market.Sector]float64{
		market.Tech:        tech,
		market.Energy:      energy,
		market.Financials:  fin,
		market.Consumer:    cons,
		market.Industrials: indus,
	})
}

var _ = Describe("Analytics", func() {
	Describe("rolling metrics", func() {
		var rets []float64

		BeforeEach(func() {
			rets = []float64{0.02, -0.01, 0.03, 0.01, -0.02, 0.04}
		})

		It("should produce one value per period", func() {
			Expect(portfolio.RollingVolatility(rets, 4)).To(HaveLen(len(rets)))
			Expect(portfolio.RollingSharpe(rets, 4, 0)).To(HaveLen(len(rets)))
		})

		It("should report 0 while the window has a single return", func() {
			Expect(portfolio.RollingVolatility(rets, 4)[0]).To(Equal(0.0))
			Expect(portfolio.RollingSharpe(rets, 4, 0)[0]).To(Equal(0.0))
		})

		It("should use a shorter window at the start of the series", func() {
			Expect(portfolio.RollingVolatility(rets, 4)[1]).Should(BeNumerically("~", portfolio.AnnualizedVolatility(rets[0:2]), 1e-12))
			Expect(portfolio.RollingVolatility(rets, 4)[2]).Should(BeNumerically("~", portfolio.AnnualizedVolatility(rets[0:3]), 1e-12))
		})

		It("should use the trailing window once it is full", func() {
			Expect(portfolio.RollingVolatility(rets, 4)[5]).Should(BeNumerically("~", portfolio.AnnualizedVolatility(rets[2:6]), 1e-12))
			Expect(portfolio.RollingSharpe(rets, 4, 0)[5]).Should(BeNumerically("~", portfolio.SharpeRatio(rets[2:6], 0), 1e-12))
		})

		It("should be empty for an empty series", func() {
			Expect(portfolio.RollingVolatility([]float64{}, 4)).To(BeEmpty())
			Expect(portfolio.RollingSharpe([]float64{}, 4, 0)).To(BeEmpty())
		})
	})

	Describe("draw down series", func() {
		It("should track the distance from the running peak", func() {
			dd := portfolio.DrawDownSeries([]float64{100, 120, 90, 130})
			Expect(dd[0]).To(Equal(0.0))
			Expect(dd[1]).To(Equal(0.0))
			Expect(dd[2]).Should(BeNumerically("~", -0.25))
			Expect(dd[3]).To(Equal(0.0))
		})

		It("should be 0 when the peak is not positive", func() {
			Expect(portfolio.DrawDownSeries([]float64{0, 0})).To(Equal([]float64{0, 0}))
		})
	})

	Describe("concentration", func() {
		It("should be 0.20 for equal weights", func() {
			Expect(portfolio.Concentration(market.EqualWeight())).Should(BeNumerically("~", 0.20, 1e-12))
		})

		It("should be 1.0 for a single sector", func() {
			Expect(portfolio.Concentration(alloc(100, 0, 0, 0, 0))).Should(BeNumerically("~", 1.0, 1e-12))
		})

		It("should count shorts by magnitude", func() {
			long := portfolio.Concentration(alloc(50, 50, 0, 0, 0))
			short := portfolio.Concentration(alloc(50, -50, 50, 0, 0))
			Expect(long).Should(BeNumerically("~", 0.5, 1e-12))
			Expect(short).Should(BeNumerically("~", 1.0/3.0, 1e-12))
		})

		It("should be 0 for all cash", func() {
			Expect(portfolio.Concentration(alloc(0, 0, 0, 0, 0))).To(Equal(0.0))
		})
	})

	Describe("expanded metrics", func() {
		It("should expose the latest value of each series", func() {
			values := []float64{1000, 1100, 1050, 1200, 1150}
			allocs := []market.Allocation{
				market.EqualWeight(),
				alloc(60, -20, 20, 20, 20),
				alloc(100, 0, 0, 0, 0),
				alloc(40, 0, 0, 0, 0),
			}
			m := portfolio.NewExpandedMetrics(values, allocs, portfolio.DefaultRollingWindow, 0)

			Expect(m.RollingVolatility).To(HaveLen(4))
			Expect(m.DrawDownSeries).To(HaveLen(5))
			Expect(m.ConcentrationScores).To(HaveLen(4))
			Expect(m.GrossExposureSeries).To(Equal([]float64{1.0, 1.4, 1.0, 0.4}))
			Expect(m.CurrentRollingVol).To(Equal(m.RollingVolatility[3]))
			Expect(m.CurrentRollingSharpe).To(Equal(m.RollingSharpe[3]))
			Expect(m.CurrentDrawDown).Should(BeNumerically("~", 1150.0/1200.0-1))
			Expect(m.CurrentConcentration).Should(BeNumerically("~", 1.0))
			Expect(m.CurrentGrossExposure).Should(BeNumerically("~", 0.4))
			Expect(m.AverageGrossExposure).Should(BeNumerically("~", 0.95))
			Expect(m.DrawDowns).To(HaveLen(2))
		})

		It("should default gross exposure to 1 with no allocations", func() {
			m := portfolio.NewExpandedMetrics([]float64{1000}, nil, 4, 0)
			Expect(m.CurrentGrossExposure).To(Equal(1.0))
			Expect(m.CurrentRollingVol).To(Equal(0.0))
			Expect(math.IsNaN(m.AverageGrossExposure)).To(BeFalse())
		})
	})
})
