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

package agents

import (
	"fmt"
	"math"
	"strings"

	"github.com/penny-vault/pv-arena/market"
	"github.com/penny-vault/pv-arena/portfolio"
)

const (
	minRiskScore = 1
	maxRiskScore = 10
)

// RulesCommittee scores risk with ten fixed rules. The score starts at 1,
// each triggered rule adds to it, a fully diversified allocation earns one
// point back, and the result is clamped to [1, 10].
type RulesCommittee struct{}

func (rc *RulesCommittee) Evaluate(alloc market.Allocation, macro market.MacroState, current portfolio.State, history *portfolio.History) RiskAssessment {
	score := minRiskScore
	warnings := []string{}
	fracs := alloc.Fractions()

	// concentration
	for _, s := range market.Sectors {
		w := fracs[s]
		abs := math.Abs(w)
		side := "long"
		if w < 0 {
			side = "short"
		}
		switch {
		case abs > 0.60:
			score += 3
			warnings = append(warnings, fmt.Sprintf("CRITICAL: %s %s at %.0f%% -- extreme concentration.", s.DisplayName(), side, abs*100))
		case abs > 0.40:
			score += 2
			warnings = append(warnings, fmt.Sprintf("WARNING: %s %s at %.0f%% -- high concentration.", s.DisplayName(), side, abs*100))
		}
	}

	// regime alignment; only long cyclical exposure counts
	longCyclical := 0.0
	for _, s := range market.Cyclicals {
		longCyclical += math.Max(0.0, fracs[s])
	}
	if macro.Regime == market.Recession && longCyclical > 0.60 {
		score += 2
		warnings = append(warnings, fmt.Sprintf("Cyclical exposure (%.0f%%) is high for a recession regime.", longCyclical*100))
	}

	// volatility exposure
	if macro.Volatility.Stressed() && alloc.MaxAbsWeight() > 0.35 {
		score++
		warnings = append(warnings, "High volatility environment -- consider diversifying.")
	}

	// rate sensitivity
	if macro.Rate == market.Rising && fracs[market.Tech] > 0.35 {
		score++
		warnings = append(warnings, fmt.Sprintf("Heavy tech (%.0f%%) during rising rates increases sensitivity.", fracs[market.Tech]*100))
	}

	// drawdown proximity
	if peak := history.Peak(); peak > 0 {
		dd := (current.TotalValue - peak) / peak
		if dd < -0.15 {
			score++
			warnings = append(warnings, fmt.Sprintf("Portfolio is %.1f%% from peak -- consider defensive positioning.", dd*100))
		}
	}

	// diversification bonus
	if alloc.MaxAbsWeight() <= 0.30 {
		score = max(minRiskScore, score-1)
	}

	// leverage
	gross := alloc.GrossExposure()
	switch {
	case gross > 1.80:
		score += 2
		warnings = append(warnings, fmt.Sprintf("CRITICAL: Gross exposure at %.0f%% -- extreme leverage amplifies losses.", gross*100))
	case gross > 1.40:
		score++
		warnings = append(warnings, fmt.Sprintf("WARNING: Gross exposure at %.0f%% -- elevated leverage risk.", gross*100))
	}

	// short squeeze
	if alloc.HasShorts() && macro.Volatility.Stressed() {
		score++
		warnings = append(warnings, fmt.Sprintf("Short positions (%s) during high volatility increase squeeze risk.", sectorList(alloc.Shorts())))
	}

	// counter-trend short
	if alloc.HasShorts() && macro.Regime == market.Bull {
		score++
		warnings = append(warnings, fmt.Sprintf("Shorting (%s) in a bull market is a counter-trend bet -- proceed with caution.", sectorList(alloc.Shorts())))
	}

	// cash drag
	if cash := alloc.CashWeight(); cash > 0.50 {
		score++
		warnings = append(warnings, fmt.Sprintf("Holding %.0f%% cash -- significant drag on returns. Consider deploying capital.", cash*100))
	}

	score = min(maxRiskScore, max(minRiskScore, score))
	return RiskAssessment{
		Score:    score,
		Critique: critique(score, warnings),
		Warnings: warnings,
	}
}

func critique(score int, warnings []string) string {
	var tone string
	switch {
	case score <= 3:
		tone = "The committee finds your allocation prudent."
	case score <= 6:
		tone = "The committee has some concerns about your positioning."
	case score <= 8:
		tone = "The committee strongly advises reconsidering this allocation."
	default:
		tone = "The committee is alarmed by this allocation's risk profile."
	}

	parts := make([]string, 0, len(warnings)+2)
	parts = append(parts, tone)
	parts = append(parts, warnings...)
	parts = append(parts, fmt.Sprintf("Overall risk assessment: %d/10.", score))
	return strings.Join(parts, " ")
}

func sectorList(sectors []market.Sector) string {
	names := make([]string, len(sectors))
	for ii, s := range sectors {
		names[ii] = s.DisplayName()
	}
	return strings.Join(names, ", ")
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
