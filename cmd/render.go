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
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"

	"github.com/penny-vault/pv-arena/agents"
	"github.com/penny-vault/pv-arena/career"
	"github.com/penny-vault/pv-arena/events"
	"github.com/penny-vault/pv-arena/game"
	"github.com/penny-vault/pv-arena/market"
	"github.com/penny-vault/pv-arena/portfolio"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

func signed(format string, x float64) string {
	s := fmt.Sprintf(format, x)
	switch {
	case x > 0:
		return green(s)
	case x < 0:
		return red(s)
	default:
		return s
	}
}

func percent(x float64) string {
	return signed("%+.2f%%", x*100)
}

func dollars(x float64) string {
	return fmt.Sprintf("$%s", commas(x))
}

// commas formats x with two decimals and thousands separators
func commas(x float64) string {
	s := fmt.Sprintf("%.2f", x)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac := s[:len(s)-3], s[len(s)-3:]

	var sb strings.Builder
	for ii, ch := range whole {
		if ii > 0 && (len(whole)-ii)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(ch)
	}
	out := sb.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	return table
}

func renderIntro(w io.Writer, cfg game.Config, rivalName string) {
	fmt.Fprintln(w, bold("PV ARENA"))
	fmt.Fprintf(w, "%s, you have %s and %d weeks. %s is running money against you.\n",
		cfg.Player, dollars(cfg.StartingCash), cfg.TotalWeeks, rivalName)
	fmt.Fprintf(w, "%s\n\n", faint(fmt.Sprintf("seed %d", cfg.Seed)))
}

func renderCareer(w io.Writer, p career.Profile) {
	fmt.Fprintf(w, "%s %s, %d seasons played\n", bold("Career:"), cyan(string(p.Title)), p.SeasonsPlayed)
	if p.SeasonsPlayed > 0 {
		fmt.Fprintf(w, "  lifetime CAGR %s  best Sharpe %.2f  worst drawdown %s  total P&L %s\n",
			percent(p.LifetimeCAGR), p.BestSharpe, percent(p.WorstDrawDown), signed("$%.2f", p.TotalPnL))
	}
	fmt.Fprintln(w)
}

func renderPromotion(w io.Writer, before, after career.Profile) {
	if career.Promoted(before, after) {
		fmt.Fprintf(w, "%s %s -> %s\n\n", bold(green("PROMOTED!")), before.Title, after.Title)
	}
}

func renderBriefing(w io.Writer, b *game.Briefing, startingCash float64) {
	fmt.Fprintf(w, "%s\n", bold(fmt.Sprintf("=== Week %d of %d ===", b.Week, b.TotalWeeks)))
	renderHeadlines(w, b.Narrative.Headlines)
	renderMacro(w, b.Macro)
	renderFed(w, b.Narrative.Fed)
	renderEvents(w, b.Events)
	renderPortfolio(w, b.Portfolio, startingCash)
}

func renderHeadlines(w io.Writer, headlines []agents.Headline) {
	fmt.Fprintln(w, bold("Headlines"))
	for _, h := range headlines {
		marker := "*"
		switch h.Sentiment {
		case "bullish":
			marker = green("+")
		case "bearish":
			marker = red("-")
		case "mixed":
			marker = yellow("~")
		}
		fmt.Fprintf(w, "  %s %s\n", marker, h.Text)
	}
	fmt.Fprintln(w)
}

func renderMacro(w io.Writer, macro market.MacroState) {
	fmt.Fprintf(w, "%s %s regime, %s volatility, rates %s\n", bold("Macro:"),
		cyan(macro.Regime.String()), macro.Volatility, macro.Rate)
	fmt.Fprintf(w, "  %s\n\n", macro.Description())
}

func renderFed(w io.Writer, fed agents.FedStatement) {
	fmt.Fprintf(w, "%s \"%s\"\n", bold("Fed:"), fed.Statement)
	fmt.Fprintf(w, "  policy bias %s, market confidence %.0f%%\n\n", fed.PolicyBias, fed.Confidence*100)
}

func renderEvents(w io.Writer, evts []events.Event) {
	if len(evts) == 0 {
		fmt.Fprintf(w, "%s none this week\n\n", bold("Shocks:"))
		return
	}
	fmt.Fprintln(w, bold("Shocks"))
	for _, evt := range evts {
		effects := []string{}
		for _, s := range market.Sectors {
			if e, ok := evt.SectorEffects[s]; ok {
				effects = append(effects, fmt.Sprintf("%s %s", s.DisplayName(), percent(e)))
			}
		}
		fmt.Fprintf(w, "  %s: %s\n    %s\n", yellow(evt.Name), evt.Description, strings.Join(effects, ", "))
	}
	fmt.Fprintln(w)
}

func renderPortfolio(w io.Writer, state portfolio.State, startingCash float64) {
	pnl := state.TotalValue - startingCash
	fmt.Fprintf(w, "%s %s (%s, %s)\n", bold("Portfolio:"), dollars(state.TotalValue),
		signed("$%+.2f", pnl), percent(pnl/startingCash))

	table := newTable(w, "Sector", "Position")
	for _, s := range market.Sectors {
		table.Append([]string{s.DisplayName(), dollars(state.Holdings[s])})
	}
	table.Append([]string{"Cash", dollars(state.Cash)})
	table.Render()
	fmt.Fprintln(w)
}

func renderRisk(w io.Writer, risk agents.RiskAssessment) {
	score := fmt.Sprintf("%d/10", risk.Score)
	switch {
	case risk.Score >= 7:
		score = red(score)
	case risk.Score >= 4:
		score = yellow(score)
	default:
		score = green(score)
	}
	fmt.Fprintf(w, "%s %s\n  %s\n", bold("Risk committee:"), score, risk.Critique)
	for _, warning := range risk.Warnings {
		fmt.Fprintf(w, "  ! %s\n", warning)
	}
	fmt.Fprintln(w)
}

func renderShort(w io.Writer, thesis *agents.ShortThesis) {
	if thesis == nil {
		fmt.Fprintf(w, "%s no one is circling your book this week\n\n", bold("Short sellers:"))
		return
	}
	fmt.Fprintf(w, "%s targeting %s (%s, conviction %.0f%%)\n  \"%s\"\n\n", bold(red("Short report:")),
		thesis.Target.DisplayName(), strings.ReplaceAll(string(thesis.Attack), "_", " "), thesis.Conviction*100, thesis.Critique)
}

func renderWeek(w io.Writer, turn *game.Turn) {
	res := turn.Result
	fmt.Fprintln(w, bold(fmt.Sprintf("Week %d results", res.Week)))

	table := newTable(w, "Sector", "Market", "After shocks", "Weight", "Contribution")
	for _, s := range market.Sectors {
		weight := res.Allocation.Weight(s)
		table.Append([]string{
			s.DisplayName(),
			percent(res.RawReturns[s]),
			percent(res.AdjustedReturns[s]),
			fmt.Sprintf("%.1f%%", weight),
			percent(weight / 100 * res.AdjustedReturns[s]),
		})
	}
	table.Render()

	fmt.Fprintf(w, "Portfolio return %s: %s -> %s\n", percent(res.PortfolioReturn), dollars(res.ValueBefore), dollars(res.ValueAfter))
	if res.ValueAfter == 0 {
		fmt.Fprintln(w, red("Your leverage wiped out the fund."))
	}

	rv := turn.Rival
	fmt.Fprintf(w, "%s %s returned %s, now at %s\n\n", bold("Rival:"), rv.Name, percent(rv.Return), dollars(rv.Value))
}

func renderSummary(w io.Writer, summary *game.Summary) {
	card := summary.ScoreCard
	rivalCard := summary.RivalScoreCard

	fmt.Fprintln(w, bold("=== Season complete ==="))
	table := newTable(w, "", summary.Player, summary.RivalName)
	table.AppendBulk([][]string{
		{"Final value", dollars(card.FinalValue), dollars(rivalCard.FinalValue)},
		{"Total return", signed("%+.2f%%", card.TotalReturnPct), signed("%+.2f%%", rivalCard.TotalReturnPct)},
		{"CAGR", percent(card.CAGR), percent(rivalCard.CAGR)},
		{"Max drawdown", percent(card.MaxDrawDown), percent(rivalCard.MaxDrawDown)},
		{"Volatility", fmt.Sprintf("%.2f%%", card.AnnualizedVolatility*100), fmt.Sprintf("%.2f%%", rivalCard.AnnualizedVolatility*100)},
		{"Sharpe", fmt.Sprintf("%.2f", card.SharpeRatio), fmt.Sprintf("%.2f", rivalCard.SharpeRatio)},
		{"Grade", card.Grade, rivalCard.Grade},
	})
	table.Render()
	fmt.Fprintln(w)

	if summary.BeatRival {
		fmt.Fprintf(w, "%s You beat %s.\n\n", green("WIN."), summary.RivalName)
	} else {
		fmt.Fprintf(w, "%s %s finished ahead of you.\n\n", red("LOSS."), summary.RivalName)
	}

	renderExpanded(w, summary)
}

func renderExpanded(w io.Writer, summary *game.Summary) {
	ex := summary.Expanded
	fmt.Fprintln(w, bold("Analytics"))
	fmt.Fprintf(w, "  rolling volatility %.2f%%  rolling Sharpe %.2f  current drawdown %s\n",
		ex.CurrentRollingVol*100, ex.CurrentRollingSharpe, percent(ex.CurrentDrawDown))
	fmt.Fprintf(w, "  concentration (HHI) %.2f  gross exposure %.2fx  average gross exposure %.2fx\n",
		ex.CurrentConcentration, ex.CurrentGrossExposure, ex.AverageGrossExposure)

	if len(ex.DrawDowns) > 0 {
		table := newTable(w, "Drawdown", "Peak week", "Trough week", "Recovered")
		for _, dd := range ex.DrawDowns {
			recovered := "never"
			if dd.Recovery >= 0 {
				recovered = fmt.Sprintf("week %d", dd.Recovery)
			}
			table.Append([]string{percent(dd.LossPercent), fmt.Sprintf("%d", dd.Begin), fmt.Sprintf("%d", dd.End), recovered})
		}
		table.Render()
	}

	if summary.History != nil && len(summary.History.WeeklyValues) > 1 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, asciigraph.Plot(summary.History.WeeklyValues,
			asciigraph.Height(10),
			asciigraph.Caption("portfolio value by week")))
	}
	fmt.Fprintln(w)
}
