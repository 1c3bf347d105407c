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

package strategy

import (
	"errors"
	"fmt"
	"math"

	"github.com/goccy/go-json"
	"golang.org/x/exp/rand"

	"github.com/penny-vault/pv-arena/market"
	"github.com/penny-vault/pv-arena/portfolio"
)

var (
	ErrInvalidArgument = errors.New("invalid strategy argument")
	ErrInvalidTargets  = errors.New("invalid strategy targets")
)

// Argument is a tunable strategy parameter. Default holds a JSON encoded
// value that is handed to the strategy factory.
type Argument struct {
	Name        string `json:"name" toml:"name"`
	Description string `json:"description" toml:"description"`
	Typecode    string `json:"typecode" toml:"typecode"`
	Default     string `json:"default" toml:"default"`
}

// StrategyInfo information about a rival strategy
type StrategyInfo struct {
	Name            string              `json:"name" toml:"name"`
	Shortcode       string              `json:"shortcode" toml:"shortcode"`
	Description     string              `json:"description" toml:"description"`
	LongDescription string              `json:"longDescription" toml:"-"`
	Arguments       map[string]Argument `json:"arguments" toml:"arguments"`
	Factory         StrategyFactory     `json:"-" toml:"-"`
}

// Strategy picks the rival's allocation for a week. history holds only the
// weeks that have already been played so a strategy never sees the returns
// it is about to earn.
type Strategy interface {
	Allocate(macro market.MacroState, history *portfolio.History, rng *rand.Rand) (market.Allocation, error)
}

// StrategyFactory builds a strategy from JSON encoded arguments
type StrategyFactory func(args map[string]json.RawMessage) (Strategy, error)

// DefaultArguments returns the default value of every argument
func (info *StrategyInfo) DefaultArguments() map[string]json.RawMessage {
	args := make(map[string]json.RawMessage, len(info.Arguments))
	for k, v := range info.Arguments {
		args[k] = json.RawMessage(v.Default)
	}
	return args
}

// New constructs the strategy with its default arguments
func (info *StrategyInfo) New() (Strategy, error) {
	return info.Factory(info.DefaultArguments())
}

// Float reads a numeric argument
func Float(args map[string]json.RawMessage, name string) (float64, error) {
	raw, ok := args[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidArgument, name)
	}
	var val float64
	if err := json.Unmarshal(raw, &val); err != nil {
		return 0, fmt.Errorf("%w: %s: %s", ErrInvalidArgument, name, err)
	}
	return val, nil
}

// Int reads an integer argument
func Int(args map[string]json.RawMessage, name string) (int, error) {
	raw, ok := args[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidArgument, name)
	}
	var val int
	if err := json.Unmarshal(raw, &val); err != nil {
		return 0, fmt.Errorf("%w: %s: %s", ErrInvalidArgument, name, err)
	}
	return val, nil
}

// Targets reads a table of target weights keyed by regime then sector. Every
// regime and every sector must be present.
func Targets(args map[string]json.RawMessage, name string) (map[market.Regime]map[market.Sector]float64, error) {
	raw, ok := args[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s is required", ErrInvalidArgument, name)
	}

	var decoded map[string]map[string]float64
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTargets, err)
	}

	targets := make(map[market.Regime]map[market.Sector]float64, len(market.Regimes))
	for _, regime := range market.Regimes {
		row, ok := decoded[string(regime)]
		if !ok {
			return nil, fmt.Errorf("%w: no targets for %s regime", ErrInvalidTargets, regime)
		}
		targets[regime] = make(map[market.Sector]float64, len(market.Sectors))
		for _, s := range market.Sectors {
			w, ok := row[string(s)]
			if !ok {
				return nil, fmt.Errorf("%w: no %s target for %s regime", ErrInvalidTargets, s, regime)
			}
			if w < 0 {
				return nil, fmt.Errorf("%w: %s target for %s regime is negative", ErrInvalidTargets, s, regime)
			}
			targets[regime][s] = w
		}
		if len(row) != len(market.Sectors) {
			return nil, fmt.Errorf("%w: %s regime has unknown sectors", ErrInvalidTargets, regime)
		}
	}
	return targets, nil
}

// Jitter adds uniform noise in [-noise, noise) to each weight, drawing once
// per sector in canonical sector order
func Jitter(base map[market.Sector]float64, noise float64, rng *rand.Rand) map[market.Sector]float64 {
	out := make(map[market.Sector]float64, len(market.Sectors))
	for _, s := range market.Sectors {
		out[s] = base[s] + market.Uniform(-noise, noise, rng)
	}
	return out
}

// Flat assigns the same weight to every sector
func Flat(w float64) map[market.Sector]float64 {
	out := make(map[market.Sector]float64, len(market.Sectors))
	for _, s := range market.Sectors {
		out[s] = w
	}
	return out
}

// Normalize raises each weight to at least floor and rescales to 100%.
// Weights are rounded to two decimals and any rounding residual is given
// to the largest weight so the result sums to exactly 100.
func Normalize(raw map[market.Sector]float64, floor float64) (market.Allocation, error) {
	total := 0.0
	adjusted := make(map[market.Sector]float64, len(market.Sectors))
	for _, s := range market.Sectors {
		adjusted[s] = math.Max(floor, raw[s])
		total += adjusted[s]
	}
	if total <= 0 {
		return market.Allocation{}, fmt.Errorf("%w: weights sum to %.2f", market.ErrInvalidAllocation, total)
	}

	sum := 0.0
	largest := market.Sectors[0]
	normalized := make(map[market.Sector]float64, len(market.Sectors))
	for _, s := range market.Sectors {
		normalized[s] = round2(adjusted[s] / total * 100.0)
		sum += normalized[s]
		if normalized[s] > normalized[largest] {
			largest = s
		}
	}

	if residual := 100.0 - sum; math.Abs(residual) > 0.001 {
		normalized[largest] = round2(normalized[largest] + residual)
	}

	return market.NewAllocation(normalized, market.DefaultLimits)
}

// TrailingReturns sums each sector's adjusted return over the last window
// weeks of history. Shorter histories use every week available.
func TrailingReturns(history *portfolio.History, window int) map[market.Sector]float64 {
	trailing := Flat(0)
	for _, week := range history.Recent(window) {
		for _, s := range market.Sectors {
			trailing[s] += week.AdjustedReturns[s]
		}
	}
	return trailing
}

// AllZero reports whether every value in m is exactly zero
func AllZero(m map[market.Sector]float64) bool {
	for _, v := range m {
		if v != 0 {
			return false
		}
	}
	return true
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
