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

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/exp/rand"

	"github.com/penny-vault/pv-arena/events"
	"github.com/penny-vault/pv-arena/market"
)

const (
	minHeadlines = 2
	maxHeadlines = 4
)

var sentiments = map[string]bool{
	"bullish": true,
	"bearish": true,
	"mixed":   true,
}

// Headline is a single item in the weekly news feed. Impacts annotates the
// expected direction of individual sectors and is empty for general market
// headlines.
type Headline struct {
	Text      string                   `json:"text"`
	Sentiment string                   `json:"sentiment"`
	Impacts   map[market.Sector]string `json:"impacts,omitempty"`
}

type headlineTemplate struct {
	Text      string            `toml:"text"`
	Sentiment string            `toml:"sentiment"`
	Impacts   map[string]string `toml:"impacts"`
}

// HeadlineWriter composes the week's news feed from template pools keyed
// by regime, volatility state, rate direction and shock event name
type HeadlineWriter struct {
	regime     map[market.Regime][]Headline
	volatility map[market.VolatilityState][]Headline
	rate       map[market.RateDirection][]Headline
	event      map[string][]Headline
}

// NewHeadlineWriter returns a writer using the built-in headline pools
func NewHeadlineWriter() *HeadlineWriter {
	return defaultHeadlines
}

// ParseHeadlines loads headline pools from TOML. Every regime needs a pool;
// volatility, rate and event pools are optional.
func ParseHeadlines(data []byte) (*HeadlineWriter, error) {
	var doc struct {
		Regime     map[string][]headlineTemplate `toml:"regime"`
		Volatility map[string][]headlineTemplate `toml:"volatility"`
		Rate       map[string][]headlineTemplate `toml:"rate"`
		Event      map[string][]headlineTemplate `toml:"event"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: headlines: %s", ErrInvalidTemplate, err)
	}

	hw := &HeadlineWriter{
		regime:     make(map[market.Regime][]Headline),
		volatility: make(map[market.VolatilityState][]Headline),
		rate:       make(map[market.RateDirection][]Headline),
		event:      make(map[string][]Headline),
	}

	for _, regime := range market.Regimes {
		pool, err := convertHeadlines(doc.Regime[string(regime)])
		if err != nil {
			return nil, err
		}
		if len(pool) == 0 {
			return nil, fmt.Errorf("%w: headline for %s regime", ErrMissingTemplate, regime)
		}
		hw.regime[regime] = pool
	}

	for k, v := range doc.Volatility {
		vol, err := market.ParseVolatilityState(k)
		if err != nil {
			return nil, fmt.Errorf("%w: headlines: %s", ErrInvalidTemplate, err)
		}
		if hw.volatility[vol], err = convertHeadlines(v); err != nil {
			return nil, err
		}
	}

	for k, v := range doc.Rate {
		rate, err := market.ParseRateDirection(k)
		if err != nil {
			return nil, fmt.Errorf("%w: headlines: %s", ErrInvalidTemplate, err)
		}
		if hw.rate[rate], err = convertHeadlines(v); err != nil {
			return nil, err
		}
	}

	for name, v := range doc.Event {
		pool, err := convertHeadlines(v)
		if err != nil {
			return nil, err
		}
		hw.event[name] = pool
	}

	return hw, nil
}

func convertHeadlines(templates []headlineTemplate) ([]Headline, error) {
	pool := make([]Headline, 0, len(templates))
	for _, t := range templates {
		if t.Text == "" {
			return nil, fmt.Errorf("%w: headline has no text", ErrInvalidTemplate)
		}
		if !sentiments[t.Sentiment] {
			return nil, fmt.Errorf("%w: headline %q has sentiment %q", ErrInvalidTemplate, t.Text, t.Sentiment)
		}
		h := Headline{Text: t.Text, Sentiment: t.Sentiment}
		if len(t.Impacts) > 0 {
			h.Impacts = make(map[market.Sector]string, len(t.Impacts))
			for k, impact := range t.Impacts {
				sector, err := market.ParseSector(k)
				if err != nil {
					return nil, fmt.Errorf("%w: headline %q: %s", ErrInvalidTemplate, t.Text, err)
				}
				h.Impacts[sector] = impact
			}
		}
		pool = append(pool, h)
	}
	return pool, nil
}

// HasEventPool reports whether name has any event specific headlines
func (hw *HeadlineWriter) HasEventPool(name string) bool {
	return len(hw.event[name]) > 0
}

// Generate assembles between two and four headlines. Event headlines come
// first, then one for the regime, one for the volatility state unless it is
// normal and one for the rate direction. A second regime headline is
// added if that still leaves fewer than two.
func (hw *HeadlineWriter) Generate(macro market.MacroState, evts []events.Event, rng *rand.Rand) []Headline {
	target := rng.Intn(maxHeadlines-minHeadlines+1) + minHeadlines
	headlines := make([]Headline, 0, target)

	for _, evt := range evts {
		pool := hw.event[evt.Name]
		if len(pool) > 0 && len(headlines) < target {
			headlines = append(headlines, choose(pool, rng))
		}
	}

	if len(headlines) < target {
		headlines = append(headlines, choose(hw.regime[macro.Regime], rng))
	}

	if pool := hw.volatility[macro.Volatility]; macro.Volatility != market.NormalVol && len(pool) > 0 && len(headlines) < target {
		headlines = append(headlines, choose(pool, rng))
	}

	if len(headlines) < target {
		if pool := hw.rate[macro.Rate]; len(pool) > 0 {
			headlines = append(headlines, choose(pool, rng))
		}
	}

	if len(headlines) < minHeadlines {
		headlines = append(headlines, choose(hw.regime[macro.Regime], rng))
	}

	return headlines
}

func choose(pool []Headline, rng *rand.Rand) Headline {
	return pool[market.Pick(len(pool), rng)]
}
