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
	"golang.org/x/exp/rand"

	"github.com/penny-vault/pv-arena/events"
	"github.com/penny-vault/pv-arena/market"
	"github.com/penny-vault/pv-arena/portfolio"
)

// Narrative is everything the press and the market's other participants
// say about a week
type Narrative struct {
	Fed       FedStatement `json:"fed"`
	Headlines []Headline   `json:"headlines"`
	Short     *ShortThesis `json:"short,omitempty"`
}

// NarrativeDesk coordinates the narrative agents so that their draws from
// the session generator always happen in the same order: the Fed, then the
// headlines, then the short seller.
type NarrativeDesk struct {
	Fed         *FedChair
	Press       *HeadlineWriter
	ShortSeller *ShortSeller
}

// NewNarrativeDesk returns a desk staffed with the built-in agents
func NewNarrativeDesk() *NarrativeDesk {
	return &NarrativeDesk{
		Fed:         NewFedChair(),
		Press:       NewHeadlineWriter(),
		ShortSeller: NewShortSeller(),
	}
}

// Briefing produces the pre-decision narrative: the Fed statement followed
// by the headlines
func (nd *NarrativeDesk) Briefing(macro market.MacroState, evts []events.Event, rng *rand.Rand) Narrative {
	fed := nd.Fed.Generate(macro, rng)
	headlines := nd.Press.Generate(macro, evts, rng)
	return Narrative{
		Fed:       fed,
		Headlines: headlines,
	}
}

// Scan runs the short seller over the allocation the player committed to
func (nd *NarrativeDesk) Scan(alloc market.Allocation, macro market.MacroState, history *portfolio.History, rng *rand.Rand) *ShortThesis {
	return nd.ShortSeller.Analyze(alloc, macro, history, rng)
}

// Weekly is Briefing followed by Scan
func (nd *NarrativeDesk) Weekly(macro market.MacroState, evts []events.Event, alloc market.Allocation, history *portfolio.History, rng *rand.Rand) Narrative {
	narrative := nd.Briefing(macro, evts, rng)
	narrative.Short = nd.Scan(alloc, macro, history, rng)
	return narrative
}
