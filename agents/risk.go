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

// Package agents contains the characters that react to the player's
// decisions each week: the risk committee that scores a proposed
// allocation, the Fed chair, the financial press and an activist short
// seller.
package agents

import (
	"errors"
	"fmt"

	"github.com/penny-vault/pv-arena/market"
	"github.com/penny-vault/pv-arena/portfolio"
)

var (
	ErrUnknownAgentKind = errors.New("unknown agent kind")
	ErrMissingTemplate  = errors.New("missing narrative template")
	ErrInvalidTemplate  = errors.New("invalid narrative template")
)

// RiskAssessment is the committee's verdict on a proposed allocation
type RiskAssessment struct {
	Score    int      `json:"score"`
	Critique string   `json:"critique"`
	Warnings []string `json:"warnings"`
}

// RiskAgent reviews an allocation before it is committed. Evaluate must be
// deterministic: the same inputs always produce the same assessment.
type RiskAgent interface {
	Evaluate(alloc market.Allocation, macro market.MacroState, current portfolio.State, history *portfolio.History) RiskAssessment
}

// Kind selects a RiskAgent implementation
type Kind string

const (
	KindRules Kind = "rules"
)

// NewRiskAgent builds the risk agent for kind
func NewRiskAgent(kind Kind) (RiskAgent, error) {
	switch kind {
	case KindRules:
		return &RulesCommittee{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAgentKind, kind)
	}
}
