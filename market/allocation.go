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

package market

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// weightTolerance absorbs rounding in user and strategy supplied weights
const weightTolerance = 0.01

// Limits bounds the leverage a player may take
type Limits struct {
	MaxGrossExposure float64 `json:"maxGrossExposure" toml:"max_gross_exposure"` // percent, e.g. 200
	MaxShort         float64 `json:"maxShort" toml:"max_short"`                  // percent, e.g. -50
}

// DefaultLimits allows 2x gross exposure and shorts down to -50% per sector
var DefaultLimits = Limits{
	MaxGrossExposure: 200.0,
	MaxShort:         -50.0,
}

// Allocation is a validated vector of signed percentage weights, one per
// sector. Negative weights are short positions and whatever is not
// allocated is held as cash earning nothing. An Allocation can only be
// obtained through NewAllocation and is immutable afterwards.
type Allocation struct {
	weights map[Sector]float64
}

// NewAllocation validates weights against limits. The caller keeps
// ownership of the map; the allocation stores a copy.
func NewAllocation(weights map[Sector]float64, limits Limits) (Allocation, error) {
	for s := range weights {
		if !s.Valid() {
			return Allocation{}, fmt.Errorf("%w: %q", ErrExtraSector, s)
		}
	}

	total := 0.0
	gross := 0.0
	for _, s := range Sectors {
		w, ok := weights[s]
		if !ok {
			return Allocation{}, fmt.Errorf("%w: %s is missing", ErrMissingSector, s.DisplayName())
		}
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return Allocation{}, fmt.Errorf("%w: %s weight is not a number", ErrInvalidAllocation, s.DisplayName())
		}
		total += w
		gross += math.Abs(w)
	}

	if total < -weightTolerance || total > 100.0+weightTolerance {
		return Allocation{}, fmt.Errorf("%w: allocation sums to %.2f%%", ErrNetExposure, total)
	}

	for _, s := range Sectors {
		if weights[s] < limits.MaxShort {
			return Allocation{}, fmt.Errorf("%w: %s at %.1f%% (max short is %.0f%%)", ErrShortLimit, s.DisplayName(), weights[s], limits.MaxShort)
		}
	}

	if gross > limits.MaxGrossExposure+weightTolerance {
		return Allocation{}, fmt.Errorf("%w: gross exposure %.1f%% exceeds %.0f%%", ErrGrossExposure, gross, limits.MaxGrossExposure)
	}

	cp := make(map[Sector]float64, len(Sectors))
	for _, s := range Sectors {
		cp[s] = weights[s]
	}
	return Allocation{weights: cp}, nil
}

// MustAllocation is NewAllocation for static, known-good inputs
func MustAllocation(weights map[Sector]float64) Allocation {
	alloc, err := NewAllocation(weights, DefaultLimits)
	if err != nil {
		panic(err)
	}
	return alloc
}

// EqualWeight spreads 100% evenly across every sector
func EqualWeight() Allocation {
	weights := make(map[Sector]float64, len(Sectors))
	for _, s := range Sectors {
		weights[s] = 100.0 / float64(len(Sectors))
	}
	return MustAllocation(weights)
}

// ParseAllocation reads a comma separated list of sector=weight pairs such
// as "tech=40,energy=20". Sectors that are not named get a weight of 0.
func ParseAllocation(text string, limits Limits) (Allocation, error) {
	weights := make(map[Sector]float64, len(Sectors))
	for _, s := range Sectors {
		weights[s] = 0
	}

	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return Allocation{}, fmt.Errorf("%w: expected sector=weight, got %q", ErrInvalidAllocation, part)
		}
		sector, err := ParseSector(kv[0])
		if err != nil {
			return Allocation{}, err
		}
		w, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(kv[1]), "%"), 64)
		if err != nil {
			return Allocation{}, fmt.Errorf("%w: weight for %s: %s", ErrInvalidAllocation, sector.DisplayName(), err)
		}
		weights[sector] = w
	}

	return NewAllocation(weights, limits)
}

// Weight returns the percentage weight of a sector
func (a Allocation) Weight(s Sector) float64 {
	return a.weights[s]
}

// Weights returns a copy of the percentage weights
func (a Allocation) Weights() map[Sector]float64 {
	cp := make(map[Sector]float64, len(a.weights))
	for s, w := range a.weights {
		cp[s] = w
	}
	return cp
}

// Fractions returns the weights as signed decimal fractions
func (a Allocation) Fractions() map[Sector]float64 {
	fracs := make(map[Sector]float64, len(a.weights))
	for s, w := range a.weights {
		fracs[s] = w / 100.0
	}
	return fracs
}

// GrossExposure is the sum of absolute weights as a fraction (1.0 = long only, 2.0 = max leverage)
func (a Allocation) GrossExposure() float64 {
	gross := 0.0
	for _, s := range Sectors {
		gross += math.Abs(a.weights[s])
	}
	return gross / 100.0
}

// NetExposure is the sum of signed weights as a fraction
func (a Allocation) NetExposure() float64 {
	net := 0.0
	for _, s := range Sectors {
		net += a.weights[s]
	}
	return net / 100.0
}

// CashWeight is the fraction of the portfolio left uninvested
func (a Allocation) CashWeight() float64 {
	return 1.0 - a.NetExposure()
}

// HasShorts reports whether any sector has a negative weight
func (a Allocation) HasShorts() bool {
	for _, s := range Sectors {
		if a.weights[s] < 0 {
			return true
		}
	}
	return false
}

// Shorts lists the sectors with negative weights in canonical order
func (a Allocation) Shorts() []Sector {
	shorts := []Sector{}
	for _, s := range Sectors {
		if a.weights[s] < 0 {
			shorts = append(shorts, s)
		}
	}
	return shorts
}

// MaxAbsWeight returns the largest absolute fractional weight
func (a Allocation) MaxAbsWeight() float64 {
	max := 0.0
	for _, s := range Sectors {
		max = math.Max(max, math.Abs(a.weights[s]))
	}
	return max / 100.0
}

// IsZero is true for the zero value (an allocation that was never validated)
func (a Allocation) IsZero() bool {
	return a.weights == nil
}

func (a Allocation) String() string {
	parts := make([]string, 0, len(Sectors))
	for _, s := range Sectors {
		parts = append(parts, fmt.Sprintf("%s=%.2f", s, a.weights[s]))
	}
	return strings.Join(parts, ",")
}

// MarshalJSON encodes the weights keyed by sector id
func (a Allocation) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.weights)
}

// UnmarshalJSON decodes a stored allocation. Structural invariants (every
// sector present, net exposure in range) are re-checked; leverage limits
// are not since they depend on the configuration. Anything that plays a
// decoded allocation must run it through NewAllocation with its limits.
func (a *Allocation) UnmarshalJSON(data []byte) error {
	weights := make(map[Sector]float64)
	if err := json.Unmarshal(data, &weights); err != nil {
		return err
	}
	alloc, err := NewAllocation(weights, Limits{MaxGrossExposure: math.Inf(1), MaxShort: math.Inf(-1)})
	if err != nil {
		return err
	}
	*a = alloc
	return nil
}
