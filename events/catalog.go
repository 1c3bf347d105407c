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

// Package events models one-off market shocks. A fixed catalog of event
// templates is embedded in the binary; each week zero to two of them are
// drawn with a likelihood that depends on the macro regime.
package events

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"

	"github.com/penny-vault/pv-arena/market"
)

var (
	ErrInvalidCatalog = errors.New("invalid event catalog")
	ErrUnknownEvent   = errors.New("unknown event")
)

//go:embed catalog.toml
var catalogToml []byte

var defaultCatalog Catalog

func init() {
	var err error
	if defaultCatalog, err = ParseCatalog(catalogToml); err != nil {
		log.Panic().Err(err).Msg("could not load embedded event catalog")
	}
}

// Template is a possible shock event
type Template struct {
	Name          string                    `json:"name"`
	Description   string                    `json:"description"`
	SectorEffects map[market.Sector]float64 `json:"sectorEffects"`
	VolImpact     float64                   `json:"volImpact"`
	RegimeWeights map[market.Regime]float64 `json:"regimeWeights"`
}

// Catalog is an ordered list of templates. Order matters: it fixes which
// template each categorical draw maps to.
type Catalog []Template

type catalogFile struct {
	Event []struct {
		Name          string             `toml:"name"`
		Description   string             `toml:"description"`
		VolImpact     float64            `toml:"vol_impact"`
		Effects       map[string]float64 `toml:"effects"`
		RegimeWeights map[string]float64 `toml:"regime_weights"`
	} `toml:"event"`
}

// Default returns the built-in 20 event catalog
func Default() Catalog {
	return append(Catalog(nil), defaultCatalog...)
}

// ParseCatalog decodes and validates a TOML catalog. Every template must
// have a unique name, effects only on modeled sectors and a non-negative
// weight for every regime. Each regime must have at least one template
// with positive weight so selection is always possible.
func ParseCatalog(data []byte) (Catalog, error) {
	var doc catalogFile
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCatalog, err)
	}

	if len(doc.Event) == 0 {
		return nil, fmt.Errorf("%w: catalog is empty", ErrInvalidCatalog)
	}

	seen := make(map[string]bool, len(doc.Event))
	totals := make(map[market.Regime]float64, len(market.Regimes))
	catalog := make(Catalog, 0, len(doc.Event))
	for _, ev := range doc.Event {
		if ev.Name == "" {
			return nil, fmt.Errorf("%w: event without a name", ErrInvalidCatalog)
		}
		if seen[ev.Name] {
			return nil, fmt.Errorf("%w: duplicate event %q", ErrInvalidCatalog, ev.Name)
		}
		seen[ev.Name] = true

		tmpl := Template{
			Name:          ev.Name,
			Description:   ev.Description,
			VolImpact:     ev.VolImpact,
			SectorEffects: make(map[market.Sector]float64, len(ev.Effects)),
			RegimeWeights: make(map[market.Regime]float64, len(market.Regimes)),
		}

		for name, effect := range ev.Effects {
			sector := market.Sector(name)
			if !sector.Valid() {
				return nil, fmt.Errorf("%w: event %q affects unknown sector %q", ErrInvalidCatalog, ev.Name, name)
			}
			tmpl.SectorEffects[sector] = effect
		}

		for name := range ev.RegimeWeights {
			if _, err := market.ParseRegime(name); err != nil {
				return nil, fmt.Errorf("%w: event %q: %s", ErrInvalidCatalog, ev.Name, err)
			}
		}
		for _, regime := range market.Regimes {
			weight, ok := ev.RegimeWeights[string(regime)]
			if !ok {
				return nil, fmt.Errorf("%w: event %q has no weight for the %s regime", ErrInvalidCatalog, ev.Name, regime)
			}
			if weight < 0 {
				return nil, fmt.Errorf("%w: event %q has a negative %s weight", ErrInvalidCatalog, ev.Name, regime)
			}
			tmpl.RegimeWeights[regime] = weight
			totals[regime] += weight
		}

		catalog = append(catalog, tmpl)
	}

	for _, regime := range market.Regimes {
		if totals[regime] <= 0 {
			return nil, fmt.Errorf("%w: no event can occur in the %s regime", ErrInvalidCatalog, regime)
		}
	}

	return catalog, nil
}

// Lookup finds a template by name
func (c Catalog) Lookup(name string) (Template, error) {
	for _, tmpl := range c {
		if tmpl.Name == name {
			return tmpl, nil
		}
	}
	return Template{}, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
}

// Names lists the template names in catalog order
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for ii, tmpl := range c {
		names[ii] = tmpl.Name
	}
	return names
}

// Weights returns each template's affinity for regime in catalog order
func (c Catalog) Weights(regime market.Regime) []float64 {
	weights := make([]float64, len(c))
	for ii, tmpl := range c {
		weights[ii] = tmpl.RegimeWeights[regime]
	}
	return weights
}
