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

// Package rival runs the AI portfolio managers the player competes
// against. Each strategy lives in its own package with a strategy.toml
// describing its arguments and a description.md for display.
package rival

import (
	"embed"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"

	"github.com/penny-vault/pv-arena/rival/defensive"
	"github.com/penny-vault/pv-arena/rival/macrotimer"
	"github.com/penny-vault/pv-arena/rival/momentum"
	"github.com/penny-vault/pv-arena/rival/strategy"
	"github.com/penny-vault/pv-arena/rival/value"
)

//go:embed */*.md */*.toml
var resources embed.FS

var (
	ErrUnknownStrategy = errors.New("unknown rival strategy")
)

// StrategyList list of all registered strategies in registration order
var StrategyList = []strategy.StrategyInfo{}

// StrategyMap map of strategies by shortcode
var StrategyMap = make(map[string]*strategy.StrategyInfo)

var initOnce sync.Once

// InitializeStrategyMap registers the built-in strategies. It is safe to
// call more than once.
func InitializeStrategyMap() {
	initOnce.Do(func() {
		for _, reg := range []struct {
			pkg     string
			factory strategy.StrategyFactory
		}{
			{"momentum", momentum.New},
			{"defensive", defensive.New},
			{"macrotimer", macrotimer.New},
			{"value", value.New},
		} {
			if err := Register(reg.pkg, reg.factory); err != nil {
				log.Panic().Err(err).Str("Package", reg.pkg).Msg("failed to register built-in rival strategy")
			}
		}
	})
}

// Register loads a strategy's description and configuration from its
// package directory and adds it to the registry
func Register(strategyPkg string, factory strategy.StrategyFactory) error {
	fn := fmt.Sprintf("%s/description.md", strategyPkg)
	longDescription, err := resources.ReadFile(fn)
	if err != nil {
		log.Error().Err(err).Str("File", fn).Msg("failed to read file")
		return err
	}

	fn = fmt.Sprintf("%s/strategy.toml", strategyPkg)
	doc, err := resources.ReadFile(fn)
	if err != nil {
		log.Error().Err(err).Str("File", fn).Msg("failed to read file")
		return err
	}

	var strat strategy.StrategyInfo
	if err := toml.Unmarshal(doc, &strat); err != nil {
		log.Error().Err(err).Str("File", fn).Msg("failed to parse toml file")
		return err
	}
	if strat.Shortcode == "" {
		return fmt.Errorf("%w: %s has no shortcode", strategy.ErrInvalidArgument, fn)
	}
	if _, ok := StrategyMap[strat.Shortcode]; ok {
		return fmt.Errorf("%w: %s is already registered", strategy.ErrInvalidArgument, strat.Shortcode)
	}

	strat.LongDescription = string(longDescription)
	strat.Factory = factory

	// fail at registration rather than mid-season on bad defaults
	if _, err := strat.New(); err != nil {
		log.Error().Err(err).Str("Strategy", strat.Shortcode).Msg("default arguments are invalid")
		return err
	}

	StrategyList = append(StrategyList, strat)
	StrategyMap[strat.Shortcode] = &strat
	return nil
}

// Lookup returns the registered strategy for shortcode
func Lookup(shortcode string) (*strategy.StrategyInfo, error) {
	InitializeStrategyMap()
	info, ok := StrategyMap[shortcode]
	if !ok {
		return nil, fmt.Errorf("%w: %q (choose from %v)", ErrUnknownStrategy, shortcode, Shortcodes())
	}
	return info, nil
}

// Shortcodes lists the registered strategies in alphabetical order
func Shortcodes() []string {
	InitializeStrategyMap()
	codes := make([]string, 0, len(StrategyMap))
	for code := range StrategyMap {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
