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
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/penny-vault/pv-arena/common"
	"github.com/penny-vault/pv-arena/game"
	"github.com/penny-vault/pv-arena/market"
	"github.com/penny-vault/pv-arena/messenger"
)

var (
	simulateAllocation string
	simulateAutopilot  string
	simulateJSON       bool
	simulateEnqueue    bool
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVar(&simulateAllocation, "allocation", "", "Hold this allocation all season, e.g. \"tech=40,energy=20,financials=20,consumer=10,industrials=10\"")
	simulateCmd.Flags().StringVar(&simulateAutopilot, "autopilot", "", "Let a rival strategy play the season")
	simulateCmd.Flags().BoolVar(&simulateJSON, "json", false, "Print the season summary as JSON")
	simulateCmd.Flags().BoolVar(&simulateEnqueue, "enqueue", false, "Queue the season on NATS for a worker instead of playing it here")

	// Cache
	viper.BindEnv("cache.redis", "PVARENA_CACHE_REDIS")
	simulateCmd.Flags().Bool("cache-redis", false, "Share simulated seasons through redis")
	viper.BindPFlag("cache.redis", simulateCmd.Flags().Lookup("cache-redis"))

	viper.BindEnv("cache.redis_url", "REDIS_URL")
	simulateCmd.Flags().String("redis-url", "", "Redis connection string")
	viper.BindPFlag("cache.redis_url", simulateCmd.Flags().Lookup("redis-url"))
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play a season without input",
	Long: `Play a whole season headless, either holding a fixed allocation every
week or letting one of the rival strategies play in your seat. Seasons are
deterministic for a given seed so results are cached.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cfg := configFromViper()

		req := game.SeasonRequest{
			Config:    cfg,
			Autopilot: simulateAutopilot,
		}
		if simulateAllocation != "" {
			alloc, err := market.ParseAllocation(simulateAllocation, cfg.Limits)
			if err != nil {
				return err
			}
			req.Allocation = &alloc
		}

		if simulateEnqueue {
			return enqueueSeason(cmd, req)
		}

		cache, err := common.SetupCache()
		if err != nil {
			return err
		}
		defer cache.Close()

		summary, hit, err := game.NewSeasonCache(cache).RunSeason(ctx, req)
		if err != nil {
			return err
		}
		log.Debug().Bool("CacheHit", hit).Uint64("Seed", cfg.Seed).Msg("simulated season")

		out := cmd.OutOrStdout()
		if simulateJSON {
			data, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		renderIntro(out, cfg, summary.RivalName)
		renderSummary(out, summary)
		return nil
	},
}

func enqueueSeason(cmd *cobra.Command, req game.SeasonRequest) error {
	if _, err := req.Pilot(); err != nil {
		return err
	}
	if err := req.Config.Validate(); err != nil {
		return err
	}

	if err := messenger.Initialize(); err != nil {
		return err
	}
	defer messenger.Close()

	requestID := uuid.New().String()
	if err := messenger.PublishSeasonRequest(requestID, req); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "queued season %s (seed %d)\n", requestID, req.Config.Seed)
	return nil
}
