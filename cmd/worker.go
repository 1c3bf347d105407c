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
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/penny-vault/pv-arena/common"
	"github.com/penny-vault/pv-arena/game"
	"github.com/penny-vault/pv-arena/messenger"
)

func init() {
	viper.BindEnv("nats.server", "NATS_SERVER")
	rootCmd.PersistentFlags().String("nats-server", "nats://localhost:4222", "NATS server used to queue simulated seasons")
	viper.BindPFlag("nats.server", rootCmd.PersistentFlags().Lookup("nats-server"))

	viper.BindEnv("nats.credentials", "NATS_CREDENTIALS")
	rootCmd.PersistentFlags().String("nats-credentials", "", "NATS user credentials file")
	viper.BindPFlag("nats.credentials", rootCmd.PersistentFlags().Lookup("nats-credentials"))

	viper.SetDefault("nats.requests_subject", "pvarena.seasons.requests")
	viper.SetDefault("nats.requests_consumer", "pvarena-worker")
	viper.SetDefault("nats.results_subject", "pvarena.seasons.results")
	viper.SetDefault("nats.poll_interval", 5)

	rootCmd.AddCommand(workerCmd)
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Play queued seasons",
	Long: `Pull season requests queued with "simulate --enqueue" from NATS, play
them and publish the summaries to the results subject.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := messenger.Initialize(); err != nil {
			return err
		}
		defer messenger.Close()

		cache, err := common.SetupCache()
		if err != nil {
			return err
		}
		defer cache.Close()
		seasons := game.NewSeasonCache(cache)

		poll := time.Duration(viper.GetInt("nats.poll_interval")) * time.Second
		for {
			processed, err := processNextSeason(ctx, seasons)
			if err != nil {
				return err
			}
			if processed {
				continue
			}

			select {
			case <-ctx.Done():
				log.Info().Msg("worker stopping")
				return nil
			case <-time.After(poll):
			}
		}
	},
}

// processNextSeason plays one queued season. It reports whether a request
// was found.
func processNextSeason(ctx context.Context, seasons *game.SeasonCache) (bool, error) {
	msg, err := messenger.NextSeasonRequest()
	if err != nil || msg == nil {
		return false, err
	}

	req, err := messenger.DecodeSeasonMessage(msg.Data)
	if err != nil {
		log.Warn().Err(err).Msg("dropping unplayable season request")
		if err := msg.Term(); err != nil {
			log.Error().Err(err).Msg("could not terminate message")
		}
		return true, nil
	}

	subLog := log.With().Str("RequestID", req.RequestID).Logger()
	result := messenger.ResultMessage{RequestID: req.RequestID}

	summary, hit, err := seasons.RunSeason(ctx, req.Request)
	if err != nil {
		subLog.Error().Err(err).Msg("season failed")
		result.Error = err.Error()
	} else {
		subLog.Info().Bool("CacheHit", hit).Float64("FinalValue", summary.ScoreCard.FinalValue).Msg("season played")
		result.Summary = summary
	}

	if err := messenger.PublishResult(result); err != nil {
		if err := msg.Nak(); err != nil {
			subLog.Error().Err(err).Msg("could not nak message")
		}
		return true, nil
	}

	if err := msg.Ack(); err != nil {
		subLog.Error().Err(err).Msg("could not ack message")
	}
	return true, nil
}
