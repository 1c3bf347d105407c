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
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/penny-vault/pv-arena/career"
	"github.com/penny-vault/pv-arena/database"
	"github.com/penny-vault/pv-arena/game"
	"github.com/penny-vault/pv-arena/market"
)

// revisionThreshold is the risk score at which the player is offered a
// chance to revise their allocation
const revisionThreshold = 7

func init() {
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play an interactive season",
	Long: `Play a season one week at a time. Each week you are shown the news, the
macro picture and your book, and are asked for an allocation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cfg := configFromViper()

		tracked := connectCareer(ctx)

		err := playSeason(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout(), tracked)
		if errors.Is(err, ErrInputClosed) {
			fmt.Fprintln(cmd.OutOrStdout(), yellow("\nSeason abandoned."))
			return nil
		}
		return err
	},
}

// connectCareer opens the career database when one is configured. Career
// tracking is optional so failures are logged and the season goes on.
func connectCareer(ctx context.Context) bool {
	url := viper.GetString("database.url")
	if url == "" {
		return false
	}
	if err := database.Connect(ctx, url); err != nil {
		log.Error().Err(err).Msg("could not connect to database; career will not be recorded")
		return false
	}
	if err := database.Migrate(ctx); err != nil {
		log.Error().Err(err).Msg("could not prepare career table; career will not be recorded")
		return false
	}
	return true
}

func playSeason(ctx context.Context, cfg game.Config, in io.Reader, out io.Writer, tracked bool) error {
	session, err := game.NewSession(cfg)
	if err != nil {
		return err
	}

	renderIntro(out, cfg, session.RivalName())
	if tracked {
		profile, err := career.LoadOrCreate(ctx, cfg.Player)
		if err != nil {
			log.Error().Err(err).Str("Player", cfg.Player).Msg("could not load career")
		} else {
			renderCareer(out, profile)
		}
	}

	prompt := newPrompter(in, out, cfg.Limits)
	var previous market.Allocation

	for !session.Complete() {
		briefing, err := session.Open(ctx)
		if err != nil {
			return err
		}
		renderBriefing(out, briefing, cfg.StartingCash)

		alloc, err := prompt.Allocation(previous)
		if err != nil {
			return err
		}

		risk, err := session.Assess(alloc)
		if err != nil {
			return err
		}
		renderRisk(out, risk)

		if risk.Score >= revisionThreshold {
			revise, err := prompt.Confirm("The committee is nervous. Revise your allocation?")
			if err != nil {
				return err
			}
			if revise {
				if alloc, err = prompt.Allocation(alloc); err != nil {
					return err
				}
				if risk, err = session.Assess(alloc); err != nil {
					return err
				}
				renderRisk(out, risk)
			}
		}

		turn, err := session.Commit(ctx, alloc)
		if err != nil {
			return err
		}
		renderShort(out, turn.Short)
		renderWeek(out, turn)
		previous = alloc
	}

	summary, err := session.Finish(ctx)
	if err != nil {
		return err
	}
	renderSummary(out, summary)

	if tracked {
		before, after, err := career.RecordSeason(ctx, cfg.Player, summary.ScoreCard)
		if err != nil {
			log.Error().Err(err).Str("Player", cfg.Player).Msg("could not record season")
			return nil
		}
		renderPromotion(out, before, after)
		renderCareer(out, after)
	}

	return nil
}
