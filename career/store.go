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

package career

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog/log"

	"github.com/penny-vault/pv-arena/database"
	"github.com/penny-vault/pv-arena/portfolio"
)

var (
	ErrProfileNotFound = errors.New("career profile not found")
)

const (
	loadSQL = `SELECT player_name, title, seasons_played, lifetime_cagr, best_sharpe, worst_drawdown, total_pnl, updated_at FROM career_profiles WHERE player_name = $1`
	saveSQL = `INSERT INTO career_profiles (player_name, title, seasons_played, lifetime_cagr, best_sharpe, worst_drawdown, total_pnl, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (player_name) DO UPDATE SET
	title = excluded.title,
	seasons_played = excluded.seasons_played,
	lifetime_cagr = excluded.lifetime_cagr,
	best_sharpe = excluded.best_sharpe,
	worst_drawdown = excluded.worst_drawdown,
	total_pnl = excluded.total_pnl,
	updated_at = excluded.updated_at`
)

// Load reads the stored profile for player
func Load(ctx context.Context, player string) (Profile, error) {
	subLog := log.With().Str("Player", player).Logger()

	trx, err := database.Begin(ctx)
	if err != nil {
		return Profile{}, err
	}

	var p Profile
	var title string
	err = trx.QueryRow(ctx, loadSQL, player).Scan(&p.Player, &title, &p.SeasonsPlayed, &p.LifetimeCAGR,
		&p.BestSharpe, &p.WorstDrawDown, &p.TotalPnL, &p.UpdatedAt)
	if err != nil {
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, player)
		}
		subLog.Error().Stack().Err(err).Str("Query", loadSQL).Msg("could not load career profile")
		return Profile{}, err
	}

	if err := trx.Commit(ctx); err != nil {
		subLog.Error().Stack().Err(err).Msg("could not commit transaction")
		return Profile{}, err
	}

	p.Title = Title(title)
	if p.Title.Rank() < 0 {
		subLog.Warn().Str("Title", title).Msg("stored title is unknown; recomputing")
		p.Title = ComputeTitle(p)
	}
	return p, nil
}

// Save inserts or replaces the stored profile
func Save(ctx context.Context, p Profile) error {
	subLog := log.With().Str("Player", p.Player).Logger()

	trx, err := database.Begin(ctx)
	if err != nil {
		return err
	}

	_, err = trx.Exec(ctx, saveSQL, p.Player, string(p.Title), p.SeasonsPlayed, p.LifetimeCAGR,
		p.BestSharpe, p.WorstDrawDown, p.TotalPnL, p.UpdatedAt)
	if err != nil {
		subLog.Error().Stack().Err(err).Str("Query", saveSQL).Msg("could not save career profile")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return err
	}

	if err := trx.Commit(ctx); err != nil {
		subLog.Error().Stack().Err(err).Msg("could not commit transaction")
		return err
	}
	return nil
}

// LoadOrCreate returns the stored profile or a fresh one if the player has
// never finished a season. A fresh profile is not saved.
func LoadOrCreate(ctx context.Context, player string) (Profile, error) {
	p, err := Load(ctx, player)
	if errors.Is(err, ErrProfileNotFound) {
		return NewProfile(player), nil
	}
	return p, err
}

// RecordSeason loads the player's profile, folds in the season and saves it
func RecordSeason(ctx context.Context, player string, card portfolio.ScoreCard) (before, after Profile, err error) {
	before, err = LoadOrCreate(ctx, player)
	if err != nil {
		return Profile{}, Profile{}, err
	}
	after = Update(before, card)
	if err = Save(ctx, after); err != nil {
		return Profile{}, Profile{}, err
	}
	log.Debug().Str("Player", player).Str("Title", string(after.Title)).Int("Seasons", after.SeasonsPlayed).Msg("career updated")
	return before, after, nil
}
