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

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/penny-vault/pv-arena/career"
	"github.com/penny-vault/pv-arena/database"
)

var careerJSON bool

func init() {
	rootCmd.AddCommand(careerCmd)
	careerCmd.Flags().BoolVar(&careerJSON, "json", false, "Print the profile as JSON")
}

var careerCmd = &cobra.Command{
	Use:   "career [player]",
	Short: "Show a player's career",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		player := viper.GetString("game.player")
		if len(args) == 1 {
			player = args[0]
		}

		url := viper.GetString("database.url")
		if url == "" {
			return fmt.Errorf("%w: set --database-url or DATABASE_URL", database.ErrNotConnected)
		}
		if err := database.Connect(ctx, url); err != nil {
			return err
		}

		profile, err := career.Load(ctx, player)
		if errors.Is(err, career.ErrProfileNotFound) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s has not finished a season yet.\n", player)
			return nil
		}
		if err != nil {
			return err
		}

		if careerJSON {
			data, err := json.MarshalIndent(profile, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), bold(profile.Player))
		renderCareer(cmd.OutOrStdout(), profile)
		return nil
	},
}
