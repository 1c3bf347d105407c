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
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/penny-vault/pv-arena/common"
	"github.com/penny-vault/pv-arena/observability/opentelemetry"
)

var shutdownTracing func(context.Context) error

func init() {
	// Database
	viper.BindEnv("database.url", "DATABASE_URL")
	rootCmd.PersistentFlags().String("database-url", "", "PostgreSQL connection string; career tracking is disabled when blank")
	viper.BindPFlag("database.url", rootCmd.PersistentFlags().Lookup("database-url"))

	// Logging configuration
	viper.BindEnv("log.level", "PVARENA_LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-level", "warning", "Logging level")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.BindEnv("log.report_caller", "PVARENA_LOG_REPORT_CALLER")
	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	viper.BindPFlag("log.report_caller", rootCmd.PersistentFlags().Lookup("log-report-caller"))

	viper.BindEnv("log.output", "PVARENA_LOG_OUTPUT")
	rootCmd.PersistentFlags().String("log-output", "stderr", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	viper.BindPFlag("log.output", rootCmd.PersistentFlags().Lookup("log-output"))

	viper.BindEnv("log.pretty", "PVARENA_LOG_PRETTY")
	rootCmd.PersistentFlags().Bool("log-pretty", true, "Write human readable log lines instead of JSON")
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))

	// Tracing
	viper.BindEnv("otlp.endpoint", "OTLP_ENDPOINT")
	rootCmd.PersistentFlags().String("otlp-endpoint", "", "OTLP collector to send traces to; tracing is disabled when blank")
	viper.BindPFlag("otlp.endpoint", rootCmd.PersistentFlags().Lookup("otlp-endpoint"))

	viper.BindEnv("otlp.http", "OTLP_HTTP")
	rootCmd.PersistentFlags().Bool("otlp-http", false, "Use HTTP(s) instead of gRPC for the OTLP connection")
	viper.BindPFlag("otlp.http", rootCmd.PersistentFlags().Lookup("otlp-http"))

	// Season
	viper.BindEnv("game.player", "PVARENA_PLAYER")
	rootCmd.PersistentFlags().String("player", "Player", "Player name used for career tracking")
	viper.BindPFlag("game.player", rootCmd.PersistentFlags().Lookup("player"))

	viper.BindEnv("game.rival", "PVARENA_RIVAL")
	rootCmd.PersistentFlags().String("rival", "momentum", "Rival strategy shortcode")
	viper.BindPFlag("game.rival", rootCmd.PersistentFlags().Lookup("rival"))

	rootCmd.PersistentFlags().Uint64("seed", 0, "Random seed; 0 picks one from the clock")
	viper.BindPFlag("game.seed", rootCmd.PersistentFlags().Lookup("seed"))

	rootCmd.PersistentFlags().Int("weeks", 0, "Season length in weeks; 0 uses game.total_weeks")
	viper.BindPFlag("game.weeks", rootCmd.PersistentFlags().Lookup("weeks"))

	rootCmd.PersistentFlags().Bool("quick", false, "Play a short season of game.quick_weeks weeks")
	viper.BindPFlag("game.quick", rootCmd.PersistentFlags().Lookup("quick"))
}

var rootCmd = &cobra.Command{
	Use:     "pvarena",
	Version: common.CurrentVersion.String(),
	Short:   "Run a macro hedge fund for a season",
	Long: `pv-arena is a turn based portfolio simulation. Each week you read the
macro picture, the headlines and the Fed, then allocate across five equity
sectors. A risk committee reviews your book, a short seller hunts for
weaknesses, and a rival fund plays the same market alongside you.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := common.SetupLogging(); err != nil {
			return err
		}

		var err error
		shutdownTracing, err = opentelemetry.Setup()
		if err != nil {
			log.Error().Err(err).Msg("could not set up tracing")
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if shutdownTracing == nil {
			return
		}
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn().Err(err).Msg("could not flush traces")
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
