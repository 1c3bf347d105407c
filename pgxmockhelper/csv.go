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

// Package pgxmockhelper builds pgxmock result sets from CSV fixtures so
// store tests can keep their data next to the code under test.
package pgxmockhelper

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pashagolub/pgxmock"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type CSVRows struct {
	rows   [][]any
	header []string
}

// NewCSVRows reads csvFn. typeMap converts the named columns to int,
// float64 or timestamp (RFC 3339); other columns stay strings. Malformed
// fixtures panic since they are programming errors in the test suite.
func NewCSVRows(csvFn string, typeMap map[string]string) *CSVRows {
	subLog := log.With().Str("CsvFn", csvFn).Logger()

	rawData, err := os.ReadFile(csvFn)
	if err != nil {
		subLog.Panic().Err(err).Msg("could not read file")
	}

	lines := strings.Split(string(rawData), "\n")
	if len(lines) < 2 {
		subLog.Panic().Int("NumLines", len(lines)).Msg("input file does not have enough lines, need at least 2 (header + trailing new line)")
	}
	if lines[len(lines)-1] != "" {
		subLog.Panic().Msg("input file is missing a trailing new line")
	}

	rows := &CSVRows{
		header: strings.Split(lines[0], ","),
		rows:   make([][]any, 0, len(lines)-2),
	}

	for _, ll := range lines[1 : len(lines)-1] {
		parts := strings.Split(ll, ",")
		if len(parts) != len(rows.header) {
			subLog.Panic().Str("Line", ll).Int("Want", len(rows.header)).Int("Got", len(parts)).Msg("wrong number of columns")
		}

		cols := make([]any, len(rows.header))
		for idx, val := range parts {
			cols[idx] = convert(subLog.With().Str("Column", rows.header[idx]).Logger(), typeMap[rows.header[idx]], val)
		}
		rows.rows = append(rows.rows, cols)
	}

	return rows
}

func convert(subLog zerolog.Logger, typeConv, val string) any {
	switch typeConv {
	case "int":
		parsed, err := strconv.Atoi(val)
		if err != nil {
			subLog.Panic().Err(err).Str("Val", val).Msg("could not convert val to int")
		}
		return parsed
	case "float64":
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			subLog.Panic().Err(err).Str("Val", val).Msg("could not convert val to float64")
		}
		return parsed
	case "timestamp":
		parsed, err := time.Parse(time.RFC3339, val)
		if err != nil {
			subLog.Panic().Err(err).Str("Val", val).Msg("could not convert val to RFC 3339 timestamp")
		}
		return parsed
	default:
		return val
	}
}

// Where keeps only the rows whose column equals val
func (csvRows *CSVRows) Where(column string, val any) *CSVRows {
	idx := -1
	for ii, name := range csvRows.header {
		if name == column {
			idx = ii
		}
	}
	if idx == -1 {
		log.Panic().Str("Column", column).Msg("no such column")
	}

	filtered := &CSVRows{header: csvRows.header, rows: make([][]any, 0, len(csvRows.rows))}
	for _, row := range csvRows.rows {
		if row[idx] == val {
			filtered.rows = append(filtered.rows, row)
		}
	}
	return filtered
}

// Len is the number of rows
func (csvRows *CSVRows) Len() int {
	return len(csvRows.rows)
}

func (csvRows *CSVRows) Rows() *pgxmock.Rows {
	r := pgxmock.NewRows(csvRows.header)
	for _, row := range csvRows.rows {
		r.AddRow(row...)
	}
	return r
}

// ProfileTypes maps the career_profiles columns to their Go types
var ProfileTypes = map[string]string{
	"seasons_played": "int",
	"lifetime_cagr":  "float64",
	"best_sharpe":    "float64",
	"worst_drawdown": "float64",
	"total_pnl":      "float64",
	"updated_at":     "timestamp",
}

// MockProfileLoad expects one career profile lookup for player answered
// from the fixture in fn
func MockProfileLoad(db pgxmock.PgxConnIface, fn string, player string) {
	db.ExpectBegin()
	db.ExpectQuery("SELECT player_name, title").WithArgs(player).WillReturnRows(
		NewCSVRows(fn, ProfileTypes).Where("player_name", player).Rows())
	db.ExpectCommit()
}
