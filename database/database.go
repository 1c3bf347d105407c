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

// Package database manages the postgres connection pool used to persist
// player careers.
package database

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog/log"
)

// PgxIface is the subset of a pgx pool the rest of the code relies on.
// pgxpool.Pool and pgxmock connections both satisfy it.
type PgxIface interface {
	Begin(context.Context) (pgx.Tx, error)
}

var (
	ErrNotConnected = errors.New("database is not connected")
)

const schema = `CREATE TABLE IF NOT EXISTS career_profiles (
	player_name TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	seasons_played INTEGER NOT NULL DEFAULT 0,
	lifetime_cagr DOUBLE PRECISION NOT NULL DEFAULT 0,
	best_sharpe DOUBLE PRECISION NOT NULL DEFAULT 0,
	worst_drawdown DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_pnl DOUBLE PRECISION NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

var (
	pool             PgxIface
	openTransactions map[string]string
	trxMu            sync.Mutex
)

func SetPool(myPool PgxIface) {
	trxMu.Lock()
	defer trxMu.Unlock()
	openTransactions = make(map[string]string)
	pool = myPool
}

// Connect opens the pool for url and verifies the server is reachable
func Connect(ctx context.Context, url string) error {
	myPool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not connect to pool")
		return err
	}
	if err = myPool.Ping(ctx); err != nil {
		log.Error().Stack().Err(err).Msg("could not ping database server")
		return err
	}
	SetPool(myPool)
	return nil
}

// Connected reports whether a pool has been configured
func Connected() bool {
	return pool != nil
}

// Migrate creates any missing tables
func Migrate(ctx context.Context) error {
	trx, err := Begin(ctx)
	if err != nil {
		return err
	}
	if _, err := trx.Exec(ctx, schema); err != nil {
		log.Error().Stack().Err(err).Msg("could not create career_profiles table")
		if err := trx.Rollback(ctx); err != nil {
			log.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return err
	}
	return trx.Commit(ctx)
}

// Begin starts a transaction that is tracked until it is committed or
// rolled back so leaked transactions can be found with LogOpenTransactions
func Begin(ctx context.Context) (pgx.Tx, error) {
	if pool == nil {
		return nil, ErrNotConnected
	}

	trx, err := pool.Begin(ctx)
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not begin transaction")
		return nil, err
	}

	_, file, lineno, ok := runtime.Caller(1)
	caller := fmt.Sprintf("[%v] %s:%d", ok, file, lineno)
	trxID := uuid.New().String()

	trxMu.Lock()
	openTransactions[trxID] = caller
	trxMu.Unlock()

	return &trackedTx{Tx: trx, id: trxID}, nil
}

// LogOpenTransactions writes an INFO log for each open transaction
func LogOpenTransactions() {
	trxMu.Lock()
	defer trxMu.Unlock()
	for k, v := range openTransactions {
		log.Info().Str("TrxId", k).Str("Caller", v).Msg("open transaction")
	}
}

// OpenTransactions is the number of transactions begun but not finished
func OpenTransactions() int {
	trxMu.Lock()
	defer trxMu.Unlock()
	return len(openTransactions)
}
