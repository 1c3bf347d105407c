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

package database

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// trackedTx removes itself from the open transaction log when it finishes
type trackedTx struct {
	pgx.Tx
	id string
}

func (t *trackedTx) done() {
	trxMu.Lock()
	delete(openTransactions, t.id)
	trxMu.Unlock()
}

func (t *trackedTx) Commit(ctx context.Context) error {
	t.done()
	return t.Tx.Commit(ctx)
}

func (t *trackedTx) Rollback(ctx context.Context) error {
	t.done()
	return t.Tx.Rollback(ctx)
}
