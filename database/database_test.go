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

package database_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pashagolub/pgxmock"

	"github.com/penny-vault/pv-arena/database"
)

var _ = Describe("Database", func() {
	var (
		dbPool pgxmock.PgxConnIface
		ctx    context.Context
	)

	BeforeEach(func() {
		var err error
		dbPool, err = pgxmock.NewConn()
		Expect(err).To(BeNil())
		database.SetPool(dbPool)
		ctx = context.Background()
	})

	AfterEach(func() {
		Expect(dbPool.ExpectationsWereMet()).To(Succeed())
	})

	It("refuses to begin without a pool", func() {
		database.SetPool(nil)
		Expect(database.Connected()).To(BeFalse())
		_, err := database.Begin(ctx)
		Expect(errors.Is(err, database.ErrNotConnected)).To(BeTrue())
	})

	It("tracks transactions until they finish", func() {
		dbPool.ExpectBegin()
		dbPool.ExpectCommit()
		dbPool.ExpectBegin()
		dbPool.ExpectRollback()

		first, err := database.Begin(ctx)
		Expect(err).To(BeNil())
		second, err := database.Begin(ctx)
		Expect(err).To(BeNil())
		Expect(database.OpenTransactions()).To(Equal(2))

		Expect(first.Commit(ctx)).To(Succeed())
		Expect(database.OpenTransactions()).To(Equal(1))
		Expect(second.Rollback(ctx)).To(Succeed())
		Expect(database.OpenTransactions()).To(Equal(0))
	})

	It("creates the career table", func() {
		dbPool.ExpectBegin()
		dbPool.ExpectExec("CREATE TABLE IF NOT EXISTS career_profiles").WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
		dbPool.ExpectCommit()

		Expect(database.Migrate(ctx)).To(Succeed())
		Expect(database.OpenTransactions()).To(Equal(0))
	})

	It("rolls back a failed migration", func() {
		dbPool.ExpectBegin()
		dbPool.ExpectExec("CREATE TABLE IF NOT EXISTS career_profiles").WillReturnError(errors.New("permission denied"))
		dbPool.ExpectRollback()

		Expect(database.Migrate(ctx)).ToNot(Succeed())
		Expect(database.OpenTransactions()).To(Equal(0))
	})
})
