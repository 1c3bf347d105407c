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

package career_test

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pashagolub/pgxmock"

	"github.com/penny-vault/pv-arena/career"
	"github.com/penny-vault/pv-arena/database"
	"github.com/penny-vault/pv-arena/pgxmockhelper"
)

var profileColumns = []string{"player_name", "title", "seasons_played", "lifetime_cagr", "best_sharpe", "worst_drawdown", "total_pnl", "updated_at"}

var _ = Describe("Store", func() {
	var (
		dbPool pgxmock.PgxConnIface
		ctx    context.Context
		when   time.Time
	)

	BeforeEach(func() {
		var err error
		dbPool, err = pgxmock.NewConn()
		Expect(err).To(BeNil())
		database.SetPool(dbPool)
		ctx = context.Background()
		when = time.Date(2022, 6, 1, 12, 0, 0, 0, time.UTC)
	})

	AfterEach(func() {
		Expect(dbPool.ExpectationsWereMet()).To(Succeed())
		Expect(database.OpenTransactions()).To(Equal(0))
	})

	It("should load a stored profile", func() {
		dbPool.ExpectBegin()
		dbPool.ExpectQuery("SELECT player_name, title").WithArgs("alice").WillReturnRows(
			pgxmock.NewRows(profileColumns).AddRow("alice", "Macro Operator", 4, 0.05, 0.9, -0.12, 4200.0, when))
		dbPool.ExpectCommit()

		p, err := career.Load(ctx, "alice")
		Expect(err).To(BeNil())
		Expect(p.Title).To(Equal(career.MacroOperator))
		Expect(p.SeasonsPlayed).To(Equal(4))
		Expect(p.WorstDrawDown).To(Equal(-0.12))
		Expect(p.UpdatedAt).To(Equal(when))
	})

	It("should return ErrProfileNotFound for a new player", func() {
		dbPool.ExpectBegin()
		dbPool.ExpectQuery("SELECT player_name, title").WithArgs("nobody").WillReturnError(pgx.ErrNoRows)
		dbPool.ExpectRollback()

		_, err := career.Load(ctx, "nobody")
		Expect(errors.Is(err, career.ErrProfileNotFound)).To(BeTrue())
	})

	It("should create a fresh profile when none is stored", func() {
		dbPool.ExpectBegin()
		dbPool.ExpectQuery("SELECT player_name, title").WithArgs("bob").WillReturnError(pgx.ErrNoRows)
		dbPool.ExpectRollback()

		p, err := career.LoadOrCreate(ctx, "bob")
		Expect(err).To(BeNil())
		Expect(p.Player).To(Equal("bob"))
		Expect(p.Title).To(Equal(career.RetailSpeculator))
	})

	It("should upsert a profile", func() {
		p := career.Profile{Player: "carol", Title: career.JuniorPM, SeasonsPlayed: 1, LifetimeCAGR: 0.1, BestSharpe: 0.5, WorstDrawDown: -0.08, TotalPnL: 100, UpdatedAt: when}
		dbPool.ExpectBegin()
		dbPool.ExpectExec("INSERT INTO career_profiles").
			WithArgs("carol", "Junior PM", 1, 0.1, 0.5, -0.08, 100.0, when).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		dbPool.ExpectCommit()

		Expect(career.Save(ctx, p)).To(Succeed())
	})

	It("should roll back a failed save", func() {
		dbPool.ExpectBegin()
		dbPool.ExpectExec("INSERT INTO career_profiles").WillReturnError(errors.New("disk full"))
		dbPool.ExpectRollback()

		Expect(career.Save(ctx, career.NewProfile("dave"))).ToNot(Succeed())
	})

	It("should record a season against the stored profile", func() {
		dbPool.ExpectBegin()
		dbPool.ExpectQuery("SELECT player_name, title").WithArgs("erin").WillReturnRows(
			pgxmock.NewRows(profileColumns).AddRow("erin", "Junior PM", 2, 0.05, 0.9, -0.12, 4200.0, when))
		dbPool.ExpectCommit()
		dbPool.ExpectBegin()
		dbPool.ExpectExec("INSERT INTO career_profiles").WillReturnResult(pgxmock.NewResult("INSERT", 1))
		dbPool.ExpectCommit()

		before, after, err := career.RecordSeason(ctx, "erin", season(0.11, 1.3, -0.2, 800))
		Expect(err).To(BeNil())
		Expect(before.SeasonsPlayed).To(Equal(2))
		Expect(after.SeasonsPlayed).To(Equal(3))
		Expect(after.LifetimeCAGR).To(Equal(0.07))
		Expect(after.Title).To(Equal(career.MacroOperator))
		Expect(after.TotalPnL).To(Equal(5000.0))
	})

	DescribeTable("should load fixture profiles",
		func(player string, title career.Title, seasons int) {
			pgxmockhelper.MockProfileLoad(dbPool, "testdata/career_profiles.csv", player)

			p, err := career.Load(ctx, player)
			Expect(err).To(BeNil())
			Expect(p.Player).To(Equal(player))
			Expect(p.Title).To(Equal(title))
			Expect(p.SeasonsPlayed).To(Equal(seasons))
		},
		Entry("a newcomer", "frank", career.RetailSpeculator, 0),
		Entry("a veteran", "grace", career.InstitutionalStrategist, 6),
		Entry("a legend", "heidi", career.LegendaryAllocator, 12),
		Entry("an unrecognized title is recomputed", "ivan", career.MacroOperator, 3),
	)
})
