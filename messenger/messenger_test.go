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

package messenger_test

import (
	"errors"

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-arena/game"
	"github.com/penny-vault/pv-arena/market"
	"github.com/penny-vault/pv-arena/messenger"
)

var _ = Describe("Season messages", func() {
	var cfg game.Config

	BeforeEach(func() {
		cfg = game.DefaultConfig()
		cfg.Seed = 42
	})

	encode := func(msg messenger.SeasonMessage) []byte {
		data, err := json.Marshal(msg)
		Expect(err).To(BeNil())
		return data
	}

	It("accepts a playable request", func() {
		equal := market.EqualWeight()
		msg, err := messenger.DecodeSeasonMessage(encode(messenger.SeasonMessage{
			RequestID: "abc",
			Request:   game.SeasonRequest{Config: cfg, Allocation: &equal},
		}))
		Expect(err).To(BeNil())
		Expect(msg.RequestID).To(Equal("abc"))
		Expect(msg.Request.Config.Seed).To(Equal(uint64(42)))
		Expect(msg.Request.Allocation.Weight(market.Tech)).To(Equal(20.0))
	})

	DescribeTable("rejects unplayable requests",
		func(data func() []byte) {
			_, err := messenger.DecodeSeasonMessage(data())
			Expect(errors.Is(err, messenger.ErrInvalidRequest)).To(BeTrue(), "got %v", err)
		},
		Entry("not json", func() []byte { return []byte("{") }),
		Entry("no request id", func() []byte {
			return encode(messenger.SeasonMessage{Request: game.SeasonRequest{Config: cfg, Autopilot: "value"}})
		}),
		Entry("no pilot", func() []byte {
			return encode(messenger.SeasonMessage{RequestID: "x", Request: game.SeasonRequest{Config: cfg}})
		}),
		Entry("bad config", func() []byte {
			bad := cfg
			bad.TotalWeeks = 0
			return encode(messenger.SeasonMessage{RequestID: "x", Request: game.SeasonRequest{Config: bad, Autopilot: "value"}})
		}),
		Entry("allocation beyond the exposure limits", func() []byte {
			var levered market.Allocation
			Expect(json.Unmarshal([]byte(`{"tech":900,"energy":-400,"financials":-400,"consumer":0,"industrials":0}`), &levered)).To(Succeed())
			return encode(messenger.SeasonMessage{RequestID: "x", Request: game.SeasonRequest{Config: cfg, Allocation: &levered}})
		}),
		Entry("invalid allocation", func() []byte {
			return []byte(`{"request_id":"x","request":{"autopilot":"","allocation":{"tech":150}}}`)
		}),
	)

	It("refuses to publish before connecting", func() {
		err := messenger.PublishSeasonRequest("abc", game.SeasonRequest{Config: cfg, Autopilot: "value"})
		Expect(errors.Is(err, messenger.ErrNotInitialized)).To(BeTrue())
		_, err = messenger.NextSeasonRequest()
		Expect(errors.Is(err, messenger.ErrNotInitialized)).To(BeTrue())
	})
})
