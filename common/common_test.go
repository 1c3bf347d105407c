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

package common_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/penny-vault/pv-arena/common"
)

var _ = Describe("Cache", func() {
	var (
		ctx   context.Context
		cache *common.Cache
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		cache, err = common.NewCache(common.CacheOptions{LocalSize: 2})
		Expect(err).To(BeNil())
	})

	AfterEach(func() {
		Expect(cache.Close()).To(Succeed())
	})

	It("returns what was stored", func() {
		payload := bytes.Repeat([]byte("season summary "), 100)
		Expect(cache.Set(ctx, "a", payload)).To(Succeed())

		val, err := cache.Get(ctx, "a")
		Expect(err).To(BeNil())
		Expect(val).To(Equal(payload))
	})

	It("reports a miss for unknown keys", func() {
		_, err := cache.Get(ctx, "missing")
		Expect(errors.Is(err, common.ErrCacheMiss)).To(BeTrue())
	})

	It("evicts the least recently used entry", func() {
		Expect(cache.Set(ctx, "a", []byte("1"))).To(Succeed())
		Expect(cache.Set(ctx, "b", []byte("2"))).To(Succeed())
		_, err := cache.Get(ctx, "a")
		Expect(err).To(BeNil())
		Expect(cache.Set(ctx, "c", []byte("3"))).To(Succeed())

		Expect(cache.Len()).To(Equal(2))
		_, err = cache.Get(ctx, "b")
		Expect(errors.Is(err, common.ErrCacheMiss)).To(BeTrue())
		val, err := cache.Get(ctx, "a")
		Expect(err).To(BeNil())
		Expect(val).To(Equal([]byte("1")))
	})

	It("rejects a malformed redis url", func() {
		_, err := common.NewCache(common.CacheOptions{LocalSize: 2, RedisURL: "not a url"})
		Expect(err).ToNot(BeNil())
	})
})

var _ = Describe("Compression", func() {
	It("round trips arbitrary bytes", func() {
		in := []byte(`{"player":"Player","seed":42}`)
		compressed, err := common.Compress(in)
		Expect(err).To(BeNil())
		out, err := common.Decompress(compressed)
		Expect(err).To(BeNil())
		Expect(out).To(Equal(in))
	})

	It("shrinks repetitive payloads", func() {
		in := bytes.Repeat([]byte("0.0123,"), 1000)
		compressed, err := common.Compress(in)
		Expect(err).To(BeNil())
		Expect(len(compressed)).To(BeNumerically("<", len(in)/4))
	})

	It("rejects data that is not an lz4 frame", func() {
		_, err := common.Decompress([]byte("season:not-compressed"))
		Expect(errors.Is(err, common.ErrCorruptPayload)).To(BeTrue())
	})
})

var _ = Describe("Version", func() {
	It("identifies the pvarena binary", func() {
		info := common.ReadBuildInfo()
		Expect(info.Program).To(Equal("pvarena"))
		Expect(info.Version).To(Equal("v" + common.CurrentVersion.String()))
		Expect(info.String()).To(HavePrefix("pvarena v"))
		Expect(info.String()).To(ContainSubstring("commit unknown"))
	})

	It("formats pre-release versions", func() {
		Expect(common.Version{Major: 1, Minor: 2, Patch: 3}.String()).To(Equal("1.2.3"))
		Expect(common.Version{Major: 0, Minor: 4, Patch: 0, Suffix: "rc1"}.String()).To(Equal("0.4.0-rc1"))
	})
})

var _ = Describe("Logging", func() {
	AfterEach(func() {
		viper.Reset()
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
		log.Logger = log.Output(GinkgoWriter)
	})

	It("writes to a log file at the configured level", func() {
		fn := filepath.Join(GinkgoT().TempDir(), "pvarena.log")
		viper.Set("log.level", "debug")
		viper.Set("log.output", fn)
		Expect(common.SetupLogging()).To(Succeed())
		Expect(zerolog.GlobalLevel()).To(Equal(zerolog.DebugLevel))

		log.Debug().Msg("hello from the test")
		data, err := os.ReadFile(fn)
		Expect(err).To(BeNil())
		Expect(string(data)).To(ContainSubstring("hello from the test"))
	})

	It("falls back to warning for unknown levels", func() {
		viper.Set("log.level", "chatty")
		viper.Set("log.output", "stderr")
		Expect(common.SetupLogging()).To(Succeed())
		Expect(zerolog.GlobalLevel()).To(Equal(zerolog.WarnLevel))
	})

	It("fails when the log file cannot be opened", func() {
		viper.Set("log.output", filepath.Join(GinkgoT().TempDir(), "missing", "dir", "x.log"))
		Expect(common.SetupLogging()).ToNot(Succeed())
	})
})
