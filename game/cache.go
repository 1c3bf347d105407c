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

package game

import (
	"context"
	"encoding/hex"
	"errors"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/zeebo/blake3"

	"github.com/penny-vault/pv-arena/common"
)

// SeasonCache memoizes headless season summaries. A season is a pure
// function of its request so the request itself is the key.
type SeasonCache struct {
	cache *common.Cache
}

// NewSeasonCache stores summaries in cache
func NewSeasonCache(cache *common.Cache) *SeasonCache {
	return &SeasonCache{cache: cache}
}

// Key is the blake3 digest of the request's JSON encoding
func (sc *SeasonCache) Key(req SeasonRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	digest := blake3.Sum256(data)
	return "season:" + hex.EncodeToString(digest[:]), nil
}

// RunSeason returns the cached summary for req or plays the season and
// caches the result. Cache failures are logged and never fail the season.
func (sc *SeasonCache) RunSeason(ctx context.Context, req SeasonRequest) (summary *Summary, hit bool, err error) {
	key, err := sc.Key(req)
	if err != nil {
		return nil, false, err
	}

	subLog := log.With().Str("Key", key).Logger()

	data, err := sc.cache.Get(ctx, key)
	switch {
	case err == nil:
		cached := &Summary{}
		decodeErr := json.Unmarshal(data, cached)
		if decodeErr == nil {
			subLog.Debug().Msg("season cache hit")
			return cached, true, nil
		}
		subLog.Warn().Err(decodeErr).Msg("discarding unreadable cached season")
	case !errors.Is(err, common.ErrCacheMiss):
		subLog.Warn().Err(err).Msg("season cache lookup failed")
	}

	summary, err = RunSeason(ctx, req)
	if err != nil {
		return nil, false, err
	}

	data, err = json.Marshal(summary)
	if err != nil {
		subLog.Warn().Err(err).Msg("could not encode season summary")
		return summary, false, nil
	}
	if err := sc.cache.Set(ctx, key, data); err != nil {
		subLog.Warn().Err(err).Msg("could not cache season summary")
	}

	return summary, false, nil
}
