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

package common

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var (
	ErrCacheMiss = errors.New("key not in cache")
)

// CacheOptions configures a Cache. RedisURL is optional; without it only
// the in-process LRU is used.
type CacheOptions struct {
	LocalSize int
	RedisURL  string
	TTL       time.Duration
}

// Cache is a two level byte cache: an in-process LRU backed by an optional
// shared redis. Values are lz4 compressed at rest in both levels.
type Cache struct {
	local *lru.Cache
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCache creates a cache from explicit options
func NewCache(opts CacheOptions) (*Cache, error) {
	size := opts.LocalSize
	if size <= 0 {
		size = 128
	}
	local, err := lru.New(size)
	if err != nil {
		return nil, err
	}

	c := &Cache{
		local: local,
		ttl:   opts.TTL,
	}

	if opts.RedisURL != "" {
		opt, err := redis.ParseURL(opts.RedisURL)
		if err != nil {
			return nil, err
		}
		c.rdb = redis.NewClient(opt)
	}

	return c, nil
}

// SetupCache creates a cache from the cache.* configuration keys
func SetupCache() (*Cache, error) {
	opts := CacheOptions{
		LocalSize: viper.GetInt("cache.local_size"),
		TTL:       time.Duration(viper.GetInt("cache.ttl")) * time.Second,
	}
	if viper.GetBool("cache.redis") {
		opts.RedisURL = viper.GetString("cache.redis_url")
	}

	c, err := NewCache(opts)
	if err != nil {
		log.Error().Err(err).Msg("could not create cache")
		return nil, err
	}
	return c, nil
}

// Set stores value under key in every cache level
func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	compressed, err := Compress(value)
	if err != nil {
		return err
	}
	c.local.Add(key, compressed)

	if c.rdb != nil {
		return c.rdb.Set(ctx, key, compressed, c.ttl).Err()
	}
	return nil
}

// Get returns the value stored under key or ErrCacheMiss. A redis hit is
// promoted into the local LRU.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := c.local.Get(key); ok {
		return Decompress(v.([]byte))
	}

	if c.rdb == nil {
		return nil, ErrCacheMiss
	}

	val, err := c.rdb.GetEx(ctx, key, c.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	c.local.Add(key, val)
	return Decompress(val)
}

// Len is the number of entries held locally
func (c *Cache) Len() int {
	return c.local.Len()
}

// Close releases the redis connection, if any
func (c *Cache) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}
