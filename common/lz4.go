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
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

var (
	ErrCorruptPayload = errors.New("cached payload is not a valid lz4 frame")
)

// Compress wraps a cached season summary in an lz4 frame. Summaries are
// small and written once per seed, so the fastest level is used.
func Compress(in []byte) ([]byte, error) {
	out := bytes.NewBuffer(make([]byte, 0, len(in)/2))
	zw := lz4.NewWriter(out)
	if err := zw.Apply(lz4.CompressionLevelOption(lz4.Fast), lz4.ChecksumOption(true)); err != nil {
		return nil, err
	}

	if _, err := zw.Write(in); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Decompress unwraps a frame written by Compress. Anything else, including a
// truncated frame read back from redis, is ErrCorruptPayload.
func Decompress(in []byte) ([]byte, error) {
	out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(in)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorruptPayload, err)
	}
	return out, nil
}
