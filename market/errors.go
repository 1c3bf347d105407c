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

package market

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAllocation = errors.New("invalid allocation")
	ErrUnknownSector     = errors.New("unknown sector")
	ErrUnknownState      = errors.New("unknown macro state")

	// validation failures all wrap ErrInvalidAllocation
	ErrNetExposure   = fmt.Errorf("%w: net exposure must be between 0%% and 100%%", ErrInvalidAllocation)
	ErrShortLimit    = fmt.Errorf("%w: short position exceeds per-sector limit", ErrInvalidAllocation)
	ErrGrossExposure = fmt.Errorf("%w: gross exposure exceeds limit", ErrInvalidAllocation)
	ErrMissingSector = fmt.Errorf("%w: allocation must include every sector", ErrInvalidAllocation)
	ErrExtraSector   = fmt.Errorf("%w: allocation names a sector that is not modeled", ErrInvalidAllocation)

	ErrMalformedMatrix     = errors.New("correlation matrix is malformed")
	ErrNotPositiveDefinite = errors.New("correlation matrix is not positive definite")
)
