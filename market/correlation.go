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
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// correlationMatrices are the per-regime sector correlations in Sectors
// order. Comovement rises as the regime becomes more stressed.
var correlationMatrices = map[Regime][][]float64{
	Bull: {
		// tech  energy fin   cons  indus
		{1.00, 0.30, 0.40, 0.35, 0.45},
		{0.30, 1.00, 0.25, 0.20, 0.50},
		{0.40, 0.25, 1.00, 0.30, 0.35},
		{0.35, 0.20, 0.30, 1.00, 0.30},
		{0.45, 0.50, 0.35, 0.30, 1.00},
	},
	Bear: {
		{1.00, 0.50, 0.60, 0.55, 0.65},
		{0.50, 1.00, 0.45, 0.40, 0.60},
		{0.60, 0.45, 1.00, 0.50, 0.55},
		{0.55, 0.40, 0.50, 1.00, 0.50},
		{0.65, 0.60, 0.55, 0.50, 1.00},
	},
	Recession: {
		{1.00, 0.65, 0.70, 0.60, 0.75},
		{0.65, 1.00, 0.60, 0.55, 0.70},
		{0.70, 0.60, 1.00, 0.65, 0.65},
		{0.60, 0.55, 0.65, 1.00, 0.60},
		{0.75, 0.70, 0.65, 0.60, 1.00},
	},
	Recovery: {
		{1.00, 0.35, 0.45, 0.30, 0.40},
		{0.35, 1.00, 0.30, 0.25, 0.45},
		{0.45, 0.30, 1.00, 0.35, 0.40},
		{0.30, 0.25, 0.35, 1.00, 0.35},
		{0.40, 0.45, 0.40, 0.35, 1.00},
	},
}

// choleskyFactors are computed once at startup; the source matrices never
// change so there is nothing to invalidate.
var choleskyFactors = mustFactorize(correlationMatrices)

func mustFactorize(matrices map[Regime][][]float64) map[Regime]*mat.TriDense {
	factors, err := Factorize(matrices)
	if err != nil {
		log.Panic().Err(err).Msg("invalid correlation configuration")
	}
	return factors
}

// Factorize computes the lower triangular Cholesky factor of every regime's
// correlation matrix. Each regime must have a square, symmetric, positive
// definite matrix with unit diagonal sized to the number of sectors.
func Factorize(matrices map[Regime][][]float64) (map[Regime]*mat.TriDense, error) {
	n := len(Sectors)
	factors := make(map[Regime]*mat.TriDense, len(Regimes))
	for _, regime := range Regimes {
		rows, ok := matrices[regime]
		if !ok {
			return nil, fmt.Errorf("%w: no matrix for %s regime", ErrMalformedMatrix, regime)
		}
		if len(rows) != n {
			return nil, fmt.Errorf("%w: %s regime has %d rows, want %d", ErrMalformedMatrix, regime, len(rows), n)
		}

		data := make([]float64, 0, n*n)
		for ii, row := range rows {
			if len(row) != n {
				return nil, fmt.Errorf("%w: %s regime row %d has %d columns, want %d", ErrMalformedMatrix, regime, ii, len(row), n)
			}
			if row[ii] != 1.0 {
				return nil, fmt.Errorf("%w: %s regime diagonal [%d] is %.3f", ErrMalformedMatrix, regime, ii, row[ii])
			}
			for jj := range row {
				if math.Abs(row[jj]-rows[jj][ii]) > 1e-12 {
					return nil, fmt.Errorf("%w: %s regime is not symmetric at [%d,%d]", ErrMalformedMatrix, regime, ii, jj)
				}
			}
			data = append(data, row...)
		}

		var chol mat.Cholesky
		if ok := chol.Factorize(mat.NewSymDense(n, data)); !ok {
			return nil, fmt.Errorf("%w: %s regime", ErrNotPositiveDefinite, regime)
		}
		lower := mat.NewTriDense(n, mat.Lower, nil)
		chol.LTo(lower)
		factors[regime] = lower
	}
	return factors, nil
}

// Correlation returns a copy of the correlation matrix used for regime
func Correlation(regime Regime) [][]float64 {
	src := correlationMatrices[regime]
	out := make([][]float64, len(src))
	for ii, row := range src {
		out[ii] = append([]float64(nil), row...)
	}
	return out
}

// Sample draws one standard normal per sector, correlated
// according to the regime's matrix. The independent draws are taken in
// Sectors order, one generator draw each.
func Sample(regime Regime, rng *rand.Rand) map[Sector]float64 {
	n := len(Sectors)
	independent := mat.NewVecDense(n, nil)
	for ii := 0; ii < n; ii++ {
		independent.SetVec(ii, StandardNormal(rng))
	}

	var correlated mat.VecDense
	correlated.MulVec(choleskyFactors[regime], independent)

	z := make(map[Sector]float64, n)
	for ii, s := range Sectors {
		z[s] = correlated.AtVec(ii)
	}
	return z
}
