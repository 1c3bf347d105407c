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

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/penny-vault/pv-arena/market"
)

var (
	ErrInputClosed = errors.New("input closed")
)

// prompter reads allocations and yes/no answers from a line oriented reader
type prompter struct {
	in     *bufio.Scanner
	out    io.Writer
	limits market.Limits
}

func newPrompter(in io.Reader, out io.Writer, limits market.Limits) *prompter {
	return &prompter{
		in:     bufio.NewScanner(in),
		out:    out,
		limits: limits,
	}
}

func (p *prompter) readLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", ErrInputClosed
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// parseAllocation accepts either sector=weight pairs ("tech=40,energy=20")
// or one weight per sector in display order ("40 20 20 10 10")
func parseAllocation(line string, limits market.Limits) (market.Allocation, error) {
	if strings.Contains(line, "=") {
		return market.ParseAllocation(line, limits)
	}

	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != len(market.Sectors) {
		return market.Allocation{}, fmt.Errorf("%w: expected %d weights, got %d", market.ErrInvalidAllocation, len(market.Sectors), len(fields))
	}

	weights := make(map[market.Sector]float64, len(market.Sectors))
	for ii, s := range market.Sectors {
		w, err := strconv.ParseFloat(strings.TrimSuffix(fields[ii], "%"), 64)
		if err != nil {
			return market.Allocation{}, fmt.Errorf("%w: weight for %s: %s", market.ErrInvalidAllocation, s.DisplayName(), err)
		}
		weights[s] = w
	}
	return market.NewAllocation(weights, limits)
}

// Allocation asks until a valid allocation is entered. An empty line
// repeats previous when there is one.
func (p *prompter) Allocation(previous market.Allocation) (market.Allocation, error) {
	names := make([]string, len(market.Sectors))
	for ii, s := range market.Sectors {
		names[ii] = s.DisplayName()
	}
	fmt.Fprintf(p.out, "Enter weights in percent for %s (or sector=weight pairs).\n", strings.Join(names, ", "))
	fmt.Fprintf(p.out, "Negative weights are shorts (min %.0f%%), gross exposure up to %.0f%%, anything unallocated is cash.\n",
		p.limits.MaxShort, p.limits.MaxGrossExposure)
	if !previous.IsZero() {
		fmt.Fprintf(p.out, "Press enter to keep %s.\n", previous)
	}

	for {
		line, err := p.readLine("> ")
		if err != nil {
			return market.Allocation{}, err
		}
		if line == "" {
			if !previous.IsZero() {
				return previous, nil
			}
			continue
		}

		alloc, err := parseAllocation(line, p.limits)
		if err != nil {
			fmt.Fprintf(p.out, "%s %s\n", red("Invalid allocation:"), err)
			continue
		}
		return alloc, nil
	}
}

// Confirm asks a yes/no question; anything but y or yes is no
func (p *prompter) Confirm(question string) (bool, error) {
	line, err := p.readLine(question + " [y/N] ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
