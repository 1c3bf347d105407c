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
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
)

// Set at release time with
//
//	go build -ldflags "-X github.com/penny-vault/pv-arena/common.commitHash=$(git rev-parse --short HEAD) -X github.com/penny-vault/pv-arena/common.buildDate=$(date -u +%Y-%m-%d)"
var (
	commitHash string
	buildDate  string
)

const programName = "pvarena"

// Version is a SemVer 2.0.0 build version
type Version struct {
	Major  int
	Minor  int
	Patch  int
	Suffix string // pre-release tag, blank for releases
}

func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Suffix == "" {
		return s
	}
	s += "-" + v.Suffix
	if commitHash != "" {
		s += "+" + strings.ToLower(commitHash)
	}
	return s
}

// Dependency is one module compiled into the binary
type Dependency struct {
	Path    string `json:"path"`
	Version string `json:"version"`
}

// BuildInfo describes the running pvarena binary
type BuildInfo struct {
	Program      string       `json:"program"`
	Version      string       `json:"version"`
	Platform     string       `json:"platform"`
	GoVersion    string       `json:"goVersion"`
	Commit       string       `json:"commit,omitempty"`
	BuildDate    string       `json:"buildDate,omitempty"`
	Dependencies []Dependency `json:"dependencies"`
}

// ReadBuildInfo collects the version, link-time stamps and module list of
// the running binary. Dependencies are sorted by module path.
func ReadBuildInfo() BuildInfo {
	info := BuildInfo{
		Program:      programName,
		Version:      "v" + CurrentVersion.String(),
		Platform:     runtime.GOOS + "/" + runtime.GOARCH,
		GoVersion:    runtime.Version(),
		Commit:       commitHash,
		BuildDate:    buildDate,
		Dependencies: []Dependency{},
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range bi.Deps {
			info.Dependencies = append(info.Dependencies, Dependency{Path: dep.Path, Version: dep.Version})
		}
	}
	sort.Slice(info.Dependencies, func(i, j int) bool {
		return info.Dependencies[i].Path < info.Dependencies[j].Path
	})

	return info
}

// String renders the banner printed by "pvarena version"
func (b BuildInfo) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s (%s, %s)\n", b.Program, b.Version, b.Platform, b.GoVersion)

	commit := b.Commit
	if commit == "" {
		commit = "unknown"
	}
	date := b.BuildDate
	if date == "" {
		date = "unknown"
	}
	fmt.Fprintf(&sb, "commit %s, built %s\n", commit, date)

	if len(b.Dependencies) > 0 {
		sb.WriteString("\nmodules:\n")
		for _, dep := range b.Dependencies {
			fmt.Fprintf(&sb, "  %s %s\n", dep.Path, dep.Version)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// BuildVersionString is the version banner for the running binary
func BuildVersionString() string {
	return ReadBuildInfo().String()
}
