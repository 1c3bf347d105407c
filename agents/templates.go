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

package agents

import (
	"embed"

	"github.com/rs/zerolog/log"
)

//go:embed templates/*.toml
var templates embed.FS

var (
	defaultFedStatements *FedChair
	defaultHeadlines     *HeadlineWriter
	defaultShortSeller   *ShortSeller
)

func init() {
	defaultFedStatements = mustLoad("templates/fed.toml", ParseFedStatements)
	defaultHeadlines = mustLoad("templates/headlines.toml", ParseHeadlines)
	defaultShortSeller = mustLoad("templates/shortseller.toml", ParseShortSeller)
}

func mustLoad[T any](fn string, parse func([]byte) (T, error)) T {
	doc, err := templates.ReadFile(fn)
	if err != nil {
		log.Panic().Err(err).Str("File", fn).Msg("failed to read embedded template file")
	}
	result, err := parse(doc)
	if err != nil {
		log.Panic().Err(err).Str("File", fn).Msg("failed to parse embedded template file")
	}
	return result
}
