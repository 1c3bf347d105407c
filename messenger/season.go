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

package messenger

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/penny-vault/pv-arena/game"
)

var (
	ErrInvalidRequest = errors.New("invalid season request")
)

// SeasonMessage is a queued request to simulate a season
type SeasonMessage struct {
	RequestID   string             `json:"request_id"`
	RequestTime time.Time          `json:"request_time"`
	Request     game.SeasonRequest `json:"request"`
}

// ResultMessage is the reply published once a queued season has been played
type ResultMessage struct {
	RequestID string        `json:"request_id"`
	Summary   *game.Summary `json:"summary,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// DecodeSeasonMessage parses a queued request and checks that it can be
// played
func DecodeSeasonMessage(data []byte) (*SeasonMessage, error) {
	msg := &SeasonMessage{}
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	if msg.RequestID == "" {
		return nil, fmt.Errorf("%w: missing request id", ErrInvalidRequest)
	}
	if _, err := msg.Request.Pilot(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	if err := msg.Request.Config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	return msg, nil
}

// PublishSeasonRequest queues req on nats.requests_subject
func PublishSeasonRequest(requestID string, req game.SeasonRequest) error {
	if jetStream == nil {
		return ErrNotInitialized
	}

	data, err := json.Marshal(SeasonMessage{
		RequestID:   requestID,
		RequestTime: time.Now().UTC(),
		Request:     req,
	})
	if err != nil {
		log.Error().Err(err).Msg("could not serialize request to JSON")
		return err
	}

	if _, err := jetStream.Publish(viper.GetString("nats.requests_subject"), data); err != nil {
		log.Error().Err(err).Str("RequestID", requestID).Msg("could not publish a season request")
		return err
	}
	return nil
}

// NextSeasonRequest fetches a single queued request. It returns nil, nil
// when the queue is empty. The caller must Ack or Nak the returned message.
func NextSeasonRequest() (*nats.Msg, error) {
	if jetStream == nil {
		return nil, ErrNotInitialized
	}

	sub, err := jetStream.PullSubscribe(viper.GetString("nats.requests_subject"), viper.GetString("nats.requests_consumer"))
	if err != nil {
		log.Error().Err(err).Msg("could not connect to durable consumer (note: make sure the consumer already exists)")
		return nil, err
	}

	msgs, err := sub.Fetch(1)
	if err != nil {
		if errors.Is(err, nats.ErrTimeout) {
			log.Debug().Msg("no season requests available in queue")
			return nil, nil
		}
		log.Error().Err(err).Msg("could not fetch new messages")
		return nil, err
	}

	if len(msgs) == 0 {
		return nil, nil
	}
	return msgs[0], nil
}

// PublishResult reports the outcome of a queued season on
// nats.results_subject
func PublishResult(result ResultMessage) error {
	if jetStream == nil {
		return ErrNotInitialized
	}

	data, err := json.Marshal(result)
	if err != nil {
		log.Error().Err(err).Msg("could not serialize result to JSON")
		return err
	}

	if _, err := jetStream.Publish(viper.GetString("nats.results_subject"), data); err != nil {
		log.Error().Err(err).Str("RequestID", result.RequestID).Msg("could not publish season result")
		return err
	}
	return nil
}
