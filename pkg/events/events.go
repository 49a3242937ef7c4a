/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package events publishes device state transitions and alerts as
// CloudEvents on a NATS JetStream stream. Publishing is optional; the
// engine treats a nil Publisher as disabled.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/fieldwatch/pkg/logger"
	"github.com/carverauto/fieldwatch/pkg/models"
)

const (
	eventSource = "fieldwatch/monitor"

	eventTypeStatus = "com.carverauto.fieldwatch.device.status"
	eventTypeAlert  = "com.carverauto.fieldwatch.device.alert"

	subjectStatus      = "events.device.status"
	subjectPower       = "events.device.power"
	subjectTemperature = "events.device.temperature"
)

//go:generate mockgen -destination=mock_events.go -package=events github.com/carverauto/fieldwatch/pkg/events Publisher

// Publisher emits device events to the stream.
type Publisher interface {
	PublishStatusChange(ctx context.Context, data *models.DeviceStatusEventData) error
	PublishAlert(ctx context.Context, data *models.DeviceAlertEventData) error
}

// Config holds NATS connection settings for the event stream.
type Config struct {
	URL    string `json:"url"`
	Stream string `json:"stream"`
}

// JetStreamPublisher implements Publisher on a JetStream context.
type JetStreamPublisher struct {
	js     jetstream.JetStream
	logger logger.Logger
}

// Connect dials NATS, ensures the stream exists, and returns a publisher
// plus the owned connection for shutdown.
func Connect(ctx context.Context, config *Config, log logger.Logger) (*JetStreamPublisher, *nats.Conn, error) {
	componentLog := log.WithComponent("events")

	nc, err := nats.Connect(config.URL,
		nats.Name("fieldwatch"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			componentLog.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			componentLog.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("create JetStream context: %w", err)
	}

	if _, err := js.Stream(ctx, config.Stream); err != nil {
		_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:     config.Stream,
			Subjects: []string{"events.device.*"},
		})
		if err != nil {
			nc.Close()
			return nil, nil, fmt.Errorf("create or get stream %s: %w", config.Stream, err)
		}

		componentLog.Info().Str("stream", config.Stream).Msg("Created JetStream event stream")
	}

	return &JetStreamPublisher{js: js, logger: componentLog}, nc, nil
}

// PublishStatusChange publishes a confirmed status transition.
func (p *JetStreamPublisher) PublishStatusChange(ctx context.Context, data *models.DeviceStatusEventData) error {
	return p.publish(ctx, statusEvent(data))
}

// PublishAlert publishes a power or temperature alert.
func (p *JetStreamPublisher) PublishAlert(ctx context.Context, data *models.DeviceAlertEventData) error {
	return p.publish(ctx, alertEvent(data))
}

func statusEvent(data *models.DeviceStatusEventData) models.CloudEvent {
	ts := data.Timestamp

	return models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          eventSource,
		Type:            eventTypeStatus,
		DataContentType: "application/json",
		Subject:         subjectStatus,
		Time:            &ts,
		Data:            data,
	}
}

func alertEvent(data *models.DeviceAlertEventData) models.CloudEvent {
	ts := data.Timestamp

	return models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          eventSource,
		Type:            eventTypeAlert,
		DataContentType: "application/json",
		Subject:         subjectForKind(data.Kind),
		Time:            &ts,
		Data:            data,
	}
}

func subjectForKind(kind models.NotificationKind) string {
	switch kind {
	case models.KindPowerLost, models.KindPowerRestored:
		return subjectPower
	case models.KindHighTemperature, models.KindTemperatureNormal:
		return subjectTemperature
	default:
		return subjectStatus
	}
}

func (p *JetStreamPublisher) publish(ctx context.Context, event models.CloudEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ack, err := p.js.Publish(ctx, event.Subject, eventBytes)
	if err != nil {
		return fmt.Errorf("publish event to %s: %w", event.Subject, err)
	}

	p.logger.Debug().
		Str("event_id", event.ID).
		Str("subject", event.Subject).
		Uint64("seq", ack.Sequence).
		Msg("Published event")

	return nil
}
