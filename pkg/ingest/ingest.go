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

// Package ingest consumes device telemetry from MQTT: heartbeats refresh
// last-seen timestamps, temperature samples are stored, and explicit ON/OFF
// power reports are forwarded to the monitoring engine. Malformed payloads
// and unregistered devices are logged and dropped.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/carverauto/fieldwatch/pkg/db"
	"github.com/carverauto/fieldwatch/pkg/logger"
	"github.com/carverauto/fieldwatch/pkg/models"
)

const (
	connectTimeout       = 10 * time.Second
	connectRetryInterval = 5 * time.Second
	disconnectQuiesceMs  = 1000
	subscribeQoS         = 1
)

var (
	ErrMalformedPayload = errors.New("malformed telemetry payload")
	ErrConnectTimeout   = errors.New("mqtt connect timeout")
)

// PowerHandler receives validated power events. The monitoring engine
// implements it.
type PowerHandler interface {
	HandlePowerEvent(ctx context.Context, event *models.PowerEvent) error
}

// Config holds MQTT consumer configuration.
type Config struct {
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username,omitempty"`
	Password    string `json:"password,omitempty"`
	TopicPrefix string `json:"topic_prefix"`
}

// SetDefaults fills zero-valued fields.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "fieldwatch-ingest"
	}

	if c.TopicPrefix == "" {
		c.TopicPrefix = "fieldwatch"
	}
}

// telemetry is the JSON body shared by all three topics. Unknown fields are
// ignored.
type telemetry struct {
	DeviceID    string     `json:"device_id"`
	State       string     `json:"state,omitempty"`
	Temperature *float64   `json:"temperature,omitempty"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}

// Consumer subscribes to the heartbeat, power, and temperature topics under
// the configured prefix.
type Consumer struct {
	config Config
	db     db.Service
	power  PowerHandler
	client pahomqtt.Client
	logger logger.Logger
	now    func() time.Time
}

// NewConsumer builds a consumer. Connect happens in Start.
func NewConsumer(config Config, database db.Service, power PowerHandler, log logger.Logger) *Consumer {
	config.SetDefaults()

	return &Consumer{
		config: config,
		db:     database,
		power:  power,
		logger: log.WithComponent("ingest"),
		now:    time.Now,
	}
}

// Start connects to the broker and subscribes. Subscriptions are re-issued
// on every reconnect.
func (c *Consumer) Start(ctx context.Context) error {
	opts := pahomqtt.NewClientOptions().
		AddBroker(c.config.Broker).
		SetClientID(c.config.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(connectRetryInterval).
		SetOnConnectHandler(func(client pahomqtt.Client) {
			c.logger.Info().Str("broker", c.config.Broker).Msg("MQTT connected")
			c.subscribe(ctx, client)
		}).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			c.logger.Warn().Err(err).Msg("MQTT connection lost")
		})

	if c.config.Username != "" {
		opts.SetUsername(c.config.Username)
		opts.SetPassword(c.config.Password)
	}

	client := pahomqtt.NewClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return ErrConnectTimeout
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}

	c.client = client

	return nil
}

// Stop disconnects from the broker.
func (c *Consumer) Stop() {
	if c.client != nil {
		c.client.Disconnect(disconnectQuiesceMs)
		c.logger.Info().Msg("MQTT consumer stopped")
	}
}

func (c *Consumer) subscribe(ctx context.Context, client pahomqtt.Client) {
	topics := map[string]func(ctx context.Context, payload []byte) error{
		c.config.TopicPrefix + "/heartbeat":   c.handleHeartbeat,
		c.config.TopicPrefix + "/power":       c.handlePower,
		c.config.TopicPrefix + "/temperature": c.handleTemperature,
	}

	for topic, handler := range topics {
		token := client.Subscribe(topic, subscribeQoS, func(_ pahomqtt.Client, msg pahomqtt.Message) {
			if err := handler(ctx, msg.Payload()); err != nil {
				c.logger.Warn().Err(err).
					Str("topic", msg.Topic()).
					Msg("Dropping telemetry message")
			}
		})
		if !token.WaitTimeout(connectTimeout) || token.Error() != nil {
			c.logger.Error().Err(token.Error()).Str("topic", topic).Msg("MQTT subscribe failed")
			continue
		}

		c.logger.Info().Str("topic", topic).Msg("Subscribed")
	}
}

func (c *Consumer) handleHeartbeat(ctx context.Context, payload []byte) error {
	body, err := c.decode(payload)
	if err != nil {
		return err
	}

	seenAt := c.now()
	if body.Timestamp != nil {
		seenAt = *body.Timestamp
	}

	if err := c.db.UpdateLastSeen(ctx, body.DeviceID, seenAt); err != nil {
		if errors.Is(err, db.ErrDeviceNotFound) {
			c.logger.Warn().
				Str("device_id", body.DeviceID).
				Msg("Heartbeat from unregistered device")

			return nil
		}

		return err
	}

	c.logger.Debug().
		Str("device_id", body.DeviceID).
		Time("seen_at", seenAt).
		Msg("Heartbeat recorded")

	return nil
}

func (c *Consumer) handlePower(ctx context.Context, payload []byte) error {
	body, err := c.decode(payload)
	if err != nil {
		return err
	}

	if body.State == "" {
		return fmt.Errorf("%w: missing state", ErrMalformedPayload)
	}

	timestamp := c.now()
	if body.Timestamp != nil {
		timestamp = *body.Timestamp
	}

	return c.power.HandlePowerEvent(ctx, &models.PowerEvent{
		DeviceID:  body.DeviceID,
		State:     models.PowerState(body.State),
		Timestamp: timestamp,
	})
}

func (c *Consumer) handleTemperature(ctx context.Context, payload []byte) error {
	body, err := c.decode(payload)
	if err != nil {
		return err
	}

	if body.Temperature == nil {
		return fmt.Errorf("%w: missing temperature", ErrMalformedPayload)
	}

	recordedAt := c.now()
	if body.Timestamp != nil {
		recordedAt = *body.Timestamp
	}

	err = c.db.StoreTemperature(ctx, &models.TemperatureReading{
		DeviceID:    body.DeviceID,
		Temperature: *body.Temperature,
		RecordedAt:  recordedAt,
	})
	if err != nil {
		if errors.Is(err, db.ErrDeviceNotFound) {
			c.logger.Warn().
				Str("device_id", body.DeviceID).
				Msg("Temperature from unregistered device")

			return nil
		}

		return err
	}

	return nil
}

func (c *Consumer) decode(payload []byte) (*telemetry, error) {
	var body telemetry
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	if body.DeviceID == "" {
		return nil, fmt.Errorf("%w: missing device_id", ErrMalformedPayload)
	}

	return &body, nil
}
