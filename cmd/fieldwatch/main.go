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

// fieldwatch watches a fleet of field devices: it ingests telemetry over
// MQTT, confirms status transitions against Postgres, and notifies device
// owners by email when devices go quiet, lose power, or overheat.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/carverauto/fieldwatch/pkg/alerting"
	"github.com/carverauto/fieldwatch/pkg/config"
	"github.com/carverauto/fieldwatch/pkg/db"
	"github.com/carverauto/fieldwatch/pkg/events"
	"github.com/carverauto/fieldwatch/pkg/ingest"
	"github.com/carverauto/fieldwatch/pkg/logger"
	"github.com/carverauto/fieldwatch/pkg/monitor"
	"github.com/carverauto/fieldwatch/pkg/trackstore"
)

var (
	errMissingDatabase = errors.New("database host and name are required")
	errMissingSMTP     = errors.New("smtp host and from address are required")
	errMissingBroker   = errors.New("mqtt broker is required")
)

type appConfig struct {
	Logging  *logger.Config      `json:"logging,omitempty"`
	Database db.Config           `json:"database"`
	Monitor  monitor.Config      `json:"monitor"`
	SMTP     alerting.SMTPConfig `json:"smtp"`
	MQTT     ingest.Config       `json:"mqtt"`

	// Events is optional; omitting it disables event publishing.
	Events *events.Config `json:"events,omitempty"`

	// TrackerStatePath is the bbolt file holding in-flight tracker entries.
	// Empty falls back to in-memory stores that do not survive restart.
	TrackerStatePath string `json:"tracker_state_path,omitempty"`
}

func (c *appConfig) Validate() error {
	c.Monitor.SetDefaults()
	c.MQTT.SetDefaults()

	if c.Database.Host == "" || c.Database.Database == "" {
		return errMissingDatabase
	}

	if c.SMTP.Host == "" || c.SMTP.From == "" {
		return errMissingSMTP
	}

	if c.MQTT.Broker == "" {
		return errMissingBroker
	}

	return c.Monitor.Validate()
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/fieldwatch/fieldwatch.json", "Path to config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootLog, err := logger.New(nil)
	if err != nil {
		return err
	}

	var cfg appConfig
	if err := config.NewConfig(bootLog).LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return err
	}

	mainLog, err := logger.New(cfg.Logging)
	if err != nil {
		return err
	}

	database, err := db.New(ctx, &cfg.Database, mainLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			mainLog.Error().Err(err).Msg("Failed to close database")
		}
	}()

	sender := alerting.NewSMTPSender(&cfg.SMTP)
	notifier := alerting.NewEmailNotifier(sender, cfg.SMTP.From, mainLog)

	var publisher events.Publisher

	if cfg.Events != nil {
		jsPublisher, nc, err := events.Connect(ctx, cfg.Events, mainLog)
		if err != nil {
			return err
		}
		defer nc.Close()

		publisher = jsPublisher
	}

	stores := monitor.MemoryStores()

	if cfg.TrackerStatePath != "" {
		trackerStore, err := trackstore.Open(cfg.TrackerStatePath)
		if err != nil {
			return err
		}
		defer func() {
			if err := trackerStore.Close(); err != nil {
				mainLog.Error().Err(err).Msg("Failed to close tracker store")
			}
		}()

		stores = monitor.TrackerStores{
			Power:       trackerStore.Power,
			Inactivity:  trackerStore.Inactivity,
			Temperature: trackerStore.Temperature,
		}
	} else {
		mainLog.Warn().Msg("No tracker_state_path configured, tracker state will not survive restart")
	}

	engine := monitor.NewEngine(&cfg.Monitor, database, notifier, publisher, stores, mainLog)
	engine.Start(ctx)

	consumer := ingest.NewConsumer(cfg.MQTT, database, engine, mainLog)
	if err := consumer.Start(ctx); err != nil {
		return err
	}
	defer consumer.Stop()

	mainLog.Info().Msg("fieldwatch started")

	engine.Wait()

	mainLog.Info().Msg("fieldwatch stopped")

	return nil
}
