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

// Package monitor implements the status-detection-and-notification engine:
// debounced liveness confirmation, edge-triggered power tracking, heartbeat
// inactivity tracking with hysteresis recovery, temperature threshold
// monitoring, and the rate-limited notification dispatcher driving them all.
package monitor

import (
	"context"
	"errors"

	"github.com/carverauto/fieldwatch/pkg/alerting"
	"github.com/carverauto/fieldwatch/pkg/db"
	"github.com/carverauto/fieldwatch/pkg/events"
	"github.com/carverauto/fieldwatch/pkg/logger"
	"github.com/carverauto/fieldwatch/pkg/models"
	"github.com/carverauto/fieldwatch/pkg/trackstore"
)

// TrackerStores bundles the per-family tracker-entry stores.
type TrackerStores struct {
	Power       trackstore.EntryStore[models.PowerTrackingEntry]
	Inactivity  trackstore.EntryStore[models.InactivityTrackingEntry]
	Temperature trackstore.EntryStore[models.TemperatureTrackingEntry]
}

// MemoryStores returns map-backed stores that do not survive restart.
func MemoryStores() TrackerStores {
	return TrackerStores{
		Power:       trackstore.NewMemory[models.PowerTrackingEntry](),
		Inactivity:  trackstore.NewMemory[models.InactivityTrackingEntry](),
		Temperature: trackstore.NewMemory[models.TemperatureTrackingEntry](),
	}
}

// Engine wires the tracker families onto the scheduler.
type Engine struct {
	config       *Config
	db           db.Service
	dispatcher   *Dispatcher
	confirmation *ConfirmationTracker
	power        *PowerEventTracker
	inactivity   *InactivityTracker
	temperature  *TemperatureThresholdMonitor
	scheduler    *Scheduler
	logger       logger.Logger
}

// NewEngine builds the full engine. publisher may be nil to disable event
// publishing.
func NewEngine(
	config *Config,
	database db.Service,
	notifier alerting.Notifier,
	publisher events.Publisher,
	stores TrackerStores,
	log logger.Logger,
) *Engine {
	clock := realClock{}
	dispatcher := NewDispatcher(database, notifier, clock, config, log)
	power := NewPowerEventTracker(database, dispatcher, publisher, stores.Power, clock, config, log)

	return &Engine{
		config:       config,
		db:           database,
		dispatcher:   dispatcher,
		confirmation: NewConfirmationTracker(database, dispatcher, publisher, clock, config, log),
		power:        power,
		inactivity:   NewInactivityTracker(database, dispatcher, stores.Inactivity, power, clock, config, log),
		temperature:  NewTemperatureThresholdMonitor(database, dispatcher, publisher, stores.Temperature, clock, config, log),
		scheduler:    NewScheduler(clock, log),
		logger:       log.WithComponent("engine"),
	}
}

// Start launches one supervised worker per tracker family. Workers stop
// when ctx is cancelled; Wait blocks until they have.
func (e *Engine) Start(ctx context.Context) {
	interval := e.config.MonitorInterval.AsDuration()

	e.scheduler.Start(ctx, "confirmation", interval, e.confirmation.Tick)
	e.scheduler.Start(ctx, "inactivity", interval, e.inactivity.Tick)
	e.scheduler.Start(ctx, "power-sweep", interval, e.power.Sweep)
	e.scheduler.Start(ctx, "temperature", interval, e.temperature.Tick)

	e.logger.Info().Dur("interval", interval).Msg("Monitoring engine started")
}

// Wait blocks until all workers have stopped.
func (e *Engine) Wait() {
	e.scheduler.Wait()
}

// HandlePowerEvent forwards an ingested ON/OFF report to the power tracker.
func (e *Engine) HandlePowerEvent(ctx context.Context, event *models.PowerEvent) error {
	return e.power.HandleEvent(ctx, event)
}

// ForceCheck re-runs one tick's logic for a single device, for operational
// debugging.
func (e *Engine) ForceCheck(ctx context.Context, deviceID string) error {
	device, err := e.db.GetDevice(ctx, deviceID)
	if err != nil {
		return err
	}

	var errs []error

	if device.Class == models.ClassHeartbeat {
		if err := e.confirmation.Check(ctx, deviceID); err != nil {
			errs = append(errs, err)
		}
	}

	if err := e.inactivity.CheckDevice(ctx, device); err != nil {
		errs = append(errs, err)
	}

	if err := e.power.SweepDevice(ctx, deviceID); err != nil {
		errs = append(errs, err)
	}

	if err := e.temperature.CheckDevice(ctx, device); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
