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

package monitor

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carverauto/fieldwatch/pkg/alerting"
	"github.com/carverauto/fieldwatch/pkg/db"
	"github.com/carverauto/fieldwatch/pkg/events"
	"github.com/carverauto/fieldwatch/pkg/logger"
	"github.com/carverauto/fieldwatch/pkg/models"
	"github.com/carverauto/fieldwatch/pkg/trackstore"
)

// TemperatureThresholdMonitor is edge-triggered on the latest polled
// reading: no confirmation delay, unlike the liveness trackers. Crossing the
// threshold alerts immediately, stays-over re-alerts on a re-armed timer,
// and returning to normal sends exactly one notice.
type TemperatureThresholdMonitor struct {
	db               db.Service
	dispatcher       *Dispatcher
	publisher        events.Publisher
	store            trackstore.EntryStore[models.TemperatureTrackingEntry]
	clock            Clock
	defaultThreshold float64
	realertInterval  time.Duration
	maxConcurrent    int
	logger           logger.Logger
}

// NewTemperatureThresholdMonitor builds the monitor. publisher may be nil.
func NewTemperatureThresholdMonitor(
	database db.Service,
	dispatcher *Dispatcher,
	publisher events.Publisher,
	store trackstore.EntryStore[models.TemperatureTrackingEntry],
	clock Clock,
	config *Config,
	log logger.Logger,
) *TemperatureThresholdMonitor {
	return &TemperatureThresholdMonitor{
		db:               database,
		dispatcher:       dispatcher,
		publisher:        publisher,
		store:            store,
		clock:            clock,
		defaultThreshold: config.DefaultHighTempThreshold,
		realertInterval:  config.TemperatureRealertInterval.AsDuration(),
		maxConcurrent:    config.MaxConcurrentChecks,
		logger:           log.WithComponent("temperature"),
	}
}

// Tick runs one pass over all devices with a current reading, with bounded
// per-device concurrency.
func (t *TemperatureThresholdMonitor) Tick(ctx context.Context) {
	devices, err := t.db.ListDevices(ctx)
	if err != nil {
		t.logger.Error().Err(err).Msg("Failed to list devices for temperature pass")
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.maxConcurrent)

	for _, device := range devices {
		device := device
		g.Go(func() error {
			if err := t.CheckDevice(gctx, device); err != nil {
				t.logger.Warn().Err(err).
					Str("device_id", device.DeviceID).
					Msg("Temperature check failed")
			}

			return nil
		})
	}

	_ = g.Wait()
}

// CheckDevice evaluates one device's latest reading against its threshold.
// Devices without a reading are skipped.
func (t *TemperatureThresholdMonitor) CheckDevice(ctx context.Context, device *models.MonitoredDevice) error {
	reading, err := t.db.LatestTemperature(ctx, device.DeviceID)
	if err != nil {
		return err
	}

	if reading == nil {
		return nil
	}

	threshold := t.defaultThreshold
	if device.HighTempThreshold != nil {
		threshold = *device.HighTempThreshold
	}

	entry, err := t.store.Get(device.DeviceID)
	if err != nil {
		return err
	}

	if reading.Temperature > threshold {
		return t.handleOverThreshold(ctx, device, entry, reading)
	}

	if entry == nil {
		return nil
	}

	return t.handleReturnedToNormal(ctx, device, reading)
}

func (t *TemperatureThresholdMonitor) handleOverThreshold(ctx context.Context, device *models.MonitoredDevice, entry *models.TemperatureTrackingEntry, reading *models.TemperatureReading) error {
	now := t.clock.Now()

	if entry == nil {
		entry = &models.TemperatureTrackingEntry{
			DeviceID:      device.DeviceID,
			HighTempSince: now,
		}

		t.logger.Info().
			Str("device_id", device.DeviceID).
			Float64("temperature", reading.Temperature).
			Msg("Device crossed high-temperature threshold")

		if err := t.store.Put(device.DeviceID, entry); err != nil {
			return err
		}

		return t.sendAlert(ctx, device, entry, reading, models.KindHighTemperature)
	}

	// Re-alert with a re-armed timer while the condition persists.
	if now.Sub(entry.LastAlertAt) >= t.realertInterval {
		return t.sendAlert(ctx, device, entry, reading, models.KindHighTemperature)
	}

	return nil
}

// handleReturnedToNormal closes the episode with exactly one normal notice.
func (t *TemperatureThresholdMonitor) handleReturnedToNormal(ctx context.Context, device *models.MonitoredDevice, reading *models.TemperatureReading) error {
	if err := t.store.Delete(device.DeviceID); err != nil {
		return err
	}

	t.logger.Info().
		Str("device_id", device.DeviceID).
		Float64("temperature", reading.Temperature).
		Msg("Device temperature returned to normal")

	return t.sendAlert(ctx, device, nil, reading, models.KindTemperatureNormal)
}

func (t *TemperatureThresholdMonitor) sendAlert(ctx context.Context, device *models.MonitoredDevice, entry *models.TemperatureTrackingEntry, reading *models.TemperatureReading, kind models.NotificationKind) error {
	now := t.clock.Now()
	temperature := reading.Temperature

	err := t.dispatcher.Notify(ctx, device, &alerting.Notification{
		DeviceID:    device.DeviceID,
		DeviceName:  device.Name,
		Kind:        kind,
		OccurredAt:  now,
		LastSeenAt:  device.LastSeenAt,
		Temperature: &temperature,
	})
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			return nil
		}

		return err
	}

	if entry != nil {
		entry.LastAlertAt = now

		if err := t.store.Put(device.DeviceID, entry); err != nil {
			return err
		}
	}

	if t.publisher != nil {
		publishErr := t.publisher.PublishAlert(ctx, &models.DeviceAlertEventData{
			DeviceID:    device.DeviceID,
			Kind:        kind,
			Message:     string(kind),
			Timestamp:   now,
			Temperature: &temperature,
		})
		if publishErr != nil {
			t.logger.Warn().Err(publishErr).
				Str("device_id", device.DeviceID).
				Msg("Failed to publish temperature alert event")
		}
	}

	return nil
}
