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
	"github.com/carverauto/fieldwatch/pkg/logger"
	"github.com/carverauto/fieldwatch/pkg/models"
	"github.com/carverauto/fieldwatch/pkg/trackstore"
)

// powerTracked reports whether a device has an open power-off episode.
type powerTracked interface {
	IsTracked(deviceID string) bool
}

// InactivityTracker watches heartbeat absence: a confirm-wait before the
// first notice, periodic repeats while the silence lasts, and a
// hysteresis-gated single recovery notice. Devices with an open power-off
// episode are skipped; the power tracker owns those.
type InactivityTracker struct {
	db                   db.Service
	dispatcher           *Dispatcher
	store                trackstore.EntryStore[models.InactivityTrackingEntry]
	power                powerTracked
	clock                Clock
	threshold            time.Duration
	confirmationWait     time.Duration
	notificationInterval time.Duration
	stabilityWindow      time.Duration
	maxConcurrent        int
	logger               logger.Logger
}

// NewInactivityTracker builds the tracker. power may be nil when no power
// tracker runs.
func NewInactivityTracker(
	database db.Service,
	dispatcher *Dispatcher,
	store trackstore.EntryStore[models.InactivityTrackingEntry],
	power powerTracked,
	clock Clock,
	config *Config,
	log logger.Logger,
) *InactivityTracker {
	return &InactivityTracker{
		db:                   database,
		dispatcher:           dispatcher,
		store:                store,
		power:                power,
		clock:                clock,
		threshold:            config.InactivityThreshold.AsDuration(),
		confirmationWait:     config.ConfirmationWait.AsDuration(),
		notificationInterval: config.NotificationInterval.AsDuration(),
		stabilityWindow:      config.StabilityWindow.AsDuration(),
		maxConcurrent:        config.MaxConcurrentChecks,
		logger:               log.WithComponent("inactivity"),
	}
}

// Tick runs one pass over the device population. Checks run with bounded
// concurrency so one device's delivery retries do not delay the rest.
func (t *InactivityTracker) Tick(ctx context.Context) {
	devices, err := t.db.ListDevices(ctx)
	if err != nil {
		t.logger.Error().Err(err).Msg("Failed to list devices for inactivity pass")
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
					Msg("Inactivity check failed")
			}

			return nil
		})
	}

	_ = g.Wait()
}

// CheckDevice applies the inactivity rules to one device.
func (t *InactivityTracker) CheckDevice(ctx context.Context, device *models.MonitoredDevice) error {
	if t.power != nil && t.power.IsTracked(device.DeviceID) {
		return nil
	}

	now := t.clock.Now()
	raw := EvaluateStatus(device.LastSeenAt, now, t.threshold)

	entry, err := t.store.Get(device.DeviceID)
	if err != nil {
		return err
	}

	if raw == models.StatusInactive {
		return t.handleInactive(ctx, device, entry, now)
	}

	if entry == nil {
		return nil
	}

	return t.handleRecovering(ctx, device, entry, now)
}

func (t *InactivityTracker) handleInactive(ctx context.Context, device *models.MonitoredDevice, entry *models.InactivityTrackingEntry, now time.Time) error {
	if entry == nil {
		t.logger.Debug().
			Str("device_id", device.DeviceID).
			Msg("Device inactive, starting confirm-wait")

		return t.store.Put(device.DeviceID, &models.InactivityTrackingEntry{
			DeviceID:        device.DeviceID,
			FirstInactiveAt: now,
		})
	}

	// Relapse during a recovery window resets hysteresis.
	if entry.ActiveSince != nil {
		entry.ActiveSince = nil

		if err := t.store.Put(device.DeviceID, entry); err != nil {
			return err
		}
	}

	if entry.LastNotificationAt == nil {
		if now.Sub(entry.FirstInactiveAt) < t.confirmationWait {
			return nil
		}

		return t.sendInactiveAlert(ctx, device, entry, now)
	}

	if now.Sub(*entry.LastNotificationAt) >= t.notificationInterval {
		return t.sendInactiveAlert(ctx, device, entry, now)
	}

	return nil
}

func (t *InactivityTracker) sendInactiveAlert(ctx context.Context, device *models.MonitoredDevice, entry *models.InactivityTrackingEntry, now time.Time) error {
	err := t.dispatcher.Notify(ctx, device, &alerting.Notification{
		DeviceID:   device.DeviceID,
		DeviceName: device.Name,
		Kind:       models.KindInactivity,
		OccurredAt: now,
		LastSeenAt: device.LastSeenAt,
	})
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			return nil
		}

		return err
	}

	entry.LastNotificationAt = &now

	return t.store.Put(device.DeviceID, entry)
}

// handleRecovering processes an active device with an open episode. Silent
// self-heal deletes the entry; otherwise recovery requires sustained
// activity for the stability window before the single recovery notice.
func (t *InactivityTracker) handleRecovering(ctx context.Context, device *models.MonitoredDevice, entry *models.InactivityTrackingEntry, now time.Time) error {
	if entry.LastNotificationAt == nil {
		t.logger.Debug().
			Str("device_id", device.DeviceID).
			Msg("Device recovered before any notice, dropping episode")

		return t.store.Delete(device.DeviceID)
	}

	if entry.ActiveSince == nil {
		activeSince := now
		entry.ActiveSince = &activeSince

		return t.store.Put(device.DeviceID, entry)
	}

	if now.Sub(*entry.ActiveSince) < t.stabilityWindow {
		return nil
	}

	err := t.dispatcher.Notify(ctx, device, &alerting.Notification{
		DeviceID:   device.DeviceID,
		DeviceName: device.Name,
		Kind:       models.KindRecovery,
		OccurredAt: now,
		LastSeenAt: device.LastSeenAt,
	})
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			return nil
		}

		return err
	}

	t.logger.Info().
		Str("device_id", device.DeviceID).
		Dur("inactive_for", now.Sub(entry.FirstInactiveAt)).
		Msg("Device recovery confirmed")

	return t.store.Delete(device.DeviceID)
}
