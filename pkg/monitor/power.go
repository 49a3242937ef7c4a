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
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carverauto/fieldwatch/pkg/alerting"
	"github.com/carverauto/fieldwatch/pkg/db"
	"github.com/carverauto/fieldwatch/pkg/events"
	"github.com/carverauto/fieldwatch/pkg/logger"
	"github.com/carverauto/fieldwatch/pkg/models"
	"github.com/carverauto/fieldwatch/pkg/trackstore"
)

// PowerEventTracker handles devices that report explicit ON/OFF edges
// instead of continuous heartbeats. An OFF edge opens a tracking entry; the
// periodic sweep sends a delayed first alert and repeats until an ON edge
// closes the episode with exactly one recovery notice.
type PowerEventTracker struct {
	db                   db.Service
	dispatcher           *Dispatcher
	publisher            events.Publisher
	store                trackstore.EntryStore[models.PowerTrackingEntry]
	clock                Clock
	firstAlertDelay      time.Duration
	notificationInterval time.Duration
	purgeAfter           time.Duration
	maxConcurrent        int
	logger               logger.Logger
}

// NewPowerEventTracker builds the tracker. publisher may be nil.
func NewPowerEventTracker(
	database db.Service,
	dispatcher *Dispatcher,
	publisher events.Publisher,
	store trackstore.EntryStore[models.PowerTrackingEntry],
	clock Clock,
	config *Config,
	log logger.Logger,
) *PowerEventTracker {
	return &PowerEventTracker{
		db:                   database,
		dispatcher:           dispatcher,
		publisher:            publisher,
		store:                store,
		clock:                clock,
		firstAlertDelay:      config.PowerFirstAlertDelay.AsDuration(),
		notificationInterval: config.NotificationInterval.AsDuration(),
		purgeAfter:           config.PowerPurgeAfter.AsDuration(),
		maxConcurrent:        config.MaxConcurrentChecks,
		logger:               log.WithComponent("power"),
	}
}

// HandleEvent processes one ON/OFF report. Invalid states and unknown
// devices are logged and dropped.
func (t *PowerEventTracker) HandleEvent(ctx context.Context, event *models.PowerEvent) error {
	if event.State != models.PowerOn && event.State != models.PowerOff {
		t.logger.Warn().
			Str("device_id", event.DeviceID).
			Str("state", string(event.State)).
			Msg("Dropping power event with invalid state")

		return fmt.Errorf("%w: %q", ErrInvalidPowerState, event.State)
	}

	device, err := t.db.GetDevice(ctx, event.DeviceID)
	if err != nil {
		if errors.Is(err, db.ErrDeviceNotFound) {
			t.logger.Warn().
				Str("device_id", event.DeviceID).
				Msg("Dropping power event for unknown device")

			return nil
		}

		return err
	}

	// Redundant event: no state change, but still drive the repeat logic
	// for an open OFF episode in case sweeps and duplicates interleave.
	if device.LastReportedPower != nil && *device.LastReportedPower == event.State {
		entry, err := t.store.Get(device.DeviceID)
		if err != nil {
			return err
		}

		if entry != nil {
			t.sweepEntry(ctx, device, entry)
			return nil
		}

		// A persisted OFF state without an entry means the entry write was
		// lost after the state update. Reopen the episode so the outage
		// still alerts.
		if event.State == models.PowerOff {
			return t.trackOff(device)
		}

		return nil
	}

	if err := t.db.UpdateLastReportedPower(ctx, device.DeviceID, event.State); err != nil {
		return err
	}

	state := event.State
	device.LastReportedPower = &state

	if event.State == models.PowerOff {
		return t.trackOff(device)
	}

	return t.handleRestored(ctx, device)
}

// trackOff opens a tracking entry for a genuine OFF edge. The first
// notification waits for the sweep.
func (t *PowerEventTracker) trackOff(device *models.MonitoredDevice) error {
	now := t.clock.Now()

	t.logger.Info().
		Str("device_id", device.DeviceID).
		Time("first_off_at", now).
		Msg("Device reported power off, tracking")

	return t.store.Put(device.DeviceID, &models.PowerTrackingEntry{
		DeviceID:        device.DeviceID,
		FirstOffEventAt: now,
	})
}

// handleRestored closes an open OFF episode with exactly one recovery
// notification. A genuine ON with no open episode needs nothing.
func (t *PowerEventTracker) handleRestored(ctx context.Context, device *models.MonitoredDevice) error {
	entry, err := t.store.Get(device.DeviceID)
	if err != nil {
		return err
	}

	if entry == nil {
		return nil
	}

	now := t.clock.Now()

	notifyErr := t.dispatcher.Notify(ctx, device, &alerting.Notification{
		DeviceID:   device.DeviceID,
		DeviceName: device.Name,
		Kind:       models.KindPowerRestored,
		OccurredAt: now,
		LastSeenAt: device.LastSeenAt,
	})
	if notifyErr != nil {
		t.logger.Warn().Err(notifyErr).
			Str("device_id", device.DeviceID).
			Msg("Power restored notification not delivered")
	}

	if err := t.store.Delete(device.DeviceID); err != nil {
		return err
	}

	t.logger.Info().
		Str("device_id", device.DeviceID).
		Dur("offline_for", now.Sub(entry.FirstOffEventAt)).
		Msg("Power restored, tracking closed")

	t.publishAlert(ctx, device.DeviceID, models.KindPowerRestored, "power restored", nil)

	return nil
}

// Sweep walks every open OFF episode: delayed first alert, periodic
// repeats, and purge of stale entries. Entries are swept with bounded
// concurrency.
func (t *PowerEventTracker) Sweep(ctx context.Context) {
	entries, err := t.store.All()
	if err != nil {
		t.logger.Error().Err(err).Msg("Failed to list power tracking entries")
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.maxConcurrent)

	for deviceID, entry := range entries {
		deviceID, entry := deviceID, entry
		g.Go(func() error {
			device, err := t.db.GetDevice(gctx, deviceID)
			if err != nil {
				if errors.Is(err, db.ErrDeviceNotFound) {
					// Device removed while tracked.
					if err := t.store.Delete(deviceID); err != nil {
						t.logger.Error().Err(err).Str("device_id", deviceID).Msg("Failed to drop orphaned power entry")
					}

					return nil
				}

				t.logger.Error().Err(err).Str("device_id", deviceID).Msg("Failed to load device during power sweep")

				return nil
			}

			t.sweepEntry(gctx, device, entry)

			return nil
		})
	}

	_ = g.Wait()
}

func (t *PowerEventTracker) sweepEntry(ctx context.Context, device *models.MonitoredDevice, entry *models.PowerTrackingEntry) {
	now := t.clock.Now()

	if now.Sub(entry.FirstOffEventAt) >= t.purgeAfter {
		t.logger.Info().
			Str("device_id", device.DeviceID).
			Time("first_off_at", entry.FirstOffEventAt).
			Msg("Purging stale power tracking entry")

		if err := t.store.Delete(device.DeviceID); err != nil {
			t.logger.Error().Err(err).Str("device_id", device.DeviceID).Msg("Failed to purge power entry")
		}

		return
	}

	if entry.LastNotificationAt == nil {
		if now.Sub(entry.FirstOffEventAt) >= t.firstAlertDelay {
			t.sendLostAlert(ctx, device, entry)
		}

		return
	}

	if now.Sub(*entry.LastNotificationAt) >= t.notificationInterval {
		t.sendLostAlert(ctx, device, entry)
	}
}

// sendLostAlert delivers a power-lost notice and refreshes the entry's
// notification timestamp only on success, so failed or rate-limited sends
// retry on the next sweep.
func (t *PowerEventTracker) sendLostAlert(ctx context.Context, device *models.MonitoredDevice, entry *models.PowerTrackingEntry) {
	now := t.clock.Now()

	err := t.dispatcher.Notify(ctx, device, &alerting.Notification{
		DeviceID:   device.DeviceID,
		DeviceName: device.Name,
		Kind:       models.KindPowerLost,
		OccurredAt: now,
		LastSeenAt: device.LastSeenAt,
	})
	if err != nil {
		if !errors.Is(err, ErrRateLimited) {
			t.logger.Warn().Err(err).
				Str("device_id", device.DeviceID).
				Msg("Power lost notification not delivered")
		}

		return
	}

	entry.LastNotificationAt = &now

	if err := t.store.Put(device.DeviceID, entry); err != nil {
		t.logger.Error().Err(err).Str("device_id", device.DeviceID).Msg("Failed to persist power entry")
	}

	t.publishAlert(ctx, device.DeviceID, models.KindPowerLost, "power lost", nil)
}

// SweepDevice runs the sweep logic for a single tracked device, for manual
// checks.
func (t *PowerEventTracker) SweepDevice(ctx context.Context, deviceID string) error {
	entry, err := t.store.Get(deviceID)
	if err != nil {
		return err
	}

	if entry == nil {
		return nil
	}

	device, err := t.db.GetDevice(ctx, deviceID)
	if err != nil {
		return err
	}

	t.sweepEntry(ctx, device, entry)

	return nil
}

// IsTracked reports whether the device has an open OFF episode. The
// inactivity tracker skips such devices.
func (t *PowerEventTracker) IsTracked(deviceID string) bool {
	entry, err := t.store.Get(deviceID)
	if err != nil {
		t.logger.Error().Err(err).Str("device_id", deviceID).Msg("Failed to read power tracking entry")
		return false
	}

	return entry != nil
}

func (t *PowerEventTracker) publishAlert(ctx context.Context, deviceID string, kind models.NotificationKind, message string, temperature *float64) {
	if t.publisher == nil {
		return
	}

	err := t.publisher.PublishAlert(ctx, &models.DeviceAlertEventData{
		DeviceID:    deviceID,
		Kind:        kind,
		Message:     message,
		Timestamp:   t.clock.Now(),
		Temperature: temperature,
	})
	if err != nil {
		t.logger.Warn().Err(err).Str("device_id", deviceID).Msg("Failed to publish power alert event")
	}
}
