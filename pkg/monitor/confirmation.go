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
)

// ConfirmationTracker is the per-device debounce state machine. A raw status
// signal becomes a confirmed transition only after holding steady for the
// confirmation window, re-verified immediately before commit. All state
// mutation happens under the device row lock.
type ConfirmationTracker struct {
	db                    db.Service
	dispatcher            *Dispatcher
	publisher             events.Publisher
	clock                 Clock
	threshold             time.Duration
	window                time.Duration
	commitWithoutDelivery bool
	maxConcurrent         int
	logger                logger.Logger
}

// NewConfirmationTracker builds the tracker. publisher may be nil to disable
// event publishing.
func NewConfirmationTracker(
	database db.Service,
	dispatcher *Dispatcher,
	publisher events.Publisher,
	clock Clock,
	config *Config,
	log logger.Logger,
) *ConfirmationTracker {
	return &ConfirmationTracker{
		db:                    database,
		dispatcher:            dispatcher,
		publisher:             publisher,
		clock:                 clock,
		threshold:             config.InactivityThreshold.AsDuration(),
		window:                config.ConfirmationWindow.AsDuration(),
		commitWithoutDelivery: *config.CommitWithoutDelivery,
		maxConcurrent:         config.MaxConcurrentChecks,
		logger:                log.WithComponent("confirmation"),
	}
}

// Tick runs one confirmation pass over the heartbeat device population.
// Per-device failures are logged and skipped; the tick itself never fails.
func (t *ConfirmationTracker) Tick(ctx context.Context) {
	devices, err := t.db.ListDevicesByClass(ctx, models.ClassHeartbeat)
	if err != nil {
		t.logger.Error().Err(err).Msg("Failed to list devices for confirmation pass")
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.maxConcurrent)

	for _, device := range devices {
		device := device
		g.Go(func() error {
			if err := t.Check(gctx, device.DeviceID); err != nil {
				t.logger.Warn().Err(err).
					Str("device_id", device.DeviceID).
					Msg("Confirmation check failed, deferring to next tick")
			}

			return nil
		})
	}

	_ = g.Wait()
}

// Check runs the debounce transition rules for one device under its row
// lock. Lock contention and device-not-found surface as errors for the
// caller to log; the transition is delayed, never lost.
func (t *ConfirmationTracker) Check(ctx context.Context, deviceID string) error {
	var eventData *models.DeviceStatusEventData

	err := t.db.WithDeviceLock(ctx, deviceID, func(ctx context.Context, tx db.DeviceTx) error {
		data, err := t.step(ctx, tx)
		if err != nil {
			return err
		}

		eventData = data

		return nil
	})
	if err != nil {
		return err
	}

	if eventData != nil && t.publisher != nil {
		if err := t.publisher.PublishStatusChange(ctx, eventData); err != nil {
			t.logger.Warn().Err(err).
				Str("device_id", deviceID).
				Msg("Failed to publish status change event")
		}
	}

	return nil
}

// step applies the transition rules once. It returns event data when a
// transition committed.
func (t *ConfirmationTracker) step(ctx context.Context, tx db.DeviceTx) (*models.DeviceStatusEventData, error) {
	device := tx.Device()
	now := t.clock.Now()
	raw := EvaluateStatus(device.LastSeenAt, now, t.threshold)

	// Rule 1: signal matches the confirmed status. Any pending flap
	// reverted before confirmation; clear it silently.
	if raw == device.ConfirmedStatus {
		if device.PendingStatus != nil {
			t.logger.Debug().
				Str("device_id", device.DeviceID).
				Str("pending", string(*device.PendingStatus)).
				Msg("Pending status reverted before confirmation")

			return nil, tx.ClearPending(ctx)
		}

		return nil, nil
	}

	// Rule 2: the pending candidate is still being observed.
	if device.PendingStatus != nil && *device.PendingStatus == raw {
		if now.Sub(*device.PendingSince) < t.window {
			return nil, nil
		}

		return t.commit(ctx, tx, raw)
	}

	// Rule 3: new candidate (or a different one than currently pending).
	// (Re)start the debounce clock.
	t.logger.Info().
		Str("device_id", device.DeviceID).
		Str("confirmed", string(device.ConfirmedStatus)).
		Str("candidate", string(raw)).
		Msg("Status change candidate observed, starting confirmation window")

	return nil, tx.SetPending(ctx, raw, now)
}

func (t *ConfirmationTracker) commit(ctx context.Context, tx db.DeviceTx, candidate models.DeviceStatus) (*models.DeviceStatusEventData, error) {
	device := tx.Device()

	// Re-verify at this instant: the signal may have stabilized and then
	// changed again during the wait.
	if err := tx.Refresh(ctx); err != nil {
		return nil, err
	}

	device = tx.Device()
	now := t.clock.Now()

	if EvaluateStatus(device.LastSeenAt, now, t.threshold) != candidate {
		t.logger.Info().
			Str("device_id", device.DeviceID).
			Str("candidate", string(candidate)).
			Msg("Candidate failed re-verification, cancelling pending change")

		return nil, tx.ClearPending(ctx)
	}

	previous := device.ConfirmedStatus

	// Notify before committing so a failed delivery does not leave state
	// and message permanently out of sync. Rate-limited is not a delivery
	// failure; the transition still commits.
	notification := &alerting.Notification{
		DeviceID:   device.DeviceID,
		DeviceName: device.Name,
		Kind:       statusKind(candidate),
		OccurredAt: now,
		LastSeenAt: device.LastSeenAt,
	}

	notifyErr := t.dispatcher.NotifyLocked(ctx, tx, notification)
	if notifyErr != nil && !errors.Is(notifyErr, ErrRateLimited) {
		if !t.commitWithoutDelivery {
			t.logger.Warn().Err(notifyErr).
				Str("device_id", device.DeviceID).
				Msg("Delivery failed, holding pending transition for next tick")

			return nil, nil
		}

		t.logger.Warn().Err(notifyErr).
			Str("device_id", device.DeviceID).
			Msg("Committing confirmed transition despite failed delivery")
	}

	record := &models.StatusHistoryRecord{
		DeviceID:       device.DeviceID,
		PreviousStatus: previous,
		NewStatus:      candidate,
		ChangedAt:      now,
		Reason:         fmt.Sprintf("status %s held for %s", candidate, t.window),
		IsConfirmed:    true,
	}

	if prev, err := t.db.GetLastStatusChange(ctx, device.DeviceID); err != nil {
		t.logger.Warn().Err(err).
			Str("device_id", device.DeviceID).
			Msg("Could not compute previous status duration")
	} else if prev != nil {
		duration := now.Sub(prev.ChangedAt)
		record.Duration = &duration
	}

	if err := tx.CommitStatusChange(ctx, candidate, record); err != nil {
		return nil, err
	}

	t.logger.Info().
		Str("device_id", device.DeviceID).
		Str("previous", string(previous)).
		Str("new", string(candidate)).
		Bool("alert_sent", notifyErr == nil).
		Msg("Status transition committed")

	return &models.DeviceStatusEventData{
		DeviceID:       device.DeviceID,
		PreviousStatus: previous,
		CurrentStatus:  candidate,
		Timestamp:      now,
		LastSeen:       device.LastSeenAt,
		Reason:         record.Reason,
		AlertSent:      notifyErr == nil,
	}, nil
}

func statusKind(status models.DeviceStatus) models.NotificationKind {
	if status == models.StatusActive {
		return models.KindRecovery
	}

	return models.KindStatusChange
}
