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
	"fmt"
	"time"

	"github.com/carverauto/fieldwatch/pkg/alerting"
	"github.com/carverauto/fieldwatch/pkg/db"
	"github.com/carverauto/fieldwatch/pkg/logger"
	"github.com/carverauto/fieldwatch/pkg/models"
)

const maxBackoff = 60 * time.Second

// Dispatcher is the rate-limited, retrying notification sender. It decouples
// the trackers' "decide to notify" from delivery: one minimum interval per
// device regardless of kind, bounded retries with exponential backoff, and an
// immutable log entry per recipient per attempt.
type Dispatcher struct {
	db         db.Service
	notifier   alerting.Notifier
	clock      Clock
	rateLimit  time.Duration
	maxRetries int
	logger     logger.Logger
}

// NewDispatcher creates a Dispatcher with the configured rate limit and
// retry budget.
func NewDispatcher(database db.Service, notifier alerting.Notifier, clock Clock, config *Config, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		db:         database,
		notifier:   notifier,
		clock:      clock,
		rateLimit:  config.RateLimit.AsDuration(),
		maxRetries: config.MaxRetries,
		logger:     log.WithComponent("dispatcher"),
	}
}

// Notify delivers the notification for the device. The rate limit is
// re-checked against the locked row and the sent timestamp written through
// the same transaction, so concurrently ticking tracker families holding
// their own device snapshots cannot deliver inside the limit window.
func (d *Dispatcher) Notify(ctx context.Context, device *models.MonitoredDevice, notification *alerting.Notification) error {
	// The snapshot timestamp can only lag the row's, so a suppression
	// decided here is final and needs no lock.
	if d.rateLimited(device, notification) {
		return ErrRateLimited
	}

	return d.db.WithDeviceLock(ctx, device.DeviceID, func(ctx context.Context, tx db.DeviceTx) error {
		locked := tx.Device()

		if err := d.notify(ctx, locked, notification, tx.SetLastNotificationSent); err != nil {
			return err
		}

		device.LastNotificationSentAt = locked.LastNotificationSentAt

		return nil
	})
}

// NotifyLocked is Notify for callers holding the device row lock; the
// rate-limit timestamp is written through the open transaction.
func (d *Dispatcher) NotifyLocked(ctx context.Context, tx db.DeviceTx, notification *alerting.Notification) error {
	return d.notify(ctx, tx.Device(), notification, tx.SetLastNotificationSent)
}

func (d *Dispatcher) notify(
	ctx context.Context,
	device *models.MonitoredDevice,
	notification *alerting.Notification,
	markSent func(ctx context.Context, sentAt time.Time) error,
) error {
	if d.rateLimited(device, notification) {
		return ErrRateLimited
	}

	notification.Recipients = device.Recipients()

	if err := alerting.Compose(notification); err != nil {
		return err
	}

	var lastErr error

	for attempt := 0; attempt < d.maxRetries; attempt++ {
		err := d.notifier.Notify(ctx, notification)
		d.logAttempts(ctx, notification, err)

		if err == nil {
			sentAt := d.clock.Now()

			if err := markSent(ctx, sentAt); err != nil {
				d.logger.Error().Err(err).
					Str("device_id", device.DeviceID).
					Msg("Failed to record notification timestamp")
			}

			device.LastNotificationSentAt = &sentAt

			return nil
		}

		lastErr = err

		d.logger.Warn().Err(err).
			Str("device_id", device.DeviceID).
			Str("kind", string(notification.Kind)).
			Int("attempt", attempt+1).
			Int("max_retries", d.maxRetries).
			Msg("Notification delivery attempt failed")

		if attempt < d.maxRetries-1 {
			d.clock.Sleep(backoffDelay(attempt))
		}
	}

	d.logger.Error().Err(lastErr).
		Str("device_id", device.DeviceID).
		Str("kind", string(notification.Kind)).
		Int("max_retries", d.maxRetries).
		Msg("All notification delivery attempts failed")

	return fmt.Errorf("%w: %w", ErrDeliveryFailed, lastErr)
}

// rateLimited reports whether a notification for the device must be
// suppressed, logging the suppression.
func (d *Dispatcher) rateLimited(device *models.MonitoredDevice, notification *alerting.Notification) bool {
	if device.LastNotificationSentAt == nil || d.clock.Now().Sub(*device.LastNotificationSentAt) >= d.rateLimit {
		return false
	}

	d.logger.Debug().
		Str("device_id", device.DeviceID).
		Str("kind", string(notification.Kind)).
		Time("last_sent", *device.LastNotificationSentAt).
		Msg("Notification suppressed by rate limit")

	return true
}

// logAttempts appends one delivery-attempt record per recipient.
func (d *Dispatcher) logAttempts(ctx context.Context, notification *alerting.Notification, attemptErr error) {
	errText := ""
	if attemptErr != nil {
		errText = attemptErr.Error()
	}

	for _, recipient := range notification.Recipients {
		record := &models.NotificationRecord{
			DeviceID:  notification.DeviceID,
			Recipient: recipient,
			Kind:      notification.Kind,
			Subject:   notification.Subject,
			Success:   attemptErr == nil,
			Error:     errText,
			SentAt:    d.clock.Now(),
		}

		if err := d.db.LogNotification(ctx, record); err != nil {
			d.logger.Error().Err(err).
				Str("device_id", notification.DeviceID).
				Str("recipient", recipient).
				Msg("Failed to log notification attempt")
		}
	}
}

// backoffDelay returns min(2^attempt, 60) seconds.
func backoffDelay(attempt int) time.Duration {
	delay := time.Duration(1<<attempt) * time.Second
	if delay > maxBackoff {
		return maxBackoff
	}

	return delay
}
