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

package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carverauto/fieldwatch/pkg/models"
)

// PostgreSQL SQLSTATE codes for transient errors that should be retried.
const (
	sqlstateDeadlockDetected    = "40P01" // Deadlock detected
	sqlstateSerializationFailed = "40001" // Serialization failure
	sqlstateLockNotAvailable    = "55P03" // Lock not available
	sqlstateStatementTimeout    = "57014" // Statement timeout
)

const lockMaxAttempts = 3

// lockBackoffSchedule is the per-attempt wait before retrying a contended lock.
var lockBackoffSchedule = []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}

// classifyLockError checks if an error is a transient contention error.
// Returns the SQLSTATE code and a boolean indicating if it's transient.
func classifyLockError(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlstateDeadlockDetected, sqlstateSerializationFailed,
			sqlstateLockNotAvailable, sqlstateStatementTimeout:
			return pgErr.Code, true
		}

		return pgErr.Code, false
	}

	// Fallback to string matching for wrapped errors
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "40p01"), strings.Contains(msg, "deadlock detected"):
		return sqlstateDeadlockDetected, true
	case strings.Contains(msg, "40001"), strings.Contains(msg, "could not serialize access"):
		return sqlstateSerializationFailed, true
	case strings.Contains(msg, "55p03"), strings.Contains(msg, "lock not available"):
		return sqlstateLockNotAvailable, true
	default:
		return "", false
	}
}

func (db *DB) WithDeviceLock(ctx context.Context, deviceID string, fn func(ctx context.Context, tx DeviceTx) error) error {
	var lastErr error

	for attempt := 1; attempt <= lockMaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := db.runLocked(ctx, deviceID, fn)
		if err == nil {
			return nil
		}

		lastErr = err
		code, transient := classifyLockError(err)

		if !transient {
			return err
		}

		if attempt < lockMaxAttempts {
			delay := lockBackoffSchedule[attempt-1]
			db.logger.Warn().
				Err(err).
				Str("sqlstate", code).
				Str("device_id", deviceID).
				Int("attempt", attempt).
				Int("max_attempts", lockMaxAttempts).
				Dur("backoff", delay).
				Msg("device lock contended, retrying")
			time.Sleep(delay)
		}
	}

	db.logger.Error().
		Err(lastErr).
		Str("device_id", deviceID).
		Int("max_attempts", lockMaxAttempts).
		Msg("device lock retries exhausted")

	return fmt.Errorf("%w: %w", ErrLockContended, lastErr)
}

func (db *DB) runLocked(ctx context.Context, deviceID string, fn func(ctx context.Context, tx DeviceTx) error) (err error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	var committed bool

	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				db.logger.Error().Err(rbErr).Str("device_id", deviceID).Msg("Error rolling back transaction")
			}
		}
	}()

	dtx := &deviceTx{tx: tx, deviceID: deviceID}

	if err := dtx.Refresh(ctx); err != nil {
		return err
	}

	if err := fn(ctx, dtx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	committed = true

	return nil
}

// deviceTx implements DeviceTx on an open pgx transaction holding the row lock.
type deviceTx struct {
	tx       pgx.Tx
	deviceID string
	device   *models.MonitoredDevice
}

func (t *deviceTx) Device() *models.MonitoredDevice {
	return t.device
}

func (t *deviceTx) Refresh(ctx context.Context) error {
	row := t.tx.QueryRow(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE device_id = $1 FOR UPDATE`, t.deviceID)

	d, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrDeviceNotFound
		}

		return fmt.Errorf("%w: lock device: %w", ErrFailedToQuery, err)
	}

	t.device = d

	return nil
}

func (t *deviceTx) SetPending(ctx context.Context, status models.DeviceStatus, since time.Time) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE devices SET pending_status = $2, pending_since = $3 WHERE device_id = $1`,
		t.deviceID, string(status), since)
	if err != nil {
		return fmt.Errorf("%w: set pending status: %w", ErrFailedToExecute, err)
	}

	t.device.PendingStatus = &status
	t.device.PendingSince = &since

	return nil
}

func (t *deviceTx) SetLastNotificationSent(ctx context.Context, sentAt time.Time) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE devices SET last_notification_sent_at = $2 WHERE device_id = $1`,
		t.deviceID, sentAt)
	if err != nil {
		return fmt.Errorf("%w: set last notification sent: %w", ErrFailedToExecute, err)
	}

	t.device.LastNotificationSentAt = &sentAt

	return nil
}

func (t *deviceTx) ClearPending(ctx context.Context) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE devices SET pending_status = NULL, pending_since = NULL WHERE device_id = $1`,
		t.deviceID)
	if err != nil {
		return fmt.Errorf("%w: clear pending status: %w", ErrFailedToExecute, err)
	}

	t.device.PendingStatus = nil
	t.device.PendingSince = nil

	return nil
}

func (t *deviceTx) CommitStatusChange(ctx context.Context, newStatus models.DeviceStatus, record *models.StatusHistoryRecord) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE devices SET
			confirmed_status = $2,
			pending_status = NULL,
			pending_since = NULL,
			status_change_count = status_change_count + 1,
			status_last_changed_at = $3
		 WHERE device_id = $1`,
		t.deviceID, string(newStatus), record.ChangedAt)
	if err != nil {
		return fmt.Errorf("%w: commit status change: %w", ErrFailedToExecute, err)
	}

	if err := insertStatusHistory(ctx, t.tx, record); err != nil {
		return err
	}

	t.device.ConfirmedStatus = newStatus
	t.device.PendingStatus = nil
	t.device.PendingSince = nil
	t.device.StatusChangeCount++
	changedAt := record.ChangedAt
	t.device.StatusLastChangedAt = &changedAt

	return nil
}
