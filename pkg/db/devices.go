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
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/carverauto/fieldwatch/pkg/models"
)

const deviceColumns = `device_id, name, class, owner_email, admin_email,
	last_seen_at, confirmed_status, pending_status, pending_since,
	last_reported_power, last_notification_sent_at,
	status_change_count, status_last_changed_at, high_temp_threshold`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (*models.MonitoredDevice, error) {
	var (
		d             models.MonitoredDevice
		pendingStatus *string
		power         *string
	)

	err := row.Scan(
		&d.DeviceID, &d.Name, &d.Class, &d.OwnerEmail, &d.AdminEmail,
		&d.LastSeenAt, &d.ConfirmedStatus, &pendingStatus, &d.PendingSince,
		&power, &d.LastNotificationSentAt,
		&d.StatusChangeCount, &d.StatusLastChangedAt, &d.HighTempThreshold,
	)
	if err != nil {
		return nil, err
	}

	if pendingStatus != nil {
		status := models.DeviceStatus(*pendingStatus)
		d.PendingStatus = &status
	}

	if power != nil {
		state := models.PowerState(*power)
		d.LastReportedPower = &state
	}

	return &d, nil
}

func (db *DB) ListDevices(ctx context.Context) ([]*models.MonitoredDevice, error) {
	rows, err := db.pool.Query(ctx, `SELECT `+deviceColumns+` FROM devices ORDER BY device_id`)
	if err != nil {
		return nil, fmt.Errorf("%w: list devices: %w", ErrFailedToQuery, err)
	}
	defer rows.Close()

	return collectDevices(rows)
}

func (db *DB) ListDevicesByClass(ctx context.Context, class models.DeviceClass) ([]*models.MonitoredDevice, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE class = $1 ORDER BY device_id`, string(class))
	if err != nil {
		return nil, fmt.Errorf("%w: list devices by class: %w", ErrFailedToQuery, err)
	}
	defer rows.Close()

	return collectDevices(rows)
}

func collectDevices(rows pgx.Rows) ([]*models.MonitoredDevice, error) {
	var devices []*models.MonitoredDevice

	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan device: %w", ErrFailedToQuery, err)
		}

		devices = append(devices, d)
	}

	return devices, rows.Err()
}

func (db *DB) GetDevice(ctx context.Context, deviceID string) (*models.MonitoredDevice, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE device_id = $1`, deviceID)

	d, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}

		return nil, fmt.Errorf("%w: get device: %w", ErrFailedToQuery, err)
	}

	return d, nil
}

func (db *DB) UpdateLastSeen(ctx context.Context, deviceID string, seenAt time.Time) error {
	return db.execOnDevice(ctx, deviceID,
		`UPDATE devices SET last_seen_at = $2 WHERE device_id = $1`, seenAt)
}

func (db *DB) UpdateLastReportedPower(ctx context.Context, deviceID string, state models.PowerState) error {
	return db.execOnDevice(ctx, deviceID,
		`UPDATE devices SET last_reported_power = $2 WHERE device_id = $1`, string(state))
}

func (db *DB) execOnDevice(ctx context.Context, deviceID, sql string, args ...any) error {
	tag, err := db.pool.Exec(ctx, sql, append([]any{deviceID}, args...)...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToExecute, err)
	}

	if tag.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}

	return nil
}
