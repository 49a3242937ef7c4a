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

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carverauto/fieldwatch/pkg/models"
)

// execer is the Exec subset shared by pgxpool.Pool and pgx.Tx, so history
// writes run identically at pool level and inside a device transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (db *DB) AddStatusHistory(ctx context.Context, record *models.StatusHistoryRecord) error {
	return insertStatusHistory(ctx, db.pool, record)
}

func insertStatusHistory(ctx context.Context, ex execer, record *models.StatusHistoryRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	var durationSeconds *float64

	if record.Duration != nil {
		seconds := record.Duration.Seconds()
		durationSeconds = &seconds
	}

	_, err := ex.Exec(ctx,
		`INSERT INTO device_status_history
			(id, device_id, previous_status, new_status, changed_at, duration_seconds, reason, is_confirmed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		record.ID, record.DeviceID, string(record.PreviousStatus), string(record.NewStatus),
		record.ChangedAt, durationSeconds, record.Reason, record.IsConfirmed)
	if err != nil {
		return fmt.Errorf("%w: add status history: %w", ErrFailedToExecute, err)
	}

	return nil
}

func (db *DB) GetLastStatusChange(ctx context.Context, deviceID string) (*models.StatusHistoryRecord, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, device_id, previous_status, new_status, changed_at, duration_seconds, reason, is_confirmed
		 FROM device_status_history
		 WHERE device_id = $1
		 ORDER BY changed_at DESC
		 LIMIT 1`, deviceID)

	return scanHistory(row)
}

func scanHistory(row rowScanner) (*models.StatusHistoryRecord, error) {
	var (
		rec             models.StatusHistoryRecord
		durationSeconds *float64
	)

	err := row.Scan(&rec.ID, &rec.DeviceID, &rec.PreviousStatus, &rec.NewStatus,
		&rec.ChangedAt, &durationSeconds, &rec.Reason, &rec.IsConfirmed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("%w: get status history: %w", ErrFailedToQuery, err)
	}

	if durationSeconds != nil {
		d := time.Duration(*durationSeconds * float64(time.Second))
		rec.Duration = &d
	}

	return &rec, nil
}

func (db *DB) LogNotification(ctx context.Context, record *models.NotificationRecord) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO notification_log (device_id, recipient, kind, subject, success, error, sent_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.DeviceID, record.Recipient, string(record.Kind), record.Subject,
		record.Success, record.Error, record.SentAt)
	if err != nil {
		return fmt.Errorf("%w: log notification: %w", ErrFailedToExecute, err)
	}

	return nil
}

func (db *DB) StoreTemperature(ctx context.Context, reading *models.TemperatureReading) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO temperature_readings (device_id, temperature, recorded_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (device_id) DO UPDATE
			SET temperature = EXCLUDED.temperature, recorded_at = EXCLUDED.recorded_at`,
		reading.DeviceID, reading.Temperature, reading.RecordedAt)
	if err != nil {
		return fmt.Errorf("%w: store temperature: %w", ErrFailedToExecute, err)
	}

	return nil
}

func (db *DB) LatestTemperature(ctx context.Context, deviceID string) (*models.TemperatureReading, error) {
	var reading models.TemperatureReading

	err := db.pool.QueryRow(ctx,
		`SELECT device_id, temperature, recorded_at FROM temperature_readings WHERE device_id = $1`,
		deviceID).Scan(&reading.DeviceID, &reading.Temperature, &reading.RecordedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("%w: latest temperature: %w", ErrFailedToQuery, err)
	}

	return &reading, nil
}
