/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package db pkg/db/interfaces.go
package db

import (
	"context"
	"time"

	"github.com/carverauto/fieldwatch/pkg/models"
)

//go:generate mockgen -destination=mock_db.go -package=db github.com/carverauto/fieldwatch/pkg/db Service,DeviceTx

// Service represents all database operations for the fieldwatch store.
type Service interface {
	Close() error

	// Device operations.

	ListDevices(ctx context.Context) ([]*models.MonitoredDevice, error)
	ListDevicesByClass(ctx context.Context, class models.DeviceClass) ([]*models.MonitoredDevice, error)
	GetDevice(ctx context.Context, deviceID string) (*models.MonitoredDevice, error)
	UpdateLastSeen(ctx context.Context, deviceID string, seenAt time.Time) error
	UpdateLastReportedPower(ctx context.Context, deviceID string, state models.PowerState) error

	// Status history operations.

	AddStatusHistory(ctx context.Context, record *models.StatusHistoryRecord) error
	GetLastStatusChange(ctx context.Context, deviceID string) (*models.StatusHistoryRecord, error)

	// Notification log operations.

	LogNotification(ctx context.Context, record *models.NotificationRecord) error

	// Temperature operations.

	StoreTemperature(ctx context.Context, reading *models.TemperatureReading) error
	LatestTemperature(ctx context.Context, deviceID string) (*models.TemperatureReading, error)

	// WithDeviceLock runs fn inside a transaction holding an exclusive row
	// lock on the device. Transient contention is retried with bounded
	// backoff; exhausting retries returns ErrLockContended.
	WithDeviceLock(ctx context.Context, deviceID string, fn func(ctx context.Context, tx DeviceTx) error) error
}

// DeviceTx exposes the device operations available while the row lock is held.
type DeviceTx interface {
	// Device returns the locked device row as read at lock acquisition.
	Device() *models.MonitoredDevice

	// Refresh re-reads the device row inside the transaction.
	Refresh(ctx context.Context) error

	SetPending(ctx context.Context, status models.DeviceStatus, since time.Time) error
	ClearPending(ctx context.Context) error

	// SetLastNotificationSent updates the rate-limit timestamp through the
	// held transaction. Pool-level updates would block on the row lock.
	SetLastNotificationSent(ctx context.Context, sentAt time.Time) error

	// CommitStatusChange writes the new confirmed status, increments the
	// change counter, clears any pending entry, and appends the history
	// record, all under the held lock.
	CommitStatusChange(ctx context.Context, newStatus models.DeviceStatus, record *models.StatusHistoryRecord) error
}
