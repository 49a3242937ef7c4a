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

package models

import (
	"time"
)

// DeviceStatus is the liveness classification of a device.
type DeviceStatus string

const (
	StatusActive   DeviceStatus = "active"
	StatusInactive DeviceStatus = "inactive"
)

// PowerState is an explicit power report from an edge-triggered device.
type PowerState string

const (
	PowerOn  PowerState = "ON"
	PowerOff PowerState = "OFF"
)

// DeviceClass selects which tracker family owns a device.
type DeviceClass string

const (
	// ClassHeartbeat devices report continuous telemetry; liveness is derived
	// from the last-seen timestamp.
	ClassHeartbeat DeviceClass = "heartbeat"
	// ClassPower devices report explicit ON/OFF power events.
	ClassPower DeviceClass = "power"
)

// MonitoredDevice is a field device tracked by the monitoring engine.
//
// Invariant: PendingStatus is non-nil iff PendingSince is non-nil, and
// PendingStatus never equals ConfirmedStatus while set.
type MonitoredDevice struct {
	DeviceID   string      `json:"device_id"`
	Name       string      `json:"name"`
	Class      DeviceClass `json:"class"`
	OwnerEmail string      `json:"owner_email"`
	AdminEmail string      `json:"admin_email,omitempty"`

	LastSeenAt      *time.Time    `json:"last_seen_at,omitempty"`
	ConfirmedStatus DeviceStatus  `json:"confirmed_status"`
	PendingStatus   *DeviceStatus `json:"pending_status,omitempty"`
	PendingSince    *time.Time    `json:"pending_since,omitempty"`

	LastReportedPower *PowerState `json:"last_reported_power,omitempty"`

	LastNotificationSentAt *time.Time `json:"last_notification_sent_at,omitempty"`

	StatusChangeCount   int        `json:"status_change_count"`
	StatusLastChangedAt *time.Time `json:"status_last_changed_at,omitempty"`

	// HighTempThreshold overrides the default high-temperature threshold
	// (degrees Celsius) when set.
	HighTempThreshold *float64 `json:"high_temp_threshold,omitempty"`
}

// Recipients returns the notification recipient list: the owner plus the
// administrator when distinct.
func (d *MonitoredDevice) Recipients() []string {
	recipients := []string{d.OwnerEmail}

	if d.AdminEmail != "" && d.AdminEmail != d.OwnerEmail {
		recipients = append(recipients, d.AdminEmail)
	}

	return recipients
}
