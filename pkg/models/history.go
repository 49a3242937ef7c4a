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

// StatusHistoryRecord is an append-only record of one committed status
// transition. Created exactly once per transition, never mutated.
type StatusHistoryRecord struct {
	ID             string       `json:"id"`
	DeviceID       string       `json:"device_id"`
	PreviousStatus DeviceStatus `json:"previous_status"`
	NewStatus      DeviceStatus `json:"new_status"`
	ChangedAt      time.Time    `json:"changed_at"`
	// Duration of the previous status, computed from the prior history
	// record for the device. Nil for the first transition.
	Duration    *time.Duration `json:"duration,omitempty"`
	Reason      string         `json:"reason"`
	IsConfirmed bool           `json:"is_confirmed"`
}

// NotificationKind identifies the alert family a notification belongs to.
type NotificationKind string

const (
	KindStatusChange      NotificationKind = "status_change"
	KindInactivity        NotificationKind = "inactivity"
	KindRecovery          NotificationKind = "recovery"
	KindPowerLost         NotificationKind = "power_lost"
	KindPowerRestored     NotificationKind = "power_restored"
	KindHighTemperature   NotificationKind = "high_temperature"
	KindTemperatureNormal NotificationKind = "temperature_normal"
)

// NotificationRecord is an immutable log entry for one delivery attempt.
type NotificationRecord struct {
	DeviceID  string           `json:"device_id"`
	Recipient string           `json:"recipient"`
	Kind      NotificationKind `json:"kind"`
	Subject   string           `json:"subject"`
	Success   bool             `json:"success"`
	Error     string           `json:"error,omitempty"`
	SentAt    time.Time        `json:"sent_at"`
}

// TemperatureReading is the latest temperature sample for a device.
type TemperatureReading struct {
	DeviceID    string    `json:"device_id"`
	Temperature float64   `json:"temperature"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// PowerEvent is an explicit ON/OFF report from an edge-triggered device.
type PowerEvent struct {
	DeviceID  string     `json:"device_id"`
	State     PowerState `json:"state"`
	Timestamp time.Time  `json:"timestamp"`
}
