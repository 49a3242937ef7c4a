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

// PowerTrackingEntry tracks a device that reported an OFF edge. Created when
// an OFF edge is observed while none exists; deleted on an ON edge.
type PowerTrackingEntry struct {
	DeviceID           string     `json:"device_id"`
	FirstOffEventAt    time.Time  `json:"first_off_event_at"`
	LastNotificationAt *time.Time `json:"last_notification_at,omitempty"`
}

// InactivityTrackingEntry tracks a heartbeat device whose last-seen timestamp
// crossed the inactivity threshold.
type InactivityTrackingEntry struct {
	DeviceID           string     `json:"device_id"`
	FirstInactiveAt    time.Time  `json:"first_inactive_at"`
	LastNotificationAt *time.Time `json:"last_notification_at,omitempty"`
	// ActiveSince is set only after a notification was sent and the device
	// is later observed active again; recovery is declared once the device
	// stays active for the stability window.
	ActiveSince *time.Time `json:"active_since,omitempty"`
}

// TemperatureTrackingEntry is present only while a device is considered
// over-threshold. LastAlertAt re-arms on every resend.
type TemperatureTrackingEntry struct {
	DeviceID      string    `json:"device_id"`
	HighTempSince time.Time `json:"high_temp_since"`
	LastAlertAt   time.Time `json:"last_alert_at"`
}
