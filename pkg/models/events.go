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

// CloudEvent is a CloudEvents 1.0 envelope published to the event stream.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject,omitempty"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}

// DeviceStatusEventData is the payload for a confirmed status transition.
type DeviceStatusEventData struct {
	DeviceID       string       `json:"device_id"`
	PreviousStatus DeviceStatus `json:"previous_status"`
	CurrentStatus  DeviceStatus `json:"current_status"`
	Timestamp      time.Time    `json:"timestamp"`
	LastSeen       *time.Time   `json:"last_seen,omitempty"`
	Reason         string       `json:"reason,omitempty"`
	AlertSent      bool         `json:"alert_sent"`
}

// DeviceAlertEventData is the payload for power and temperature alerts.
type DeviceAlertEventData struct {
	DeviceID    string           `json:"device_id"`
	Kind        NotificationKind `json:"kind"`
	Message     string           `json:"message"`
	Timestamp   time.Time        `json:"timestamp"`
	Temperature *float64         `json:"temperature,omitempty"`
}
