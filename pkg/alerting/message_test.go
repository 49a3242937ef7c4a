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

package alerting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/fieldwatch/pkg/models"
)

func TestCompose(t *testing.T) {
	occurredAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lastSeen := occurredAt.Add(-10 * time.Minute)
	temperature := 27.5

	tests := []struct {
		name            string
		notification    *Notification
		expectedSubject string
		bodyContains    []string
		expectedErr     error
	}{
		{
			name: "inactivity_alert",
			notification: &Notification{
				DeviceID:   "dev-1",
				DeviceName: "Pump Station",
				Kind:       models.KindInactivity,
				OccurredAt: occurredAt,
				LastSeenAt: &lastSeen,
			},
			expectedSubject: "Alert: Pump Station Not Sending Data",
			bodyContains: []string{
				"has stopped sending data",
				"- Device ID: dev-1",
				"- Last Data Received: 2025-06-01 11:50:00 UTC",
				"- Alert Time: 2025-06-01 12:00:00 UTC",
				"Network connectivity",
			},
		},
		{
			name: "recovery_alert",
			notification: &Notification{
				DeviceID:   "dev-1",
				DeviceName: "Pump Station",
				Kind:       models.KindRecovery,
				OccurredAt: occurredAt,
				LastSeenAt: &occurredAt,
			},
			expectedSubject: "Update: Pump Station is Sending Data",
			bodyContains: []string{
				"has resumed sending data",
				"No further action is required",
			},
		},
		{
			name: "power_lost_never_seen",
			notification: &Notification{
				DeviceID:   "lora-7",
				DeviceName: "Gate Sensor",
				Kind:       models.KindPowerLost,
				OccurredAt: occurredAt,
			},
			expectedSubject: "Power Alert: Gate Sensor is Offline",
			bodyContains: []string{
				"has lost power",
				"- Last Seen: never",
				"every 5 minutes until power is restored",
			},
		},
		{
			name: "power_restored",
			notification: &Notification{
				DeviceID:   "lora-7",
				DeviceName: "Gate Sensor",
				Kind:       models.KindPowerRestored,
				OccurredAt: occurredAt,
			},
			expectedSubject: "Power Restored: Gate Sensor is Online",
			bodyContains: []string{
				"has regained power",
				"- Power Restored: 2025-06-01 12:00:00 UTC",
			},
		},
		{
			name: "high_temperature",
			notification: &Notification{
				DeviceID:    "dev-2",
				DeviceName:  "Boiler",
				Kind:        models.KindHighTemperature,
				OccurredAt:  occurredAt,
				Temperature: &temperature,
			},
			expectedSubject: "High Temperature Alert - Boiler",
			bodyContains: []string{
				"high temperature alert",
				"Current Temperature: 27.5°C",
			},
		},
		{
			name: "temperature_normal",
			notification: &Notification{
				DeviceID:    "dev-2",
				DeviceName:  "Boiler",
				Kind:        models.KindTemperatureNormal,
				OccurredAt:  occurredAt,
				Temperature: &temperature,
			},
			expectedSubject: "Temperature Normal Alert - Boiler",
			bodyContains:    []string{"temperature normal alert"},
		},
		{
			name: "unknown_kind",
			notification: &Notification{
				DeviceID: "dev-3",
				Kind:     models.NotificationKind("bogus"),
			},
			expectedErr: ErrUnknownKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Compose(tt.notification)

			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedSubject, tt.notification.Subject)

			for _, fragment := range tt.bodyContains {
				assert.Contains(t, tt.notification.Body, fragment)
			}
		})
	}
}

func TestComposePreservesOverrides(t *testing.T) {
	n := &Notification{
		DeviceID:   "dev-1",
		DeviceName: "Pump Station",
		Kind:       models.KindRecovery,
		OccurredAt: time.Now(),
		Subject:    "custom subject",
		Body:       "custom body",
	}

	require.NoError(t, Compose(n))

	assert.Equal(t, "custom subject", n.Subject)
	assert.Equal(t, "custom body", n.Body)
}
