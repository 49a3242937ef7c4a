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

package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/fieldwatch/pkg/models"
)

func TestStatusEventEnvelope(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	data := &models.DeviceStatusEventData{
		DeviceID:       "dev-1",
		PreviousStatus: models.StatusActive,
		CurrentStatus:  models.StatusInactive,
		Timestamp:      ts,
		AlertSent:      true,
	}

	event := statusEvent(data)

	assert.Equal(t, "1.0", event.SpecVersion)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, eventSource, event.Source)
	assert.Equal(t, eventTypeStatus, event.Type)
	assert.Equal(t, subjectStatus, event.Subject)
	require.NotNil(t, event.Time)
	assert.True(t, event.Time.Equal(ts))
	assert.Same(t, data, event.Data)
}

func TestAlertEventSubjects(t *testing.T) {
	tests := []struct {
		name            string
		kind            models.NotificationKind
		expectedSubject string
	}{
		{"power_lost", models.KindPowerLost, subjectPower},
		{"power_restored", models.KindPowerRestored, subjectPower},
		{"high_temperature", models.KindHighTemperature, subjectTemperature},
		{"temperature_normal", models.KindTemperatureNormal, subjectTemperature},
		{"fallback", models.KindStatusChange, subjectStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := alertEvent(&models.DeviceAlertEventData{
				DeviceID:  "dev-1",
				Kind:      tt.kind,
				Timestamp: time.Now(),
			})

			assert.Equal(t, tt.expectedSubject, event.Subject)
			assert.Equal(t, eventTypeAlert, event.Type)
		})
	}
}

func TestEventIDsAreUnique(t *testing.T) {
	data := &models.DeviceStatusEventData{DeviceID: "dev-1", Timestamp: time.Now()}

	first := statusEvent(data)
	second := statusEvent(data)

	assert.NotEqual(t, first.ID, second.ID)
}
