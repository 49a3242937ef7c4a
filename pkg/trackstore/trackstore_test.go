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

package trackstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/fieldwatch/pkg/models"
)

func TestBoltStoreRoundTrip(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "trackers.db"))
	require.NoError(t, err)

	defer func() {
		require.NoError(t, store.Close())
	}()

	firstOff := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	notified := firstOff.Add(30 * time.Second)

	entry := &models.PowerTrackingEntry{
		DeviceID:           "lora-7",
		FirstOffEventAt:    firstOff,
		LastNotificationAt: &notified,
	}

	require.NoError(t, store.Power.Put("lora-7", entry))

	got, err := store.Power.Get("lora-7")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "lora-7", got.DeviceID)
	assert.True(t, got.FirstOffEventAt.Equal(firstOff))
	require.NotNil(t, got.LastNotificationAt)
	assert.True(t, got.LastNotificationAt.Equal(notified))

	require.NoError(t, store.Power.Delete("lora-7"))

	got, err = store.Power.Get("lora-7")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBoltStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trackers.db")

	store, err := Open(path)
	require.NoError(t, err)

	firstInactive := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Inactivity.Put("dev-1", &models.InactivityTrackingEntry{
		DeviceID:        "dev-1",
		FirstInactiveAt: firstInactive,
	}))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, reopened.Close())
	}()

	entries, err := reopened.Inactivity.All()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries["dev-1"].FirstInactiveAt.Equal(firstInactive))
}

func TestBoltStoreFamiliesAreIsolated(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "trackers.db"))
	require.NoError(t, err)

	defer func() {
		require.NoError(t, store.Close())
	}()

	now := time.Now().UTC()

	require.NoError(t, store.Power.Put("dev-1", &models.PowerTrackingEntry{
		DeviceID:        "dev-1",
		FirstOffEventAt: now,
	}))
	require.NoError(t, store.Temperature.Put("dev-1", &models.TemperatureTrackingEntry{
		DeviceID:      "dev-1",
		HighTempSince: now,
		LastAlertAt:   now,
	}))

	inactivity, err := store.Inactivity.All()
	require.NoError(t, err)
	assert.Empty(t, inactivity)

	power, err := store.Power.All()
	require.NoError(t, err)
	assert.Len(t, power, 1)
}

func TestMemoryStoreCopiesEntries(t *testing.T) {
	store := NewMemory[models.PowerTrackingEntry]()

	entry := &models.PowerTrackingEntry{
		DeviceID:        "dev-1",
		FirstOffEventAt: time.Now().UTC(),
	}

	require.NoError(t, store.Put("dev-1", entry))

	// Mutating the original must not leak into the stored copy.
	entry.DeviceID = "mutated"

	got, err := store.Get("dev-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "dev-1", got.DeviceID)

	missing, err := store.Get("absent")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
