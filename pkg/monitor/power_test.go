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

package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/fieldwatch/pkg/alerting"
	"github.com/carverauto/fieldwatch/pkg/db"
	"github.com/carverauto/fieldwatch/pkg/logger"
	"github.com/carverauto/fieldwatch/pkg/models"
	"github.com/carverauto/fieldwatch/pkg/trackstore"
)

type powerFixture struct {
	t        *testing.T
	tracker  *PowerEventTracker
	database *db.MockService
	notifier *alerting.MockNotifier
	tx       *db.MockDeviceTx
	store    *trackstore.Memory[models.PowerTrackingEntry]
	clock    *fakeClock
	device   *models.MonitoredDevice
}

func newPowerFixture(t *testing.T) *powerFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	database := db.NewMockService(ctrl)
	notifier := alerting.NewMockNotifier(ctrl)
	store := trackstore.NewMemory[models.PowerTrackingEntry]()
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	config := testConfig()

	dispatcher := NewDispatcher(database, notifier, clock, config, logger.NewTestLogger())
	tracker := NewPowerEventTracker(database, dispatcher, nil, store, clock, config, logger.NewTestLogger())

	device := testDevice("lora-7")
	device.Class = models.ClassPower

	tx := db.NewMockDeviceTx(ctrl)
	tx.EXPECT().Device().Return(device).AnyTimes()

	return &powerFixture{
		t:        t,
		tracker:  tracker,
		database: database,
		notifier: notifier,
		tx:       tx,
		store:    store,
		clock:    clock,
		device:   device,
	}
}

func (f *powerFixture) expectDeviceLookup(times int) {
	f.database.EXPECT().
		GetDevice(gomock.Any(), f.device.DeviceID).
		Return(f.device, nil).
		Times(times)
}

// expectDelivery wires a successful delivery of one notification through
// the device row lock.
func (f *powerFixture) expectDelivery(kind models.NotificationKind) {
	f.database.EXPECT().
		WithDeviceLock(gomock.Any(), f.device.DeviceID, gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, fn func(context.Context, db.DeviceTx) error) error {
			return fn(ctx, f.tx)
		})
	f.notifier.EXPECT().
		Notify(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n *alerting.Notification) error {
			assert.Equal(f.t, kind, n.Kind)
			return nil
		})
	f.database.EXPECT().LogNotification(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	f.tx.EXPECT().SetLastNotificationSent(gomock.Any(), gomock.Any()).Return(nil)
}

func (f *powerFixture) offEvent() *models.PowerEvent {
	return &models.PowerEvent{DeviceID: f.device.DeviceID, State: models.PowerOff, Timestamp: f.clock.Now()}
}

func (f *powerFixture) onEvent() *models.PowerEvent {
	return &models.PowerEvent{DeviceID: f.device.DeviceID, State: models.PowerOn, Timestamp: f.clock.Now()}
}

func TestPowerInvalidStateDropped(t *testing.T) {
	f := newPowerFixture(t)

	err := f.tracker.HandleEvent(context.Background(), &models.PowerEvent{
		DeviceID: "lora-7",
		State:    models.PowerState("MAYBE"),
	})

	require.ErrorIs(t, err, ErrInvalidPowerState)
}

func TestPowerUnknownDeviceDropped(t *testing.T) {
	f := newPowerFixture(t)

	f.database.EXPECT().
		GetDevice(gomock.Any(), "lora-7").
		Return(nil, db.ErrDeviceNotFound)

	require.NoError(t, f.tracker.HandleEvent(context.Background(), f.offEvent()))
}

func TestPowerOffCreatesEntryWithoutNotification(t *testing.T) {
	f := newPowerFixture(t)

	on := models.PowerOn
	f.device.LastReportedPower = &on

	f.expectDeviceLookup(1)
	f.database.EXPECT().
		UpdateLastReportedPower(gomock.Any(), "lora-7", models.PowerOff).
		Return(nil)

	require.NoError(t, f.tracker.HandleEvent(context.Background(), f.offEvent()))

	entry, err := f.store.Get("lora-7")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.FirstOffEventAt.Equal(f.clock.Now()))
	assert.Nil(t, entry.LastNotificationAt)
}

func TestPowerSweepLifecycle(t *testing.T) {
	// Spec'd flow: OFF at t=0, first alert at the t=30 sweep, resend at
	// t=330, single restore alert on ON.
	f := newPowerFixture(t)

	on := models.PowerOn
	f.device.LastReportedPower = &on

	f.expectDeviceLookup(1)
	f.database.EXPECT().UpdateLastReportedPower(gomock.Any(), "lora-7", models.PowerOff).Return(nil)
	require.NoError(t, f.tracker.HandleEvent(context.Background(), f.offEvent()))

	// Sweep before the delay: nothing sent.
	f.clock.Advance(10 * time.Second)
	f.expectDeviceLookup(1)
	f.tracker.Sweep(context.Background())

	// t=30: first power-lost alert.
	f.clock.Advance(20 * time.Second)
	f.expectDeviceLookup(1)
	f.expectDelivery(models.KindPowerLost)
	f.tracker.Sweep(context.Background())

	entry, err := f.store.Get("lora-7")
	require.NoError(t, err)
	require.NotNil(t, entry.LastNotificationAt)
	firstAlertAt := *entry.LastNotificationAt

	// t=130: inside the repeat interval, nothing sent.
	f.clock.Advance(100 * time.Second)
	f.expectDeviceLookup(1)
	f.tracker.Sweep(context.Background())

	// t=330: repeat alert.
	f.clock.Advance(200 * time.Second)
	f.expectDeviceLookup(1)
	f.expectDelivery(models.KindPowerLost)
	f.tracker.Sweep(context.Background())

	entry, err = f.store.Get("lora-7")
	require.NoError(t, err)
	require.NotNil(t, entry.LastNotificationAt)
	assert.True(t, entry.LastNotificationAt.After(firstAlertAt))

	// ON: exactly one restore alert, entry deleted.
	f.clock.Advance(70 * time.Second)
	f.expectDeviceLookup(1)
	f.database.EXPECT().UpdateLastReportedPower(gomock.Any(), "lora-7", models.PowerOn).Return(nil)
	f.expectDelivery(models.KindPowerRestored)
	require.NoError(t, f.tracker.HandleEvent(context.Background(), f.onEvent()))

	entry, err = f.store.Get("lora-7")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestPowerRedundantOffDrivesSweep(t *testing.T) {
	f := newPowerFixture(t)

	off := models.PowerOff
	f.device.LastReportedPower = &off

	require.NoError(t, f.store.Put("lora-7", &models.PowerTrackingEntry{
		DeviceID:        "lora-7",
		FirstOffEventAt: f.clock.Now().Add(-45 * time.Second),
	}))

	// A duplicate OFF does not reset the entry but still triggers the
	// overdue first alert.
	f.expectDeviceLookup(1)
	f.expectDelivery(models.KindPowerLost)

	require.NoError(t, f.tracker.HandleEvent(context.Background(), f.offEvent()))

	entry, err := f.store.Get("lora-7")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.NotNil(t, entry.LastNotificationAt)
}

func TestPowerRedundantOffRecreatesLostEntry(t *testing.T) {
	f := newPowerFixture(t)

	// The OFF state persisted but the tracking entry never made it to the
	// store. A duplicate OFF reopens the episode instead of dropping it.
	off := models.PowerOff
	f.device.LastReportedPower = &off

	f.expectDeviceLookup(1)

	require.NoError(t, f.tracker.HandleEvent(context.Background(), f.offEvent()))

	entry, err := f.store.Get("lora-7")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.FirstOffEventAt.Equal(f.clock.Now()))
	assert.Nil(t, entry.LastNotificationAt)
}

func TestPowerOnWithoutEntryDoesNothing(t *testing.T) {
	f := newPowerFixture(t)

	off := models.PowerOff
	f.device.LastReportedPower = &off

	f.expectDeviceLookup(1)
	f.database.EXPECT().UpdateLastReportedPower(gomock.Any(), "lora-7", models.PowerOn).Return(nil)

	// Genuine ON with no tracked OFF episode: no notification.
	require.NoError(t, f.tracker.HandleEvent(context.Background(), f.onEvent()))
}

func TestPowerStaleEntryPurged(t *testing.T) {
	f := newPowerFixture(t)

	require.NoError(t, f.store.Put("lora-7", &models.PowerTrackingEntry{
		DeviceID:        "lora-7",
		FirstOffEventAt: f.clock.Now().Add(-25 * time.Hour),
	}))

	f.expectDeviceLookup(1)

	// Purged without any notification.
	f.tracker.Sweep(context.Background())

	entry, err := f.store.Get("lora-7")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestPowerOrphanedEntryDropped(t *testing.T) {
	f := newPowerFixture(t)

	require.NoError(t, f.store.Put("gone-1", &models.PowerTrackingEntry{
		DeviceID:        "gone-1",
		FirstOffEventAt: f.clock.Now(),
	}))

	f.database.EXPECT().
		GetDevice(gomock.Any(), "gone-1").
		Return(nil, db.ErrDeviceNotFound)

	f.tracker.Sweep(context.Background())

	entry, err := f.store.Get("gone-1")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestPowerIsTracked(t *testing.T) {
	f := newPowerFixture(t)

	assert.False(t, f.tracker.IsTracked("lora-7"))

	require.NoError(t, f.store.Put("lora-7", &models.PowerTrackingEntry{
		DeviceID:        "lora-7",
		FirstOffEventAt: f.clock.Now(),
	}))

	assert.True(t, f.tracker.IsTracked("lora-7"))
}
