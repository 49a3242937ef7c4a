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

type temperatureFixture struct {
	t        *testing.T
	monitor  *TemperatureThresholdMonitor
	database *db.MockService
	notifier *alerting.MockNotifier
	tx       *db.MockDeviceTx
	store    *trackstore.Memory[models.TemperatureTrackingEntry]
	clock    *fakeClock
	device   *models.MonitoredDevice
}

func newTemperatureFixture(t *testing.T) *temperatureFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	database := db.NewMockService(ctrl)
	notifier := alerting.NewMockNotifier(ctrl)
	store := trackstore.NewMemory[models.TemperatureTrackingEntry]()
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	config := testConfig()

	dispatcher := NewDispatcher(database, notifier, clock, config, logger.NewTestLogger())
	monitor := NewTemperatureThresholdMonitor(database, dispatcher, nil, store, clock, config, logger.NewTestLogger())

	device := testDevice("fridge-2")

	tx := db.NewMockDeviceTx(ctrl)
	tx.EXPECT().Device().Return(device).AnyTimes()

	return &temperatureFixture{
		t:        t,
		monitor:  monitor,
		database: database,
		notifier: notifier,
		tx:       tx,
		store:    store,
		clock:    clock,
		device:   device,
	}
}

func (f *temperatureFixture) expectReading(temperature float64) {
	f.database.EXPECT().
		LatestTemperature(gomock.Any(), f.device.DeviceID).
		Return(&models.TemperatureReading{
			DeviceID:    f.device.DeviceID,
			Temperature: temperature,
			RecordedAt:  f.clock.Now(),
		}, nil)
}

func (f *temperatureFixture) expectDelivery(kind models.NotificationKind, temperature float64) {
	f.database.EXPECT().
		WithDeviceLock(gomock.Any(), f.device.DeviceID, gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, fn func(context.Context, db.DeviceTx) error) error {
			return fn(ctx, f.tx)
		})
	f.notifier.EXPECT().
		Notify(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n *alerting.Notification) error {
			assert.Equal(f.t, kind, n.Kind)
			require.NotNil(f.t, n.Temperature)
			assert.InDelta(f.t, temperature, *n.Temperature, 0.001)

			return nil
		})
	f.database.EXPECT().LogNotification(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	f.tx.EXPECT().SetLastNotificationSent(gomock.Any(), gomock.Any()).Return(nil)
}

func (f *temperatureFixture) check() error {
	return f.monitor.CheckDevice(context.Background(), f.device)
}

func TestTemperatureNoReadingSkipped(t *testing.T) {
	f := newTemperatureFixture(t)

	f.database.EXPECT().
		LatestTemperature(gomock.Any(), "fridge-2").
		Return(nil, nil)

	require.NoError(t, f.check())

	entry, err := f.store.Get("fridge-2")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestTemperatureUnderThresholdNoEpisode(t *testing.T) {
	f := newTemperatureFixture(t)

	f.expectReading(24.9)

	require.NoError(t, f.check())

	entry, err := f.store.Get("fridge-2")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestTemperatureCrossingAlertsImmediately(t *testing.T) {
	f := newTemperatureFixture(t)

	f.expectReading(26.5)
	f.expectDelivery(models.KindHighTemperature, 26.5)

	require.NoError(t, f.check())

	entry, err := f.store.Get("fridge-2")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.HighTempSince.Equal(f.clock.Now()))
	assert.True(t, entry.LastAlertAt.Equal(f.clock.Now()))
}

func TestTemperatureRealertAfterInterval(t *testing.T) {
	f := newTemperatureFixture(t)

	f.expectReading(26.5)
	f.expectDelivery(models.KindHighTemperature, 26.5)
	require.NoError(t, f.check())

	// Still hot 2 minutes later: inside the 5 minute re-alert interval.
	f.clock.Advance(2 * time.Minute)
	f.expectReading(27.0)
	require.NoError(t, f.check())

	// 5 minutes after the first alert the timer re-arms.
	f.clock.Advance(3 * time.Minute)
	f.expectReading(27.2)
	f.expectDelivery(models.KindHighTemperature, 27.2)
	require.NoError(t, f.check())

	entry, err := f.store.Get("fridge-2")
	require.NoError(t, err)
	assert.True(t, entry.LastAlertAt.Equal(f.clock.Now()))
}

func TestTemperatureOverrideThreshold(t *testing.T) {
	f := newTemperatureFixture(t)

	override := 30.0
	f.device.HighTempThreshold = &override

	// Over the 25.0 default but under the device override: no episode.
	f.expectReading(28.0)
	require.NoError(t, f.check())

	entry, err := f.store.Get("fridge-2")
	require.NoError(t, err)
	assert.Nil(t, entry)

	f.clock.Advance(time.Minute)
	f.expectReading(30.5)
	f.expectDelivery(models.KindHighTemperature, 30.5)
	require.NoError(t, f.check())
}

func TestTemperatureReturnToNormalSingleNotice(t *testing.T) {
	f := newTemperatureFixture(t)

	f.expectReading(26.5)
	f.expectDelivery(models.KindHighTemperature, 26.5)
	require.NoError(t, f.check())

	// Back under threshold: one normal notice, episode closed.
	f.clock.Advance(2 * time.Minute)
	f.expectReading(23.0)
	f.expectDelivery(models.KindTemperatureNormal, 23.0)
	require.NoError(t, f.check())

	entry, err := f.store.Get("fridge-2")
	require.NoError(t, err)
	assert.Nil(t, entry)

	// Still normal next pass: nothing more.
	f.clock.Advance(time.Minute)
	f.expectReading(23.0)
	require.NoError(t, f.check())
}

func TestTemperatureRateLimitedFirstAlertRetries(t *testing.T) {
	f := newTemperatureFixture(t)

	// A fresh notification on another condition suppresses the first alert.
	f.device.LastNotificationSentAt = timePtr(f.clock.Now().Add(-10 * time.Second))

	f.expectReading(26.5)
	require.NoError(t, f.check())

	// The episode opened with a zero LastAlertAt, so the next pass retries
	// the first alert once the rate limit clears.
	entry, err := f.store.Get("fridge-2")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.LastAlertAt.IsZero())

	f.clock.Advance(time.Minute)
	f.expectReading(26.5)
	f.expectDelivery(models.KindHighTemperature, 26.5)
	require.NoError(t, f.check())
}

func TestTemperatureTickListsDevices(t *testing.T) {
	f := newTemperatureFixture(t)

	f.database.EXPECT().
		ListDevices(gomock.Any()).
		Return([]*models.MonitoredDevice{f.device}, nil)
	f.expectReading(20.0)

	f.monitor.Tick(context.Background())
}
