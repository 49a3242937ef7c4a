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
	"fmt"
	"time"

	"github.com/carverauto/fieldwatch/pkg/models"
)

const (
	defaultMonitorInterval      = 30 * time.Second
	defaultInactivityThreshold  = 30 * time.Second
	defaultConfirmationWindow   = 90 * time.Second
	defaultConfirmationWait     = 90 * time.Second
	defaultNotificationInterval = 300 * time.Second
	defaultStabilityWindow      = 30 * time.Second
	defaultRateLimit            = 60 * time.Second
	defaultPowerFirstAlertDelay = 30 * time.Second
	defaultPowerPurgeAfter      = 24 * time.Hour
	defaultTemperatureRealert   = 300 * time.Second
	defaultHighTempThreshold    = 25.0
	defaultMaxRetries           = 3
	defaultMaxConcurrentChecks  = 8
)

// Config holds the timing knobs of the monitoring engine. All durations
// accept human-readable JSON strings ("90s", "5m").
type Config struct {
	// MonitorInterval is the tick period of every tracker family.
	MonitorInterval models.Duration `json:"monitor_interval"`

	// InactivityThreshold is the single heartbeat-absence threshold used by
	// every liveness check.
	InactivityThreshold models.Duration `json:"inactivity_threshold"`

	// ConfirmationWindow is how long a pending status candidate must hold
	// before it is committed.
	ConfirmationWindow models.Duration `json:"confirmation_window"`

	// ConfirmationWait is the inactivity tracker's delay before its first
	// notification.
	ConfirmationWait models.Duration `json:"confirmation_wait"`

	// NotificationInterval is the repeat period for ongoing power and
	// inactivity conditions.
	NotificationInterval models.Duration `json:"notification_interval"`

	// StabilityWindow is the continuous-activity requirement before a
	// recovery notification is emitted.
	StabilityWindow models.Duration `json:"stability_window"`

	// RateLimit is the minimum spacing between any two notifications for
	// the same device, regardless of kind.
	RateLimit models.Duration `json:"rate_limit"`

	// PowerFirstAlertDelay is how long after the first OFF event the first
	// power-lost notification is sent.
	PowerFirstAlertDelay models.Duration `json:"power_first_alert_delay"`

	// PowerPurgeAfter bounds how long a stale OFF entry is tracked.
	PowerPurgeAfter models.Duration `json:"power_purge_after"`

	// TemperatureRealertInterval is the re-alert period for a device that
	// stays over threshold.
	TemperatureRealertInterval models.Duration `json:"temperature_realert_interval"`

	// DefaultHighTempThreshold applies when the device has no override.
	DefaultHighTempThreshold float64 `json:"default_high_temp_threshold"`

	// MaxRetries bounds delivery attempts per notification.
	MaxRetries int `json:"max_retries"`

	// MaxConcurrentChecks bounds per-tick device concurrency so one
	// device's delivery retries cannot starve the rest of the tick.
	MaxConcurrentChecks int `json:"max_concurrent_checks"`

	// CommitWithoutDelivery controls whether a confirmed transition commits
	// when every delivery attempt failed. The historical policy is true.
	CommitWithoutDelivery *bool `json:"commit_without_delivery,omitempty"`
}

// SetDefaults fills zero-valued fields.
func (c *Config) SetDefaults() {
	setDurationDefault(&c.MonitorInterval, defaultMonitorInterval)
	setDurationDefault(&c.InactivityThreshold, defaultInactivityThreshold)
	setDurationDefault(&c.ConfirmationWindow, defaultConfirmationWindow)
	setDurationDefault(&c.ConfirmationWait, defaultConfirmationWait)
	setDurationDefault(&c.NotificationInterval, defaultNotificationInterval)
	setDurationDefault(&c.StabilityWindow, defaultStabilityWindow)
	setDurationDefault(&c.RateLimit, defaultRateLimit)
	setDurationDefault(&c.PowerFirstAlertDelay, defaultPowerFirstAlertDelay)
	setDurationDefault(&c.PowerPurgeAfter, defaultPowerPurgeAfter)
	setDurationDefault(&c.TemperatureRealertInterval, defaultTemperatureRealert)

	if c.DefaultHighTempThreshold == 0 {
		c.DefaultHighTempThreshold = defaultHighTempThreshold
	}

	if c.MaxRetries == 0 {
		c.MaxRetries = defaultMaxRetries
	}

	if c.MaxConcurrentChecks == 0 {
		c.MaxConcurrentChecks = defaultMaxConcurrentChecks
	}

	if c.CommitWithoutDelivery == nil {
		commit := true
		c.CommitWithoutDelivery = &commit
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	intervals := map[string]models.Duration{
		"monitor_interval":             c.MonitorInterval,
		"inactivity_threshold":         c.InactivityThreshold,
		"confirmation_window":          c.ConfirmationWindow,
		"confirmation_wait":            c.ConfirmationWait,
		"notification_interval":        c.NotificationInterval,
		"stability_window":             c.StabilityWindow,
		"rate_limit":                   c.RateLimit,
		"power_first_alert_delay":      c.PowerFirstAlertDelay,
		"power_purge_after":            c.PowerPurgeAfter,
		"temperature_realert_interval": c.TemperatureRealertInterval,
	}

	for name, d := range intervals {
		if d.AsDuration() <= 0 {
			return fmt.Errorf("%w: %s", errInvalidInterval, name)
		}
	}

	return nil
}

func setDurationDefault(d *models.Duration, def time.Duration) {
	if d.AsDuration() == 0 {
		*d = models.Duration(def)
	}
}
