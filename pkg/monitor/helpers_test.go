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
	"time"

	"github.com/carverauto/fieldwatch/pkg/models"
)

func testConfig() *Config {
	cfg := &Config{}
	cfg.SetDefaults()

	return cfg
}

func testDevice(id string) *models.MonitoredDevice {
	return &models.MonitoredDevice{
		DeviceID:        id,
		Name:            "Pump Station",
		Class:           models.ClassHeartbeat,
		OwnerEmail:      "owner@example.com",
		AdminEmail:      "admin@example.com",
		ConfirmedStatus: models.StatusActive,
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
