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

// EvaluateStatus computes the raw, undebounced liveness classification. A
// device never seen is Inactive; otherwise it is Active while the gap since
// the last heartbeat is under the threshold.
func EvaluateStatus(lastSeenAt *time.Time, now time.Time, threshold time.Duration) models.DeviceStatus {
	if lastSeenAt == nil {
		return models.StatusInactive
	}

	if now.Sub(*lastSeenAt) < threshold {
		return models.StatusActive
	}

	return models.StatusInactive
}
