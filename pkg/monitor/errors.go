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

import "errors"

var (
	// ErrRateLimited is returned when a notification is suppressed by the
	// per-device minimum interval. No delivery attempt is made.
	ErrRateLimited = errors.New("notification rate limited")

	// ErrDeliveryFailed is returned after all delivery attempts failed.
	ErrDeliveryFailed = errors.New("notification delivery failed")

	// ErrInvalidPowerState is returned for power events that are neither ON
	// nor OFF.
	ErrInvalidPowerState = errors.New("invalid power state")

	errInvalidInterval = errors.New("interval must be positive")
)
