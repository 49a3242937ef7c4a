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

import "errors"

var (
	// ErrNoRecipients is returned when a notification has no recipient list.
	ErrNoRecipients = errors.New("notification has no recipients")

	// ErrUnknownKind is returned when a notification kind has no composer.
	ErrUnknownKind = errors.New("unknown notification kind")

	// ErrSendFailed wraps transport-level delivery failures.
	ErrSendFailed = errors.New("failed to send notification")
)
