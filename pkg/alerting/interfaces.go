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
	"context"
)

//go:generate mockgen -destination=mock_alerting.go -package=alerting github.com/carverauto/fieldwatch/pkg/alerting Notifier,Sender

// Notifier delivers one composed notification to its recipients.
type Notifier interface {
	Notify(ctx context.Context, notification *Notification) error
}

// Sender is the mail transport underneath EmailNotifier.
type Sender interface {
	Send(ctx context.Context, from string, to []string, msg []byte) error
}
