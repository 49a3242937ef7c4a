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

// Package alerting composes and delivers device notifications over email.
package alerting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/carverauto/fieldwatch/pkg/logger"
)

// EmailNotifier composes notification text and hands it to a mail Sender.
type EmailNotifier struct {
	sender Sender
	from   string
	logger logger.Logger
}

// NewEmailNotifier creates an EmailNotifier sending from the given address.
func NewEmailNotifier(sender Sender, from string, log logger.Logger) *EmailNotifier {
	return &EmailNotifier{
		sender: sender,
		from:   from,
		logger: log.WithComponent("alerting"),
	}
}

// Notify composes the notification (unless pre-composed) and sends one
// message addressed to all recipients.
func (e *EmailNotifier) Notify(ctx context.Context, notification *Notification) error {
	if len(notification.Recipients) == 0 {
		return ErrNoRecipients
	}

	if err := Compose(notification); err != nil {
		return err
	}

	msg := buildMessage(e.from, notification.Recipients, notification.Subject, notification.Body)

	if err := e.sender.Send(ctx, e.from, notification.Recipients, msg); err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	e.logger.Info().
		Str("device_id", notification.DeviceID).
		Str("kind", string(notification.Kind)).
		Str("subject", notification.Subject).
		Strs("recipients", notification.Recipients).
		Msg("Notification sent")

	return nil
}

func buildMessage(from string, to []string, subject, body string) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return []byte(b.String())
}
