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
	"fmt"
	"strings"
	"time"

	"github.com/carverauto/fieldwatch/pkg/models"
)

const timestampLayout = "2006-01-02 15:04:05 UTC"

// Notification is one alert to be delivered. Subject and Body are filled by
// Compose from the kind-specific template; callers may pre-set them to
// override the template.
type Notification struct {
	DeviceID   string
	DeviceName string
	Kind       models.NotificationKind
	Recipients []string
	OccurredAt time.Time

	// LastSeenAt is included in liveness and power bodies when known.
	LastSeenAt *time.Time
	// Temperature is required for the temperature kinds.
	Temperature *float64

	Subject string
	Body    string
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func formatOptionalTimestamp(t *time.Time) string {
	if t == nil {
		return "never"
	}

	return formatTimestamp(*t)
}

// Compose fills Subject and Body for the notification's kind. Already-set
// fields are left untouched.
func Compose(n *Notification) error {
	if n.Subject != "" && n.Body != "" {
		return nil
	}

	var subject, body string

	switch n.Kind {
	case models.KindStatusChange, models.KindInactivity:
		subject = fmt.Sprintf("Alert: %s Not Sending Data", n.DeviceName)
		body = inactiveBody(n)
	case models.KindRecovery:
		subject = fmt.Sprintf("Update: %s is Sending Data", n.DeviceName)
		body = recoveryBody(n)
	case models.KindPowerLost:
		subject = fmt.Sprintf("Power Alert: %s is Offline", n.DeviceName)
		body = powerLostBody(n)
	case models.KindPowerRestored:
		subject = fmt.Sprintf("Power Restored: %s is Online", n.DeviceName)
		body = powerRestoredBody(n)
	case models.KindHighTemperature:
		subject = fmt.Sprintf("High Temperature Alert - %s", n.DeviceName)
		body = temperatureBody(n, "high temperature alert")
	case models.KindTemperatureNormal:
		subject = fmt.Sprintf("Temperature Normal Alert - %s", n.DeviceName)
		body = temperatureBody(n, "temperature normal alert")
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, n.Kind)
	}

	if n.Subject == "" {
		n.Subject = subject
	}

	if n.Body == "" {
		n.Body = body
	}

	return nil
}

func inactiveBody(n *Notification) string {
	var b strings.Builder

	b.WriteString("Dear User,\n\n")
	fmt.Fprintf(&b, "This is an automated alert to inform you that your device '%s' has stopped sending data.\n", n.DeviceName)
	b.WriteString("Device Details:\n")
	fmt.Fprintf(&b, "- Device Name: %s\n", n.DeviceName)
	fmt.Fprintf(&b, "- Device ID: %s\n", n.DeviceID)
	fmt.Fprintf(&b, "- Last Data Received: %s\n", formatOptionalTimestamp(n.LastSeenAt))
	fmt.Fprintf(&b, "- Alert Time: %s\n\n", formatTimestamp(n.OccurredAt))
	b.WriteString("Please check the following:\n")
	b.WriteString("1. Device power supply and connections\n")
	b.WriteString("2. Network connectivity\n")
	b.WriteString("3. Device configuration\n\n")
	b.WriteString("Best regards,\nSystem Administrator")

	return b.String()
}

func recoveryBody(n *Notification) string {
	var b strings.Builder

	b.WriteString("Dear User,\n\n")
	fmt.Fprintf(&b, "Good news! Your device '%s' has resumed sending data and is now functioning normally.\n", n.DeviceName)
	b.WriteString("Device Details:\n")
	fmt.Fprintf(&b, "- Device Name: %s\n", n.DeviceName)
	fmt.Fprintf(&b, "- Device ID: %s\n", n.DeviceID)
	fmt.Fprintf(&b, "- Data Resumed: %s\n", formatTimestamp(n.OccurredAt))
	fmt.Fprintf(&b, "- Last Data Received: %s\n\n", formatOptionalTimestamp(n.LastSeenAt))
	b.WriteString("The device is now transmitting data as expected. No further action is required.\n\n")
	b.WriteString("Best regards,\nSystem Administrator")

	return b.String()
}

func powerLostBody(n *Notification) string {
	var b strings.Builder

	b.WriteString("Dear User,\n\n")
	fmt.Fprintf(&b, "This is an automated alert to inform you that your device '%s' has lost power.\n", n.DeviceName)
	b.WriteString("Device Details:\n")
	fmt.Fprintf(&b, "- Device Name: %s\n", n.DeviceName)
	fmt.Fprintf(&b, "- Device ID: %s\n", n.DeviceID)
	fmt.Fprintf(&b, "- Last Seen: %s\n", formatOptionalTimestamp(n.LastSeenAt))
	fmt.Fprintf(&b, "- Alert Time: %s\n\n", formatTimestamp(n.OccurredAt))
	b.WriteString("Please check the device's power supply and connections. You will receive this alert every 5 minutes until power is restored.\n\n")
	b.WriteString("Best regards,\nSystem Administrator")

	return b.String()
}

func powerRestoredBody(n *Notification) string {
	var b strings.Builder

	b.WriteString("Dear User,\n\n")
	fmt.Fprintf(&b, "Good news! Your device '%s' has regained power and is now operational.\n", n.DeviceName)
	b.WriteString("Device Details:\n")
	fmt.Fprintf(&b, "- Device Name: %s\n", n.DeviceName)
	fmt.Fprintf(&b, "- Device ID: %s\n", n.DeviceID)
	fmt.Fprintf(&b, "- Power Restored: %s\n\n", formatTimestamp(n.OccurredAt))
	b.WriteString("The device is now functioning normally. No further action is required.\n\n")
	b.WriteString("Best regards,\nSystem Administrator")

	return b.String()
}

func temperatureBody(n *Notification, alertType string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Device '%s' has reported a %s:\n", n.DeviceName, alertType)

	if n.Temperature != nil {
		fmt.Fprintf(&b, "Current Temperature: %.1f°C\n", *n.Temperature)
	}

	fmt.Fprintf(&b, "Alert Time: %s\n", formatTimestamp(n.OccurredAt))
	fmt.Fprintf(&b, "Last seen: %s", formatOptionalTimestamp(n.LastSeenAt))

	return b.String()
}
