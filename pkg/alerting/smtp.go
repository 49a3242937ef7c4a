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
	"fmt"
	"net"
	"net/smtp"
	"strconv"
)

// SMTPConfig holds mail relay settings.
type SMTPConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	From     string `json:"from"`
}

// SMTPSender delivers mail through a single SMTP relay.
type SMTPSender struct {
	addr string
	auth smtp.Auth
}

// NewSMTPSender builds a Sender for the configured relay. Authentication is
// used only when a username is configured.
func NewSMTPSender(config *SMTPConfig) *SMTPSender {
	var auth smtp.Auth

	if config.Username != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	return &SMTPSender{
		addr: net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		auth: auth,
	}
}

// Send submits the message to the relay. The context deadline is honored
// between attempts by the caller; smtp.SendMail itself is synchronous.
func (s *SMTPSender) Send(ctx context.Context, from string, to []string, msg []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := smtp.SendMail(s.addr, s.auth, from, to, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", s.addr, err)
	}

	return nil
}
