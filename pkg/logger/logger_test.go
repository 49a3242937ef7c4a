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

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		config    *Config
		expectErr bool
	}{
		{
			name:   "nil_config_uses_defaults",
			config: nil,
		},
		{
			name:   "debug_enabled",
			config: &Config{Debug: true},
		},
		{
			name:   "explicit_level",
			config: &Config{Level: "warn"},
		},
		{
			name:      "invalid_level",
			config:    &Config{Level: "shouting"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.config)

			if tt.expectErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestWithComponent(t *testing.T) {
	log, err := New(&Config{Level: "info"})
	require.NoError(t, err)

	sub := log.WithComponent("dispatcher")
	assert.NotNil(t, sub)
	assert.NotSame(t, log, sub)
}

func TestNewTestLogger(t *testing.T) {
	log := NewTestLogger()
	require.NotNil(t, log)

	// Must be safe to log at any level.
	log.Info().Str("k", "v").Msg("discarded")
	log.Error().Msg("discarded")
}
