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

package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/fieldwatch/pkg/models"
)

var errExecFailed = errors.New("exec failed")

// fakeExecer records the arguments of each Exec call.
type fakeExecer struct {
	sql  string
	args []any
	err  error
}

func (f *fakeExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql = sql
	f.args = args

	return pgconn.CommandTag{}, f.err
}

func TestInsertStatusHistory(t *testing.T) {
	changedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	duration := 90 * time.Second

	t.Run("generates_id_and_converts_duration", func(t *testing.T) {
		ex := &fakeExecer{}
		record := &models.StatusHistoryRecord{
			DeviceID:       "dev-1",
			PreviousStatus: models.StatusActive,
			NewStatus:      models.StatusInactive,
			ChangedAt:      changedAt,
			Duration:       &duration,
			Reason:         "no heartbeat",
			IsConfirmed:    true,
		}

		require.NoError(t, insertStatusHistory(context.Background(), ex, record))

		assert.NotEmpty(t, record.ID)
		assert.Contains(t, ex.sql, "INSERT INTO device_status_history")
		require.Len(t, ex.args, 8)
		assert.Equal(t, record.ID, ex.args[0])
		assert.Equal(t, "dev-1", ex.args[1])
		assert.InDelta(t, 90.0, *ex.args[5].(*float64), 0.001)
	})

	t.Run("keeps_existing_id_and_nil_duration", func(t *testing.T) {
		ex := &fakeExecer{}
		record := &models.StatusHistoryRecord{
			ID:        "fixed-id",
			DeviceID:  "dev-1",
			ChangedAt: changedAt,
		}

		require.NoError(t, insertStatusHistory(context.Background(), ex, record))

		assert.Equal(t, "fixed-id", record.ID)
		require.Len(t, ex.args, 8)
		assert.Nil(t, ex.args[5].(*float64))
	})

	t.Run("wraps_exec_error", func(t *testing.T) {
		ex := &fakeExecer{err: errExecFailed}

		err := insertStatusHistory(context.Background(), ex, &models.StatusHistoryRecord{DeviceID: "dev-1"})

		require.ErrorIs(t, err, ErrFailedToExecute)
		assert.ErrorIs(t, err, errExecFailed)
	})
}
