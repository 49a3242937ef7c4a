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
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carverauto/fieldwatch/pkg/logger"
	"github.com/carverauto/fieldwatch/pkg/models"
)

// Config describes the Postgres connection for the fieldwatch store.
type Config struct {
	Host            string          `json:"host"`
	Port            int             `json:"port"`
	Database        string          `json:"database"`
	Username        string          `json:"username"`
	Password        string          `json:"password"`
	SSLMode         string          `json:"ssl_mode"`
	MaxConnections  int32           `json:"max_connections"`
	ConnectTimeout  models.Duration `json:"connect_timeout"`
}

// DB implements Service on a pgx connection pool.
type DB struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

// New dials Postgres and returns the fieldwatch store.
func New(ctx context.Context, cfg *Config, log logger.Logger) (*DB, error) {
	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	connURL := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", cfg.Host, port),
		Path:   "/" + cfg.Database,
	}

	if cfg.Username != "" {
		if cfg.Password != "" {
			connURL.User = url.UserPassword(cfg.Username, cfg.Password)
		} else {
			connURL.User = url.User(cfg.Username)
		}
	}

	query := connURL.Query()

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	query.Set("sslmode", sslMode)
	connURL.RawQuery = query.Encode()

	poolConfig, err := pgxpool.ParseConfig(connURL.String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if cfg.MaxConnections > 0 {
		poolConfig.MaxConns = cfg.MaxConnections
	}

	if cfg.ConnectTimeout > 0 {
		poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout.AsDuration()
	} else {
		poolConfig.ConnConfig.ConnectTimeout = 10 * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{pool: pool, logger: log.WithComponent("db")}

	if err := db.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return db, nil
}

// Close releases the connection pool.
func (db *DB) Close() error {
	db.pool.Close()
	return nil
}

func (db *DB) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS devices (
			device_id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			class TEXT NOT NULL DEFAULT 'heartbeat',
			owner_email TEXT NOT NULL DEFAULT '',
			admin_email TEXT NOT NULL DEFAULT '',
			last_seen_at TIMESTAMPTZ,
			confirmed_status TEXT NOT NULL DEFAULT 'inactive',
			pending_status TEXT,
			pending_since TIMESTAMPTZ,
			last_reported_power TEXT,
			last_notification_sent_at TIMESTAMPTZ,
			status_change_count INTEGER NOT NULL DEFAULT 0,
			status_last_changed_at TIMESTAMPTZ,
			high_temp_threshold DOUBLE PRECISION
		)`,
		`CREATE TABLE IF NOT EXISTS device_status_history (
			id UUID PRIMARY KEY,
			device_id TEXT NOT NULL,
			previous_status TEXT NOT NULL,
			new_status TEXT NOT NULL,
			changed_at TIMESTAMPTZ NOT NULL,
			duration_seconds DOUBLE PRECISION,
			reason TEXT NOT NULL DEFAULT '',
			is_confirmed BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_status_history_device
			ON device_status_history (device_id, changed_at DESC)`,
		`CREATE TABLE IF NOT EXISTS notification_log (
			device_id TEXT NOT NULL,
			recipient TEXT NOT NULL,
			kind TEXT NOT NULL,
			subject TEXT NOT NULL,
			success BOOLEAN NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			sent_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS temperature_readings (
			device_id TEXT PRIMARY KEY,
			temperature DOUBLE PRECISION NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: schema setup: %w", ErrFailedToExecute, err)
		}
	}

	return nil
}
