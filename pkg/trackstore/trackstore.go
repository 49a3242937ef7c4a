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

// Package trackstore persists in-flight tracker entries so debounce state
// survives process restarts. One bucket per tracker family, JSON values
// keyed by device ID.
package trackstore

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/carverauto/fieldwatch/pkg/models"
)

var (
	bucketPower       = []byte("power")
	bucketInactivity  = []byte("inactivity")
	bucketTemperature = []byte("temperature")
)

// EntryStore is the per-family view a tracker holds. Get returns (nil, nil)
// when no entry exists for the device.
type EntryStore[T any] interface {
	Put(deviceID string, entry *T) error
	Get(deviceID string) (*T, error)
	Delete(deviceID string) error
	All() (map[string]*T, error)
}

// Store is the bbolt-backed tracker-state database.
type Store struct {
	db *bolt.DB

	Power       EntryStore[models.PowerTrackingEntry]
	Inactivity  EntryStore[models.InactivityTrackingEntry]
	Temperature EntryStore[models.TemperatureTrackingEntry]
}

// Open opens or creates the database at path and ensures all family buckets
// exist.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open tracker store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketPower, bucketInactivity, bucketTemperature} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tracker buckets: %w", err)
	}

	return &Store{
		db:          db,
		Power:       &boltBucket[models.PowerTrackingEntry]{db: db, name: bucketPower},
		Inactivity:  &boltBucket[models.InactivityTrackingEntry]{db: db, name: bucketInactivity},
		Temperature: &boltBucket[models.TemperatureTrackingEntry]{db: db, name: bucketTemperature},
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// boltBucket implements EntryStore on one bbolt bucket.
type boltBucket[T any] struct {
	db   *bolt.DB
	name []byte
}

func (b *boltBucket[T]) Put(deviceID string, entry *T) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(b.name)
		if bkt == nil {
			return fmt.Errorf("bucket %q not found", b.name)
		}

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}

		return bkt.Put([]byte(deviceID), data)
	})
}

func (b *boltBucket[T]) Get(deviceID string) (*T, error) {
	var entry *T

	err := b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(b.name)
		if bkt == nil {
			return fmt.Errorf("bucket %q not found", b.name)
		}

		data := bkt.Get([]byte(deviceID))
		if data == nil {
			return nil
		}

		var decoded T
		if err := json.Unmarshal(data, &decoded); err != nil {
			return err
		}

		entry = &decoded

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (b *boltBucket[T]) Delete(deviceID string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(b.name)
		if bkt == nil {
			return fmt.Errorf("bucket %q not found", b.name)
		}

		return bkt.Delete([]byte(deviceID))
	})
}

func (b *boltBucket[T]) All() (map[string]*T, error) {
	entries := make(map[string]*T)

	err := b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(b.name)
		if bkt == nil {
			return nil
		}

		return bkt.ForEach(func(k, v []byte) error {
			var decoded T
			if err := json.Unmarshal(v, &decoded); err != nil {
				return err
			}

			entries[string(k)] = &decoded

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}
