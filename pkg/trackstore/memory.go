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

package trackstore

import (
	"sync"
)

// Memory is a map-backed EntryStore for tests and stateless deployments.
type Memory[T any] struct {
	mu      sync.RWMutex
	entries map[string]*T
}

// NewMemory creates an empty in-memory entry store.
func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{entries: make(map[string]*T)}
}

func (m *Memory[T]) Put(deviceID string, entry *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *entry
	m.entries[deviceID] = &cp

	return nil
}

func (m *Memory[T]) Get(deviceID string) (*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[deviceID]
	if !ok {
		return nil, nil
	}

	cp := *entry

	return &cp, nil
}

func (m *Memory[T]) Delete(deviceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, deviceID)

	return nil
}

func (m *Memory[T]) All() (map[string]*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make(map[string]*T, len(m.entries))

	for k, v := range m.entries {
		cp := *v
		entries[k] = &cp
	}

	return entries, nil
}
