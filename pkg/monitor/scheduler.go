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

package monitor

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/carverauto/fieldwatch/pkg/logger"
)

// Scheduler runs one supervised periodic worker per tracker family. A
// panicking tick is recovered and logged; a panicking worker loop is
// restarted by the supervisor. A single bad tick never kills a worker.
type Scheduler struct {
	clock  Clock
	logger logger.Logger
	wg     sync.WaitGroup
}

// NewScheduler creates a Scheduler on the given clock.
func NewScheduler(clock Clock, log logger.Logger) *Scheduler {
	return &Scheduler{
		clock:  clock,
		logger: log.WithComponent("scheduler"),
	}
}

// Start launches a named worker ticking at the given interval until ctx is
// cancelled.
func (s *Scheduler) Start(ctx context.Context, name string, interval time.Duration, tick func(ctx context.Context)) {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		s.supervise(ctx, name, interval, tick)
	}()
}

// Wait blocks until all workers have stopped.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// supervise restarts the worker loop if it panics outside a tick.
func (s *Scheduler) supervise(ctx context.Context, name string, interval time.Duration, tick func(ctx context.Context)) {
	for ctx.Err() == nil {
		s.runLoop(ctx, name, interval, tick)

		if ctx.Err() == nil {
			s.logger.Error().
				Str("worker", name).
				Msg("Worker loop exited unexpectedly, restarting")
			s.clock.Sleep(interval)
		}
	}
}

func (s *Scheduler) runLoop(ctx context.Context, name string, interval time.Duration, tick func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("worker", name).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Worker loop panicked")
		}
	}()

	s.logger.Info().
		Str("worker", name).
		Dur("interval", interval).
		Msg("Worker started")

	ticker := s.clock.Ticker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Str("worker", name).Msg("Worker stopped")
			return
		case <-ticker.Chan():
			s.safeTick(ctx, name, tick)
		}
	}
}

// safeTick runs one tick with panic containment.
func (s *Scheduler) safeTick(ctx context.Context, name string, tick func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("worker", name).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Tick panicked, worker continues")
		}
	}()

	tick(ctx)
}
