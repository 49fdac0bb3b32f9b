// Copyright 2025 Alexander Alten (novatechflow), NovaTechflow (novatechflow.com).
// This project is supported and financed by Scalytics, Inc. (www.scalytics.io).
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package health

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/novatechflow/timeline/pkg/storage"
)

// State models the reader's view of segment store availability.
type State string

const (
	StateHealthy     State = "healthy"
	StateDegraded    State = "degraded"
	StateUnavailable State = "unavailable"
)

// Store operations reported by the timeline engine.
const (
	OpList   = "list"
	OpRead   = "read"
	OpDelete = "delete"
)

// Config defines thresholds for transitioning between states.
type Config struct {
	Window        time.Duration
	LatencyWarn   time.Duration
	LatencyCrit   time.Duration
	ReadErrorWarn float64
	ReadErrorCrit float64
	MaxSamples    int
}

// StoreHealthMonitor derives segment store health from the operations the
// timeline engine performs.
//
// A failed list hides the whole history, so it makes the store unavailable
// until a later list succeeds or the failure leaves the window. Read errors
// degrade the store by rate. A segment that vanished between list and read
// or delete is a race with another reader, not a fault. Failed deletes mean
// corrupt segments stay behind and are reported as degraded.
type StoreHealthMonitor struct {
	cfg Config

	mu            sync.Mutex
	samples       []sample
	listFailedAt  time.Time
	listErr       error
	purgeFailures []time.Time
	state         State
	reason        string
}

type sample struct {
	ts      time.Time
	op      string
	latency time.Duration
	err     bool
}

// NewStoreHealthMonitor builds a health monitor with sane defaults.
func NewStoreHealthMonitor(cfg Config) *StoreHealthMonitor {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.LatencyWarn <= 0 {
		cfg.LatencyWarn = 500 * time.Millisecond
	}
	if cfg.LatencyCrit <= 0 {
		cfg.LatencyCrit = 3 * time.Second
	}
	if cfg.ReadErrorWarn <= 0 {
		cfg.ReadErrorWarn = 0.2
	}
	if cfg.ReadErrorCrit <= 0 {
		cfg.ReadErrorCrit = 0.6
	}
	if cfg.MaxSamples <= 0 {
		cfg.MaxSamples = 512
	}
	return &StoreHealthMonitor{cfg: cfg, state: StateHealthy}
}

// RecordOperation records the outcome of one store operation.
func (m *StoreHealthMonitor) RecordOperation(op string, latency time.Duration, err error) {
	if errors.Is(err, storage.ErrSegmentNotFound) {
		err = nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	switch op {
	case OpList:
		if err != nil {
			m.listFailedAt = now
			m.listErr = err
		} else {
			m.listFailedAt = time.Time{}
			m.listErr = nil
		}
	case OpDelete:
		if err != nil {
			m.purgeFailures = append(m.purgeFailures, now)
		}
	}
	m.samples = append(m.samples, sample{ts: now, op: op, latency: latency, err: err != nil})
	if len(m.samples) > m.cfg.MaxSamples {
		m.samples = m.samples[len(m.samples)-m.cfg.MaxSamples:]
	}
	m.recomputeLocked(now)
}

// State returns the current health state.
func (m *StoreHealthMonitor) State() State {
	state, _ := m.Status()
	return state
}

// Status returns the current health state and what caused it. The reason is
// empty while the store is healthy.
func (m *StoreHealthMonitor) Status() (State, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recomputeLocked(time.Now())
	return m.state, m.reason
}

// Ready reports false only while the store is unavailable.
func (m *StoreHealthMonitor) Ready() bool {
	return m.State() != StateUnavailable
}

func (m *StoreHealthMonitor) recomputeLocked(now time.Time) {
	cutoff := now.Add(-m.cfg.Window)
	idx := 0
	for idx < len(m.samples) && !m.samples[idx].ts.After(cutoff) {
		idx++
	}
	m.samples = m.samples[idx:]
	idx = 0
	for idx < len(m.purgeFailures) && !m.purgeFailures[idx].After(cutoff) {
		idx++
	}
	m.purgeFailures = m.purgeFailures[idx:]
	if !m.listFailedAt.IsZero() && !m.listFailedAt.After(cutoff) {
		m.listFailedAt = time.Time{}
		m.listErr = nil
	}

	var (
		totalLatency time.Duration
		reads        int
		readErrors   int
	)
	for _, s := range m.samples {
		totalLatency += s.latency
		if s.op == OpRead {
			reads++
			if s.err {
				readErrors++
			}
		}
	}
	var avgLatency time.Duration
	if len(m.samples) > 0 {
		avgLatency = totalLatency / time.Duration(len(m.samples))
	}
	var readErrorRate float64
	if reads > 0 {
		readErrorRate = float64(readErrors) / float64(reads)
	}

	var critical, warnings []string
	if m.listErr != nil {
		critical = append(critical, fmt.Sprintf("segment listing failed: %v", m.listErr))
	}
	switch {
	case readErrorRate >= m.cfg.ReadErrorCrit:
		critical = append(critical, fmt.Sprintf("read error rate %.2f", readErrorRate))
	case readErrorRate >= m.cfg.ReadErrorWarn:
		warnings = append(warnings, fmt.Sprintf("read error rate %.2f", readErrorRate))
	}
	switch {
	case avgLatency >= m.cfg.LatencyCrit:
		critical = append(critical, fmt.Sprintf("average latency %s", avgLatency))
	case avgLatency >= m.cfg.LatencyWarn:
		warnings = append(warnings, fmt.Sprintf("average latency %s", avgLatency))
	}
	if n := len(m.purgeFailures); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d corrupt segment(s) could not be removed", n))
	}

	switch {
	case len(critical) > 0:
		m.state = StateUnavailable
		m.reason = strings.Join(append(critical, warnings...), "; ")
	case len(warnings) > 0:
		m.state = StateDegraded
		m.reason = strings.Join(warnings, "; ")
	default:
		m.state = StateHealthy
		m.reason = ""
	}
}
