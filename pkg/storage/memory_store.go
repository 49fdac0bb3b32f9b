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

package storage

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

// MemoryStore is an in-memory SegmentStore for development/testing.
type MemoryStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	versions map[string]int64
	failRead map[string]error
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:     make(map[string][]byte),
		versions: make(map[string]int64),
		failRead: make(map[string]error),
	}
}

// Put stores body under name, replacing any previous content.
func (m *MemoryStore) Put(name string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[name] = append([]byte(nil), body...)
	m.versions[name]++
}

// FailReads makes subsequent reads of name return err. A nil err clears it.
func (m *MemoryStore) FailReads(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failRead, name)
		return
	}
	m.failRead[name] = err
}

// Has reports whether name is currently stored.
func (m *MemoryStore) Has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[name]
	return ok
}

func (m *MemoryStore) List(ctx context.Context) ([]Segment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Segment, 0, len(m.data))
	for name, data := range m.data {
		out = append(out, Segment{
			Name:    name,
			Size:    int64(len(data)),
			Version: strconv.FormatInt(m.versions[name], 10),
		})
	}
	return out, nil
}

func (m *MemoryStore) Read(ctx context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failRead[name]; ok {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	data, ok := m.data[name]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", name, ErrSegmentNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[name]; !ok {
		return fmt.Errorf("delete %s: %w", name, ErrSegmentNotFound)
	}
	delete(m.data, name)
	delete(m.versions, name)
	return nil
}
