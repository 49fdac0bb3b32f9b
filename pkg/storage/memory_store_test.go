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
	"errors"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.Put("seg-1", []byte("one"))
	store.Put("seg-2", []byte("two"))

	segments, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments got %d", len(segments))
	}
	data, err := store.Read(ctx, "seg-1")
	if err != nil || string(data) != "one" {
		t.Fatalf("Read seg-1: %q %v", data, err)
	}
	if err := store.Delete(ctx, "seg-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.Has("seg-1") {
		t.Fatalf("seg-1 should be gone")
	}
	if _, err := store.Read(ctx, "seg-1"); !errors.Is(err, ErrSegmentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStoreVersionChangesOnPut(t *testing.T) {
	store := NewMemoryStore()
	store.Put("seg", []byte("a"))
	first, _ := store.List(context.Background())
	store.Put("seg", []byte("ab"))
	second, _ := store.List(context.Background())
	if first[0].Version == second[0].Version {
		t.Fatalf("expected version to change, both %s", first[0].Version)
	}
}

func TestMemoryStoreFailReads(t *testing.T) {
	store := NewMemoryStore()
	store.Put("seg", []byte("a"))
	boom := errors.New("boom")
	store.FailReads("seg", boom)
	if _, err := store.Read(context.Background(), "seg"); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	store.FailReads("seg", nil)
	if _, err := store.Read(context.Background(), "seg"); err != nil {
		t.Fatalf("expected read to recover, got %v", err)
	}
}
