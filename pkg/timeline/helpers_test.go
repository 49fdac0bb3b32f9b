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

package timeline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/novatechflow/timeline/pkg/storage"
)

// yamlSegment renders events with ids prefix+from..prefix+to as a YAML segment.
func yamlSegment(prefix string, from, to int) []byte {
	var b strings.Builder
	for i := from; i <= to; i++ {
		fmt.Fprintf(&b, "- id: %s%d\n  pipeline_name: front_door\n", prefix, i)
	}
	return []byte(b.String())
}

func ids(t *testing.T, events []Event) []string {
	t.Helper()
	out := make([]string, 0, len(events))
	for _, ev := range events {
		id, ok := ev["id"].(string)
		if !ok {
			t.Fatalf("event without string id: %#v", ev)
		}
		out = append(out, id)
	}
	return out
}

func assertIDs(t *testing.T, events []Event, want ...string) {
	t.Helper()
	got := ids(t, events)
	if len(got) != len(want) {
		t.Fatalf("expected %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v got %v", want, got)
		}
	}
}

func newMemoryStore(segments map[string][]byte) *storage.MemoryStore {
	store := storage.NewMemoryStore()
	for name, body := range segments {
		store.Put(name, body)
	}
	return store
}
