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
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/novatechflow/timeline/pkg/storage"
)

// Catalog lists the segments of a store in chronological (ascending name) order.
type Catalog struct {
	store     storage.SegmentStore
	logger    *slog.Logger
	onStoreOp func(string, time.Duration, error)
}

// NewCatalog builds a catalog over store. A nil logger discards diagnostics.
func NewCatalog(store storage.SegmentStore, logger *slog.Logger) *Catalog {
	return &Catalog{store: store, logger: orDiscard(logger)}
}

// List returns the available segments sorted by name. Store failures are
// reported as a warning and yield an empty catalog.
func (c *Catalog) List(ctx context.Context) []storage.Segment {
	start := time.Now()
	segments, err := c.store.List(ctx)
	if c.onStoreOp != nil {
		c.onStoreOp("list", time.Since(start), err)
	}
	if err != nil {
		c.logger.Warn("timeline segments unavailable", "error", err)
		return nil
	}
	sort.Slice(segments, func(i, j int) bool {
		return segments[i].Name < segments[j].Name
	})
	return segments
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
