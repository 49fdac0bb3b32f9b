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
	"errors"
	"log/slog"
	"time"

	"github.com/novatechflow/timeline/pkg/cache"
	"github.com/novatechflow/timeline/pkg/storage"
)

// Purger removes segments that can no longer be decoded. A corrupt segment
// would otherwise hide every older page on every request.
type Purger struct {
	store     storage.SegmentStore
	cache     *cache.SegmentCache
	logger    *slog.Logger
	onStoreOp func(string, time.Duration, error)
	onPurge   func(string, error)
}

// NewPurger builds a purger over store.
func NewPurger(store storage.SegmentStore, segmentCache *cache.SegmentCache, logger *slog.Logger) *Purger {
	return &Purger{store: store, cache: segmentCache, logger: orDiscard(logger)}
}

// OnDecodeFailure deletes seg. The deletion is best effort: failures are
// logged and never returned. A segment that is already gone counts as purged.
func (p *Purger) OnDecodeFailure(ctx context.Context, seg storage.Segment, cause error) {
	p.logger.Warn("detected unreadable timeline segment, removing", "segment", seg.Name, "error", cause)
	if p.cache != nil {
		p.cache.Invalidate(seg.Name)
	}
	start := time.Now()
	err := p.store.Delete(ctx, seg.Name)
	if errors.Is(err, storage.ErrSegmentNotFound) {
		err = nil
	}
	if p.onStoreOp != nil {
		p.onStoreOp("delete", time.Since(start), err)
	}
	if err != nil {
		p.logger.Error("failed to remove unreadable timeline segment", "segment", seg.Name, "error", err)
	}
	if p.onPurge != nil {
		p.onPurge(seg.Name, err)
	}
}
