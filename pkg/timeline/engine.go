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

// Package timeline pages through event history stored as an ordered series
// of append-only segments, newest events first, without a separate index.
package timeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/novatechflow/timeline/pkg/cache"
	"github.com/novatechflow/timeline/pkg/storage"
)

// Options configures an Engine. The zero value is usable.
type Options struct {
	PageSize int
	Decoder  Decoder
	Cache    *cache.SegmentCache
	Logger   *slog.Logger

	// OnStoreOp observes every list/read/delete against the store.
	OnStoreOp func(op string, latency time.Duration, err error)
	// OnPurge observes every attempt to remove an undecodable segment.
	OnPurge func(segment string, err error)
	// OnPage observes every served page.
	OnPage func(page, events int, latency time.Duration)
}

// Engine serves timeline pages from a segment store. It keeps no state of its
// own between calls and is safe for concurrent use.
type Engine struct {
	catalog  *Catalog
	loader   *Loader
	purger   *Purger
	pageSize int
	logger   *slog.Logger
	onPage   func(int, int, time.Duration)
}

// NewEngine builds an engine over store.
func NewEngine(store storage.SegmentStore, opts Options) *Engine {
	logger := orDiscard(opts.Logger)
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	catalog := NewCatalog(store, logger)
	catalog.onStoreOp = opts.OnStoreOp
	loader := NewLoader(store, opts.Decoder, opts.Cache)
	loader.onStoreOp = opts.OnStoreOp
	purger := NewPurger(store, opts.Cache, logger)
	purger.onStoreOp = opts.OnStoreOp
	purger.onPurge = opts.OnPurge
	return &Engine{
		catalog:  catalog,
		loader:   loader,
		purger:   purger,
		pageSize: pageSize,
		logger:   logger,
		onPage:   opts.OnPage,
	}
}

// PageSize returns the number of events per page.
func (e *Engine) PageSize() int {
	return e.pageSize
}

// GetPage returns the req.Page-th most recent block of events, newest first.
// Past the end of the history the page is empty. Store and decode problems
// never fail the call; only an invalid page number or a cancelled context does.
func (e *Engine) GetPage(ctx context.Context, req PageRequest) ([]Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	started := time.Now()
	e.logCursor(req.Before)

	window := NewPageWindow(req.Page, e.pageSize)
	start, end := window.Bounds()
	e.logger.Debug("fetching timeline page", "page", req.Page, "page_size", e.pageSize, "start", start, "end", end)
	if window.PastEnd() {
		if e.onPage != nil {
			e.onPage(req.Page, 0, time.Since(started))
		}
		return []Event{}, nil
	}

	segments := e.catalog.List(ctx)
	var page []Event
	resolved := false
	for i := len(segments) - 1; i >= 0 && !resolved; i-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seg := segments[i]
		events, err := e.loader.Load(ctx, seg)
		if err != nil {
			if errors.Is(err, ErrDecodeFailure) {
				e.purger.OnDecodeFailure(ctx, seg, err)
			} else {
				e.logger.Warn("skipping timeline segment", "segment", seg.Name, "error", err)
			}
			continue
		}
		page, resolved = window.Absorb(events)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !resolved {
		page = window.Finish()
	}
	if e.onPage != nil {
		e.onPage(req.Page, len(page), time.Since(started))
	}
	return page, nil
}

func (e *Engine) logCursor(before string) {
	if before == "" {
		e.logger.Debug("fetching most recent timeline events")
		return
	}
	ts, err := ParseBefore(before)
	if err != nil {
		e.logger.Warn("ignoring before parameter", "before", before, "error", err)
		return
	}
	e.logger.Debug("fetching timeline events saved before", "before", ts)
}
