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
	"time"

	"github.com/novatechflow/timeline/pkg/cache"
	"github.com/novatechflow/timeline/pkg/storage"
)

// Loader reads and decodes single segments.
type Loader struct {
	store     storage.SegmentStore
	decoder   Decoder
	cache     *cache.SegmentCache
	onStoreOp func(string, time.Duration, error)
}

// NewLoader builds a loader. A nil decoder selects YAMLDecoder; a nil cache disables caching.
func NewLoader(store storage.SegmentStore, decoder Decoder, segmentCache *cache.SegmentCache) *Loader {
	if decoder == nil {
		decoder = YAMLDecoder{}
	}
	return &Loader{store: store, decoder: decoder, cache: segmentCache}
}

// Load returns the events of seg, oldest first. Undecodable content is
// reported as a *DecodeError; any other error means the bytes could not be
// fetched and says nothing about the segment's integrity.
func (l *Loader) Load(ctx context.Context, seg storage.Segment) ([]Event, error) {
	data, cached, err := l.read(ctx, seg)
	if err != nil {
		return nil, err
	}
	events, err := l.decoder.Decode(data)
	if err != nil {
		return nil, &DecodeError{Segment: seg.Name, Err: err}
	}
	if !cached && l.cache != nil && seg.Version != "" {
		l.cache.Set(seg.Name, seg.Version, data)
	}
	return events, nil
}

func (l *Loader) read(ctx context.Context, seg storage.Segment) ([]byte, bool, error) {
	if l.cache != nil && seg.Version != "" {
		if data, ok := l.cache.Get(seg.Name, seg.Version); ok {
			return data, true, nil
		}
	}
	start := time.Now()
	data, err := l.store.Read(ctx, seg.Name)
	if l.onStoreOp != nil {
		l.onStoreOp("read", time.Since(start), err)
	}
	if err != nil {
		return nil, false, err
	}
	return data, false, nil
}
