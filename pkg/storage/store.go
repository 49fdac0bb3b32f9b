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
)

// ErrSegmentNotFound is returned when a segment disappeared between listing and access.
var ErrSegmentNotFound = errors.New("segment not found")

// Segment describes one stored append-only segment.
type Segment struct {
	Name string
	Size int64
	// Version changes whenever the segment content changes. It is only
	// meaningful when compared against another Version of the same Name.
	Version string
}

// SegmentStore is the capability the timeline reader uses to reach segments.
// Implementations return segments from List in any order.
type SegmentStore interface {
	List(ctx context.Context) ([]Segment, error)
	Read(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
}

// Checker is implemented by stores that can probe their backend for readiness.
type Checker interface {
	Check(ctx context.Context) error
}
