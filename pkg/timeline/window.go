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

import "math"

// PageWindow tracks the requested page while segments are consumed from the
// newest end of the history toward the oldest.
//
// start and end are offsets counted back from the newest event that has not
// been consumed yet. Consuming a segment drops its complete pages from the
// newest end and shifts the window by the same amount; the partial page left
// at its oldest end is carried and merged with the next (older) segment.
// Because the shift is always a multiple of the page size, the window stays
// page aligned and never goes negative.
type PageWindow struct {
	size    int
	start   int
	end     int
	pastEnd bool
	carried []Event
}

// NewPageWindow returns the window of page (1 = most recent) for pages of size events.
// A page whose offsets do not fit in an int lies past any history and
// always resolves empty.
func NewPageWindow(page, size int) *PageWindow {
	if page > math.MaxInt/size {
		return &PageWindow{size: size, start: math.MaxInt, end: math.MaxInt, pastEnd: true}
	}
	return &PageWindow{
		size:  size,
		start: (page - 1) * size,
		end:   page * size,
	}
}

// PastEnd reports whether the page lies beyond any history that can be stored.
func (w *PageWindow) PastEnd() bool {
	return w.pastEnd
}

// Bounds returns the current window offsets.
func (w *PageWindow) Bounds() (start, end int) {
	return w.start, w.end
}

// Carried returns the number of events waiting to be merged with an older segment.
func (w *PageWindow) Carried() int {
	return len(w.carried)
}

// Absorb consumes the events of the next older segment, oldest first. It
// returns the page, newest first, once the window falls inside the merged
// sequence.
func (w *PageWindow) Absorb(events []Event) ([]Event, bool) {
	if w.pastEnd {
		return []Event{}, true
	}
	merged := events
	if len(w.carried) > 0 {
		// carried events are newer than anything in this segment
		merged = make([]Event, 0, len(events)+len(w.carried))
		merged = append(merged, events...)
		merged = append(merged, w.carried...)
	}
	n := len(merged)
	if n < w.end {
		rem := n % w.size
		consumed := n - rem
		w.start -= consumed
		w.end -= consumed
		w.carried = merged[:rem:rem]
		return nil, false
	}
	w.carried = nil
	return w.slice(merged), true
}

// Finish resolves the page once every segment has been absorbed. Whatever is
// still carried is the oldest, possibly partial, page of the history.
func (w *PageWindow) Finish() []Event {
	out := w.slice(w.carried)
	w.carried = nil
	return out
}

func (w *PageWindow) slice(merged []Event) []Event {
	n := len(merged)
	if w.start >= n {
		return []Event{}
	}
	end := w.end
	if end > n {
		end = n
	}
	out := make([]Event, 0, end-w.start)
	for i := n - 1 - w.start; i >= n-end; i-- {
		out = append(out, merged[i])
	}
	return out
}
