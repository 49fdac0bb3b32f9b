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
	"strconv"
	"strings"
	"time"
)

// DefaultPageSize is the number of events per page unless configured otherwise.
const DefaultPageSize = 5

// PageRequest selects one page of the timeline.
type PageRequest struct {
	// Page is 1-based, counted from the most recent events.
	Page int
	// Before is an optional ISO 8601 timestamp. It is parsed and logged but
	// does not yet narrow the page.
	Before string
}

// Validate rejects page numbers below 1.
func (r PageRequest) Validate() error {
	if r.Page < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidPage, r.Page)
	}
	return nil
}

// ParsePage parses a page query value. An empty value selects page 1.
func ParsePage(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPage, raw)
	}
	if page < 1 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidPage, page)
	}
	return page, nil
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseBefore parses an ISO 8601 date or date-time, e.g. 2002-12-25 00:00:00-06:39.
// Values without an offset are read as UTC.
func ParseBefore(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range isoLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO 8601 timestamp %q", value)
}
