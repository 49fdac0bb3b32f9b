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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Event is a single timeline record. Its contents are opaque to the pager.
type Event map[string]any

// Decoder turns the raw bytes of one segment into its events, oldest first.
type Decoder interface {
	Decode(data []byte) ([]Event, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(data []byte) ([]Event, error)

func (f DecoderFunc) Decode(data []byte) ([]Event, error) {
	return f(data)
}

// YAMLDecoder reads a segment holding a single YAML sequence of mappings.
// An empty document holds no events. A stream with more than one document
// is rejected. Nested mappings always decode with string keys so events
// stay JSON encodable.
type YAMLDecoder struct{}

func (YAMLDecoder) Decode(data []byte) ([]Event, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var events []Event
	if err := dec.Decode(&events); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	var extra yaml.Node
	switch err := dec.Decode(&extra); {
	case err == nil:
		return nil, fmt.Errorf("expected a single document, found another at line %d", extra.Line)
	case !errors.Is(err, io.EOF):
		return nil, err
	}
	for _, ev := range events {
		for k, v := range ev {
			ev[k] = stringKeys(v)
		}
	}
	return events, nil
}

// stringKeys rewrites mappings with non-string keys, which yaml.v3 produces
// for keys such as integers, into map[string]any.
func stringKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = stringKeys(item)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = stringKeys(item)
		}
		return out
	case []any:
		for i, item := range val {
			val[i] = stringKeys(item)
		}
		return val
	default:
		return v
	}
}

// JSONLinesDecoder reads a segment holding one JSON object per line.
type JSONLinesDecoder struct{}

func (JSONLinesDecoder) Decode(data []byte) ([]Event, error) {
	var events []Event
	for i, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// DecoderForFormat returns the decoder registered for a segment format name.
func DecoderForFormat(format string) (Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "yaml", "yml":
		return YAMLDecoder{}, nil
	case "jsonl", "ndjson":
		return JSONLinesDecoder{}, nil
	default:
		return nil, fmt.Errorf("unsupported segment format %q", format)
	}
}
