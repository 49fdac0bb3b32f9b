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
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// DefaultSegmentPattern matches the base timeline file and its rotated siblings.
const DefaultSegmentPattern = "timeline-event-log.yaml*"

// FileStore serves segments from files in a single directory.
type FileStore struct {
	dir     string
	pattern string
}

// NewFileStore returns a store over dir. An empty pattern selects DefaultSegmentPattern.
func NewFileStore(dir, pattern string) (*FileStore, error) {
	if pattern == "" {
		pattern = DefaultSegmentPattern
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("segment pattern %q: %w", pattern, err)
	}
	return &FileStore{dir: dir, pattern: pattern}, nil
}

// Dir returns the directory the store reads from.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) List(ctx context.Context) ([]Segment, error) {
	if s.dir == "" {
		return nil, errors.New("data dir not set")
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", s.dir, err)
	}
	out := make([]Segment, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(s.pattern, entry.Name()); !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// removed after ReadDir
			continue
		}
		out = append(out, Segment{
			Name:    entry.Name(),
			Size:    info.Size(),
			Version: strconv.FormatInt(info.Size(), 10) + "-" + strconv.FormatInt(info.ModTime().UnixNano(), 10),
		})
	}
	return out, nil
}

func (s *FileStore) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", name, ErrSegmentNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := os.Remove(s.path(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", name, ErrSegmentNotFound)
		}
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// Check reports whether the directory is currently accessible.
func (s *FileStore) Check(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", s.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}
