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
	"os"

	"github.com/novatechflow/timeline/pkg/storage"
)

// GetTimeline serves one default-sized page from the YAML segments in
// dataDir. An unset or missing directory yields an empty page.
func GetTimeline(ctx context.Context, dataDir string, page int, before string, logger *slog.Logger) ([]Event, error) {
	req := PageRequest{Page: page, Before: before}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	logger = orDiscard(logger)
	if dataDir == "" {
		logger.Warn("data_dir is not valid", "data_dir", dataDir)
		return []Event{}, nil
	}
	if info, err := os.Stat(dataDir); err != nil || !info.IsDir() {
		logger.Warn("data_dir is not valid", "data_dir", dataDir, "error", err)
		return []Event{}, nil
	}
	store, err := storage.NewFileStore(dataDir, storage.DefaultSegmentPattern)
	if err != nil {
		logger.Warn("data_dir is not valid", "data_dir", dataDir, "error", err)
		return []Event{}, nil
	}
	return NewEngine(store, Options{Logger: logger}).GetPage(ctx, req)
}
