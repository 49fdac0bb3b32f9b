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

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/novatechflow/timeline/internal/config"
	"github.com/novatechflow/timeline/internal/metrics"
	"github.com/novatechflow/timeline/internal/server"
	"github.com/novatechflow/timeline/pkg/cache"
	"github.com/novatechflow/timeline/pkg/health"
	"github.com/novatechflow/timeline/pkg/storage"
	"github.com/novatechflow/timeline/pkg/timeline"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", os.Getenv("TIMELINE_CONFIG"), "Path to timeline config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := newLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("segment store init failed", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	engine, monitor, err := buildEngine(cfg, store, logger)
	if err != nil {
		logger.Error("timeline engine init failed", "error", err)
		os.Exit(1)
	}
	checker, _ := store.(storage.Checker)
	if err := server.StartServer(ctx, cfg.Server.Addr, server.Options{
		Pager:   engine,
		Health:  monitor,
		Checker: checker,
		Logger:  logger,
	}); err != nil {
		logger.Error("timeline api failed", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("timeline shutting down")
}

func buildStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage.SegmentStore, error) {
	switch cfg.Store.Backend {
	case "file":
		if cfg.Store.Dir == "" {
			logger.Warn("data_dir is not valid; serving empty timeline", "data_dir", cfg.Store.Dir)
		} else if info, err := os.Stat(cfg.Store.Dir); err != nil || !info.IsDir() {
			logger.Warn("data_dir is not valid; serving empty timeline until it appears", "data_dir", cfg.Store.Dir, "error", err)
		}
		return storage.NewFileStore(cfg.Store.Dir, cfg.Store.Pattern)
	case "memory":
		logger.Info("using in-memory segment store")
		return storage.NewMemoryStore(), nil
	case "s3":
		return storage.NewS3Store(ctx, storage.S3Config{
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			ForcePathStyle:  cfg.S3.PathStyle,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			SessionToken:    cfg.S3.SessionToken,
		})
	case "etcd":
		return storage.NewEtcdStore(storage.EtcdStoreConfig{
			Endpoints: cfg.Etcd.Endpoints,
			Username:  cfg.Etcd.Username,
			Password:  cfg.Etcd.Password,
			Prefix:    cfg.Etcd.Prefix,
		})
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}

func buildEngine(cfg config.Config, store storage.SegmentStore, logger *slog.Logger) (*timeline.Engine, *health.StoreHealthMonitor, error) {
	decoder, err := timeline.DecoderForFormat(cfg.Timeline.Format)
	if err != nil {
		return nil, nil, err
	}
	var segCache *cache.SegmentCache
	if cfg.Cache.Bytes > 0 {
		segCache = cache.NewSegmentCache(cfg.Cache.Bytes)
	}
	monitor := health.NewStoreHealthMonitor(health.Config{})
	engine := timeline.NewEngine(store, timeline.Options{
		PageSize: cfg.Timeline.PageSize,
		Decoder:  decoder,
		Cache:    segCache,
		Logger:   logger,
		OnStoreOp: func(op string, latency time.Duration, err error) {
			metrics.ObserveStoreOp(op, latency, err)
			monitor.RecordOperation(op, latency, err)
		},
		OnPurge: metrics.ObservePurge,
		OnPage:  metrics.ObservePage,
	})
	return engine, monitor, nil
}

func newLogger(levelName string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(levelName)) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	})
	return slog.New(handler).With("component", "timeline")
}
