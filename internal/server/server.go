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

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/novatechflow/timeline/pkg/health"
	"github.com/novatechflow/timeline/pkg/storage"
	"github.com/novatechflow/timeline/pkg/timeline"
)

// Pager serves timeline pages.
type Pager interface {
	GetPage(ctx context.Context, req timeline.PageRequest) ([]timeline.Event, error)
}

type Options struct {
	Pager   Pager
	Health  *health.StoreHealthMonitor
	Checker storage.Checker
	Logger  *slog.Logger
}

// StartServer launches the HTTP API on the provided address and shuts it
// down when ctx is cancelled.
func StartServer(ctx context.Context, addr string, opts Options) error {
	if opts.Pager == nil {
		return errors.New("pager required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewMux(opts),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		logger.Info("timeline api listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("timeline api server error", "error", err)
		}
	}()
	return nil
}

// NewMux constructs the HTTP mux with the supplied dependencies.
func NewMux(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handlers{pager: opts.Pager, health: opts.Health, checker: opts.Checker, logger: logger}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/timeline", h.handleTimeline)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", h.handleReady)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

type handlers struct {
	pager   Pager
	health  *health.StoreHealthMonitor
	checker storage.Checker
	logger  *slog.Logger
}

type timelineResponse struct {
	Status   string           `json:"status"`
	Page     int              `json:"page"`
	Timeline []timeline.Event `json:"timeline"`
}

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func (h *handlers) handleTimeline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	query := r.URL.Query()
	page, err := timeline.ParsePage(query.Get("page"))
	if err != nil {
		writeJSONStatus(w, http.StatusBadRequest, errorResponse{Status: "error", Error: err.Error()})
		return
	}
	before := query.Get("before")
	if before == "" {
		before = query.Get("before_datetime")
	}
	events, err := h.pager.GetPage(r.Context(), timeline.PageRequest{Page: page, Before: before})
	switch {
	case err == nil:
	case errors.Is(err, timeline.ErrInvalidPage):
		writeJSONStatus(w, http.StatusBadRequest, errorResponse{Status: "error", Error: err.Error()})
		return
	default:
		h.logger.Warn("timeline request aborted", "page", page, "error", err)
		writeJSONStatus(w, http.StatusServiceUnavailable, errorResponse{Status: "error", Error: "request aborted"})
		return
	}
	writeJSONStatus(w, http.StatusOK, timelineResponse{Status: "success", Page: page, Timeline: events})
}

func (h *handlers) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	state, reason := health.StateHealthy, ""
	if h.health != nil {
		state, reason = h.health.Status()
	}
	if state == health.StateUnavailable {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, "not ready state=%s reason=%q\n", state, reason)
		return
	}
	if h.checker != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.checker.Check(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "not ready state=%s error=%v\n", state, err)
			return
		}
	}
	if reason != "" {
		fmt.Fprintf(w, "ready state=%s reason=%q\n", state, reason)
		return
	}
	fmt.Fprintf(w, "ready state=%s\n", state)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
