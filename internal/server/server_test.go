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
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/novatechflow/timeline/pkg/health"
	"github.com/novatechflow/timeline/pkg/storage"
	"github.com/novatechflow/timeline/pkg/timeline"
)

func seededEngine(t *testing.T) (*timeline.Engine, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	var b strings.Builder
	for i := 1; i <= 7; i++ {
		fmt.Fprintf(&b, "- id: r%d\n", i)
	}
	store.Put("timeline-event-log.yaml", []byte(b.String()))
	return timeline.NewEngine(store, timeline.Options{}), store
}

func getTimeline(t *testing.T, srv *httptest.Server, query string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(srv.URL + "/api/timeline" + query)
	if err != nil {
		t.Fatalf("GET timeline: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body
}

func decodeIDs(t *testing.T, body []byte) []string {
	t.Helper()
	var resp struct {
		Status   string           `json:"status"`
		Timeline []map[string]any `json:"timeline"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode body %s: %v", body, err)
	}
	if resp.Status != "success" {
		t.Fatalf("unexpected status in %s", body)
	}
	out := make([]string, 0, len(resp.Timeline))
	for _, ev := range resp.Timeline {
		out = append(out, fmt.Sprint(ev["id"]))
	}
	return out
}

func TestTimelineEndpoint(t *testing.T) {
	engine, _ := seededEngine(t)
	srv := newIPv4Server(t, NewMux(Options{Pager: engine}))
	defer srv.Close()

	status, body := getTimeline(t, srv, "")
	if status != http.StatusOK {
		t.Fatalf("unexpected status code: %d", status)
	}
	if got := fmt.Sprint(decodeIDs(t, body)); got != "[r7 r6 r5 r4 r3]" {
		t.Fatalf("unexpected page 1: %s", got)
	}

	status, body = getTimeline(t, srv, "?page=2&before_datetime=not-a-date")
	if status != http.StatusOK {
		t.Fatalf("malformed before should not fail the request: %d", status)
	}
	if got := fmt.Sprint(decodeIDs(t, body)); got != "[r2 r1]" {
		t.Fatalf("unexpected page 2: %s", got)
	}

	status, body = getTimeline(t, srv, "?page=3")
	if status != http.StatusOK {
		t.Fatalf("unexpected status code: %d", status)
	}
	if !strings.Contains(string(body), `"timeline":[]`) {
		t.Fatalf("expected empty timeline array, got %s", body)
	}
}

func TestTimelineEndpointRejectsBadPage(t *testing.T) {
	engine, _ := seededEngine(t)
	srv := newIPv4Server(t, NewMux(Options{Pager: engine}))
	defer srv.Close()

	for _, query := range []string{"?page=0", "?page=-1", "?page=abc"} {
		status, body := getTimeline(t, srv, query)
		if status != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d (%s)", query, status, body)
		}
	}

	resp, err := http.Post(srv.URL+"/api/timeline", "application/json", nil)
	if err != nil {
		t.Fatalf("POST timeline: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", resp.StatusCode)
	}
}

func TestTimelineEndpointHugePage(t *testing.T) {
	engine, _ := seededEngine(t)
	srv := newIPv4Server(t, NewMux(Options{Pager: engine}))
	defer srv.Close()

	status, body := getTimeline(t, srv, "?page=1844674407370955163")
	if status != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", status, body)
	}
	if !strings.Contains(string(body), `"timeline":[]`) {
		t.Fatalf("expected empty timeline array, got %s", body)
	}
}

func TestTimelineEndpointIntegerKeyedMapping(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Put("timeline-event-log.yaml", []byte("- id: a\n  detections:\n    1: person\n"))
	srv := newIPv4Server(t, NewMux(Options{Pager: timeline.NewEngine(store, timeline.Options{})}))
	defer srv.Close()

	status, body := getTimeline(t, srv, "?page=1")
	if status != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", status, body)
	}
	if !strings.Contains(string(body), `"detections":{"1":"person"}`) {
		t.Fatalf("expected stringified detections key, got %s", body)
	}
}

type abortedPager struct{}

func (abortedPager) GetPage(ctx context.Context, req timeline.PageRequest) ([]timeline.Event, error) {
	return nil, context.Canceled
}

func TestTimelineEndpointAborted(t *testing.T) {
	srv := newIPv4Server(t, NewMux(Options{Pager: abortedPager{}}))
	defer srv.Close()
	status, _ := getTimeline(t, srv, "?page=1")
	if status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", status)
	}
}

type stubChecker struct{ err error }

func (c stubChecker) Check(context.Context) error { return c.err }

func TestReadiness(t *testing.T) {
	engine, _ := seededEngine(t)
	monitor := health.NewStoreHealthMonitor(health.Config{})
	checker := &stubChecker{}
	srv := newIPv4Server(t, NewMux(Options{Pager: engine, Health: monitor, Checker: checker}))
	defer srv.Close()

	if code := statusOf(t, srv.URL+"/readyz"); code != http.StatusOK {
		t.Fatalf("expected ready, got %d", code)
	}
	checker.err = errors.New("bucket missing")
	if code := statusOf(t, srv.URL+"/readyz"); code != http.StatusServiceUnavailable {
		t.Fatalf("expected not ready when check fails, got %d", code)
	}
	checker.err = nil
	monitor.RecordOperation(health.OpList, time.Millisecond, errors.New("permission denied"))
	if code := statusOf(t, srv.URL+"/readyz"); code != http.StatusServiceUnavailable {
		t.Fatalf("expected not ready when store unavailable, got %d", code)
	}
	if code := statusOf(t, srv.URL+"/healthz"); code != http.StatusOK {
		t.Fatalf("healthz should stay ok, got %d", code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	engine, _ := seededEngine(t)
	srv := newIPv4Server(t, NewMux(Options{Pager: engine}))
	defer srv.Close()
	if code := statusOf(t, srv.URL+"/metrics"); code != http.StatusOK {
		t.Fatalf("expected metrics endpoint, got %d", code)
	}
}

func TestStartServerRequiresPager(t *testing.T) {
	if err := StartServer(context.Background(), "127.0.0.1:0", Options{}); err == nil {
		t.Fatalf("expected error without pager")
	}
}

func statusOf(t *testing.T, url string) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func newIPv4Server(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping HTTP test: %v", err)
		}
		t.Fatalf("listen: %v", err)
	}
	server := httptest.NewUnstartedServer(handler)
	server.Listener = ln
	server.Start()
	return server
}
