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

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: \":9000\"\nstore:\n  backend: file\n  dir: /var/lib/timeline\ntimeline:\n  page_size: 10\n  format: jsonl\ncache:\n  bytes: 4096\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.Store.Dir != "/var/lib/timeline" {
		t.Fatalf("unexpected dir: %s", cfg.Store.Dir)
	}
	if cfg.Timeline.PageSize != 10 || cfg.Timeline.Format != "jsonl" {
		t.Fatalf("unexpected timeline config: %#v", cfg.Timeline)
	}
	if cfg.Cache.Bytes != 4096 {
		t.Fatalf("unexpected cache bytes: %d", cfg.Cache.Bytes)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Store.Backend != "file" {
		t.Fatalf("expected file backend, got %q", cfg.Store.Backend)
	}
	if cfg.Store.Pattern != "timeline-event-log.yaml*" {
		t.Fatalf("expected default pattern, got %q", cfg.Store.Pattern)
	}
	if cfg.Timeline.PageSize != 5 {
		t.Fatalf("expected default page size 5, got %d", cfg.Timeline.PageSize)
	}
	if cfg.Timeline.Format != "yaml" {
		t.Fatalf("expected default format yaml, got %q", cfg.Timeline.Format)
	}
	if cfg.Server.Addr != ":8778" {
		t.Fatalf("expected default addr, got %q", cfg.Server.Addr)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "store:\n  dir: /from/file\n")
	t.Setenv("TIMELINE_DATA_DIR", "/from/env")
	t.Setenv("TIMELINE_PAGE_SIZE", "7")
	t.Setenv("TIMELINE_STORE_BACKEND", "ETCD")
	t.Setenv("TIMELINE_ETCD_ENDPOINTS", "http://a:2379, http://b:2379")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Store.Dir != "/from/env" {
		t.Fatalf("expected env dir, got %q", cfg.Store.Dir)
	}
	if cfg.Timeline.PageSize != 7 {
		t.Fatalf("expected env page size, got %d", cfg.Timeline.PageSize)
	}
	if cfg.Store.Backend != "etcd" {
		t.Fatalf("expected etcd backend, got %q", cfg.Store.Backend)
	}
	if len(cfg.Etcd.Endpoints) != 2 || cfg.Etcd.Endpoints[1] != "http://b:2379" {
		t.Fatalf("unexpected endpoints: %#v", cfg.Etcd.Endpoints)
	}
}

func TestApplyEnvRejectsBadValues(t *testing.T) {
	env := map[string]string{"TIMELINE_PAGE_SIZE": "five"}
	lookup := func(key string) (string, bool) {
		val, ok := env[key]
		return val, ok
	}
	var cfg Config
	if err := cfg.ApplyEnv(lookup); err == nil {
		t.Fatalf("expected error for non-numeric page size")
	}
	env = map[string]string{"TIMELINE_S3_PATH_STYLE": "maybe"}
	if err := cfg.ApplyEnv(lookup); err == nil {
		t.Fatalf("expected error for non-boolean path style")
	}
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"s3 without bucket":  "store:\n  backend: s3\ns3:\n  region: us-east-1\n",
		"s3 without region":  "store:\n  backend: s3\ns3:\n  bucket: events\n",
		"etcd without hosts": "store:\n  backend: etcd\n",
		"unknown backend":    "store:\n  backend: mongo\n",
		"negative page size": "timeline:\n  page_size: -1\n",
		"unknown format":     "timeline:\n  format: xml\n",
		"negative cache":     "cache:\n  bytes: -1\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
