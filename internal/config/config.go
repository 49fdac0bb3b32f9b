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
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config defines the timeline service configuration schema.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	S3       S3Config       `yaml:"s3"`
	Etcd     EtcdConfig     `yaml:"etcd"`
	Timeline TimelineConfig `yaml:"timeline"`
	Cache    CacheConfig    `yaml:"cache"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type StoreConfig struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
	Pattern string `yaml:"pattern"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
}

type EtcdConfig struct {
	Endpoints []string `yaml:"endpoints"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	Prefix    string   `yaml:"prefix"`
}

type TimelineConfig struct {
	PageSize int    `yaml:"page_size"`
	Format   string `yaml:"format"`
}

type CacheConfig struct {
	Bytes int `yaml:"bytes"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads the YAML file at path, applies TIMELINE_* environment overrides,
// fills defaults and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if val, ok := lookup(key); ok && strings.TrimSpace(val) != "" {
			*dst = strings.TrimSpace(val)
		}
	}
	str("TIMELINE_HTTP_ADDR", &c.Server.Addr)
	str("TIMELINE_STORE_BACKEND", &c.Store.Backend)
	str("TIMELINE_DATA_DIR", &c.Store.Dir)
	str("TIMELINE_SEGMENT_PATTERN", &c.Store.Pattern)
	str("TIMELINE_S3_BUCKET", &c.S3.Bucket)
	str("TIMELINE_S3_PREFIX", &c.S3.Prefix)
	str("TIMELINE_S3_REGION", &c.S3.Region)
	str("TIMELINE_S3_ENDPOINT", &c.S3.Endpoint)
	str("TIMELINE_S3_ACCESS_KEY", &c.S3.AccessKeyID)
	str("TIMELINE_S3_SECRET_KEY", &c.S3.SecretAccessKey)
	str("TIMELINE_S3_SESSION_TOKEN", &c.S3.SessionToken)
	str("TIMELINE_ETCD_USERNAME", &c.Etcd.Username)
	str("TIMELINE_ETCD_PASSWORD", &c.Etcd.Password)
	str("TIMELINE_ETCD_PREFIX", &c.Etcd.Prefix)
	str("TIMELINE_SEGMENT_FORMAT", &c.Timeline.Format)
	str("TIMELINE_LOG_LEVEL", &c.Log.Level)

	if val, ok := lookup("TIMELINE_ETCD_ENDPOINTS"); ok && strings.TrimSpace(val) != "" {
		c.Etcd.Endpoints = splitList(val)
	}
	if val, ok := lookup("TIMELINE_S3_PATH_STYLE"); ok && strings.TrimSpace(val) != "" {
		parsed, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("TIMELINE_S3_PATH_STYLE: %w", err)
		}
		c.S3.PathStyle = parsed
	}
	ints := map[string]*int{
		"TIMELINE_PAGE_SIZE":   &c.Timeline.PageSize,
		"TIMELINE_CACHE_BYTES": &c.Cache.Bytes,
	}
	for key, dst := range ints {
		if val, ok := lookup(key); ok && strings.TrimSpace(val) != "" {
			parsed, err := strconv.Atoi(strings.TrimSpace(val))
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = parsed
		}
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8778"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "file"
	}
	c.Store.Backend = strings.ToLower(c.Store.Backend)
	if c.Store.Pattern == "" {
		c.Store.Pattern = "timeline-event-log.yaml*"
	}
	if c.Etcd.Prefix == "" {
		c.Etcd.Prefix = "/timeline/segments/"
	}
	if c.Timeline.PageSize == 0 {
		c.Timeline.PageSize = 5
	}
	if c.Timeline.Format == "" {
		c.Timeline.Format = "yaml"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks backend-specific requirements.
func (c Config) Validate() error {
	if c.Timeline.PageSize < 1 {
		return fmt.Errorf("timeline.page_size must be positive, got %d", c.Timeline.PageSize)
	}
	if c.Cache.Bytes < 0 {
		return fmt.Errorf("cache.bytes must not be negative, got %d", c.Cache.Bytes)
	}
	switch c.Timeline.Format {
	case "yaml", "jsonl":
	default:
		return fmt.Errorf("timeline.format %q is not supported", c.Timeline.Format)
	}
	switch c.Store.Backend {
	case "file", "memory":
	case "s3":
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3.bucket is required for store.backend=s3")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("s3.region is required for store.backend=s3")
		}
	case "etcd":
		if len(c.Etcd.Endpoints) == 0 {
			return fmt.Errorf("etcd.endpoints is required for store.backend=etcd")
		}
	default:
		return fmt.Errorf("store.backend %q is not supported", c.Store.Backend)
	}
	return nil
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
