package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kBool
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "QAREVIEW_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.mcp_enabled", typ: kBool, env: "QAREVIEW_SERVER_MCP_ENABLED",
		apply:   func(cfg *Config, v any) { cfg.Server.MCPEnabled = v.(bool) },
		extract: func(cfg Config) any { return cfg.Server.MCPEnabled },
	},
	{
		key: "backend.base_url", typ: kString, env: "QAREVIEW_BACKEND_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Backend.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Backend.BaseURL },
	},
	{
		key: "backend.unreviewed_dataset_id", typ: kString, env: "QAREVIEW_BACKEND_UNREVIEWED_DATASET_ID",
		apply:   func(cfg *Config, v any) { cfg.Backend.UnreviewedDatasetID = v.(string) },
		extract: func(cfg Config) any { return cfg.Backend.UnreviewedDatasetID },
	},
	{
		key: "backend.reviewed_dataset_id", typ: kString, env: "QAREVIEW_BACKEND_REVIEWED_DATASET_ID",
		apply:   func(cfg *Config, v any) { cfg.Backend.ReviewedDatasetID = v.(string) },
		extract: func(cfg Config) any { return cfg.Backend.ReviewedDatasetID },
	},
	{
		key: "console.page_size", typ: kInt, env: "QAREVIEW_CONSOLE_PAGE_SIZE",
		apply:   func(cfg *Config, v any) { cfg.Console.PageSize = v.(int) },
		extract: func(cfg Config) any { return cfg.Console.PageSize },
	},
	{
		key: "console.flush_concurrency", typ: kInt, env: "QAREVIEW_CONSOLE_FLUSH_CONCURRENCY",
		apply:   func(cfg *Config, v any) { cfg.Console.FlushConcurrency = v.(int) },
		extract: func(cfg Config) any { return cfg.Console.FlushConcurrency },
	},
	{
		key: "console.count_concurrency", typ: kInt, env: "QAREVIEW_CONSOLE_COUNT_CONCURRENCY",
		apply:   func(cfg *Config, v any) { cfg.Console.CountConcurrency = v.(int) },
		extract: func(cfg Config) any { return cfg.Console.CountConcurrency },
	},
	{
		key: "console.recheck_delay", typ: kString, env: "QAREVIEW_CONSOLE_RECHECK_DELAY",
		apply:   func(cfg *Config, v any) { cfg.Console.RecheckDelay = v.(string) },
		extract: func(cfg Config) any { return cfg.Console.RecheckDelay },
	},
	{
		key: "console.duplicate_threshold", typ: kInt, env: "QAREVIEW_CONSOLE_DUPLICATE_THRESHOLD",
		apply:   func(cfg *Config, v any) { cfg.Console.DuplicateThreshold = v.(int) },
		extract: func(cfg Config) any { return cfg.Console.DuplicateThreshold },
	},
	{
		key: "console.timezone", typ: kString, env: "QAREVIEW_CONSOLE_TIMEZONE",
		apply:   func(cfg *Config, v any) { cfg.Console.Timezone = v.(string) },
		extract: func(cfg Config) any { return cfg.Console.Timezone },
	},
	{
		key: "storage.data_dir", typ: kString, env: "QAREVIEW_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "log.level", typ: kString, env: "QAREVIEW_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kBool:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				if bv, err := strconv.ParseBool(v); err == nil {
					s.apply(cfg, bv)
				} else {
					fmt.Fprintf(os.Stderr, "[WARN] could not parse bool from config key %s=%q: %v. Using default value.\n", s.key, v, err)
				}
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kBool:
			if b, err := strconv.ParseBool(raw); err == nil {
				s.apply(cfg, b)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse bool from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
