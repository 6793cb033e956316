package scratchpad

import (
	"fmt"
	"strings"

	gconfig "github.com/Laisky/go-config/v2"
)

const (
	// DefaultMaxContentBytes is the 1 MiB content ceiling for a scratchpad.
	DefaultMaxContentBytes int64 = 1 << 20
	// WorkflowPageSize is the fixed page size of search-workflows.
	WorkflowPageSize = 5
)

// Settings captures runtime configuration for the scratchpad engine.
type Settings struct {
	DBPath string
	// DBDriver selects the SQLite driver: "sqlite" (pure Go) or "sqlite3" (cgo).
	DBDriver        string
	MaxContentBytes int64
	List            ListSettings
	Search          SearchSettings
	Index           IndexSettings
}

// ListSettings bounds list-scratchpads paging.
type ListSettings struct {
	LimitDefault int
	LimitMax     int
}

// SearchSettings captures query-time configuration for search-scratchpads.
type SearchSettings struct {
	LimitDefault     int
	LimitMax         int
	SnippetLength    int
	SegmenterEnabled bool
}

// IndexSettings configures the full-text index synchronizer.
type IndexSettings struct {
	RebuildOnDrift bool
	// SkipStartupCheck leaves the index as found, for read-only inspection.
	SkipStartupCheck bool
}

// LoadSettingsFromConfig reads configuration and applies safe defaults.
func LoadSettingsFromConfig() Settings {
	settings := Settings{
		DBPath:          strings.TrimSpace(gconfig.S.GetString("settings.scratchpad.db_path")),
		DBDriver:        strings.TrimSpace(gconfig.S.GetString("settings.scratchpad.db_driver")),
		MaxContentBytes: int64FromConfig("settings.scratchpad.max_content_bytes", DefaultMaxContentBytes),
		List: ListSettings{
			LimitDefault: intFromConfig("settings.scratchpad.list.limit_default", 20),
			LimitMax:     intFromConfig("settings.scratchpad.list.limit_max", 100),
		},
		Search: SearchSettings{
			LimitDefault:     intFromConfig("settings.scratchpad.search.limit_default", 10),
			LimitMax:         intFromConfig("settings.scratchpad.search.limit_max", 20),
			SnippetLength:    intFromConfig("settings.scratchpad.search.snippet_length", 150),
			SegmenterEnabled: boolFromConfig("settings.scratchpad.search.segmenter_enabled", true),
		},
		Index: IndexSettings{
			RebuildOnDrift: boolFromConfig("settings.scratchpad.index.rebuild_on_drift", true),
		},
	}

	return settings.withDefaults()
}

// withDefaults replaces missing or invalid values with safe defaults.
func (s Settings) withDefaults() Settings {
	if s.DBPath == "" {
		s.DBPath = "./data/scratchpad.db"
	}
	if s.DBDriver == "" {
		s.DBDriver = "sqlite"
	}
	if s.MaxContentBytes <= 0 {
		s.MaxContentBytes = DefaultMaxContentBytes
	}
	if s.List.LimitMax <= 0 {
		s.List.LimitMax = 100
	}
	if s.List.LimitDefault <= 0 {
		s.List.LimitDefault = 20
	}
	if s.List.LimitDefault > s.List.LimitMax {
		s.List.LimitDefault = s.List.LimitMax
	}
	if s.Search.LimitMax <= 0 {
		s.Search.LimitMax = 20
	}
	if s.Search.LimitDefault <= 0 {
		s.Search.LimitDefault = 10
	}
	if s.Search.LimitDefault > s.Search.LimitMax {
		s.Search.LimitDefault = s.Search.LimitMax
	}
	if s.Search.SnippetLength <= 0 {
		s.Search.SnippetLength = 150
	}

	return s
}

// intFromConfig reads an int configuration value with a default fallback.
func intFromConfig(key string, def int) int {
	return int(int64FromConfig(key, int64(def)))
}

// int64FromConfig reads an int64 configuration value with a default fallback.
func int64FromConfig(key string, def int64) int64 {
	value := gconfig.S.Get(key)
	switch v := value.(type) {
	case nil:
		return def
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return def
		}
		var parsed int64
		if _, err := fmt.Sscanf(trimmed, "%d", &parsed); err != nil {
			return def
		}
		return parsed
	default:
		return def
	}
}

// boolFromConfig reads a boolean configuration value with a default fallback.
func boolFromConfig(key string, def bool) bool {
	value := gconfig.S.Get(key)
	switch v := value.(type) {
	case nil:
		return def
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		default:
			return def
		}
	default:
		return def
	}
}
