// Package mcp hosts the MCP server that exposes the scratchpad tools.
package mcp

import (
	gconfig "github.com/Laisky/go-config/v2"
)

// ToolsSettings records which MCP tools are registered.
// Every tool is enabled unless explicitly disabled in the configuration.
type ToolsSettings struct {
	disabled map[string]struct{}
}

// LoadToolsSettingsFromConfig reads settings.mcp.tools.<tool>.enabled for every known tool.
func LoadToolsSettingsFromConfig() ToolsSettings {
	settings := ToolsSettings{disabled: map[string]struct{}{}}
	for _, name := range ToolNames() {
		if !boolFromConfig("settings.mcp.tools."+name+".enabled", true) {
			settings.disabled[name] = struct{}{}
		}
	}
	return settings
}

// DisableTools returns a copy of the settings with the named tools disabled.
func (s ToolsSettings) DisableTools(names ...string) ToolsSettings {
	out := ToolsSettings{disabled: make(map[string]struct{}, len(s.disabled)+len(names))}
	for name := range s.disabled {
		out.disabled[name] = struct{}{}
	}
	for _, name := range names {
		out.disabled[name] = struct{}{}
	}
	return out
}

// Enabled reports whether the named tool should be registered.
func (s ToolsSettings) Enabled(name string) bool {
	_, off := s.disabled[name]
	return !off
}

// boolFromConfig retrieves a boolean configuration value with a default fallback.
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
		switch v {
		case "true", "True", "TRUE", "1", "yes", "Yes", "YES":
			return true
		case "false", "False", "FALSE", "0", "no", "No", "NO":
			return false
		default:
			return def
		}
	default:
		return def
	}
}
