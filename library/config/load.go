// Package config loads the optional configuration file into the shared gconfig store.
package config

import (
	"path/filepath"
	"strings"

	errors "github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"

	"github.com/Laisky/scratchpad-mcp/library/log"
)

// LoadFromFile loads the file at cfgPath into gconfig.Shared.
// An empty path keeps built-in defaults.
func LoadFromFile(cfgPath string) error {
	cfgPath = strings.TrimSpace(cfgPath)
	if cfgPath == "" {
		log.Logger.Info("no configuration file given, using defaults")
		return nil
	}

	gconfig.Shared.Set("cfg_dir", filepath.Dir(cfgPath))
	if err := gconfig.Shared.LoadFromFile(cfgPath); err != nil {
		return errors.Wrapf(err, "load configuration %s", cfgPath)
	}

	log.Logger.Info("configuration loaded", zap.String("config", cfgPath))
	return nil
}
