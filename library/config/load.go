// Package config loads the settings file into the shared configuration.
package config

import (
	"path/filepath"

	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"

	"github.com/Laisky/zine-site/library/log"
)

// LoadFromFile loads cfgPath into gconfig.Shared and panics when the file is unusable.
func LoadFromFile(cfgPath string) {
	gconfig.Shared.Set("cfg_dir", filepath.Dir(cfgPath))
	if err := gconfig.Shared.LoadFromFile(cfgPath); err != nil {
		log.Logger.Panic("load configuration",
			zap.Error(err),
			zap.String("config", cfgPath))
	}

	log.Logger.Info("load configuration",
		zap.String("config", cfgPath))
}

// StringOr returns the configured string at key, or def when it is unset or blank.
func StringOr(key, def string) string {
	if v := gconfig.Shared.GetString(key); v != "" {
		return v
	}

	return def
}

// IntOr returns the configured int at key, or def when it is unset.
func IntOr(key string, def int) int {
	if gconfig.Shared.Get(key) == nil {
		return def
	}

	return gconfig.Shared.GetInt(key)
}
