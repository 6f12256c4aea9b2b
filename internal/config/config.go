package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "CHATLENS_CONFIG"

const (
	DefaultListen           = "127.0.0.1:8501"
	DefaultMaxUploadMB      = 32
	DefaultTopWords         = 20
	DefaultMediaPlaceholder = "<Media omitted>\n"
	DefaultReportName       = "WhatsApp_Chat_Analysis_Report.pdf"
)

type Config struct {
	ExportRoot       string `toml:"export_root"`
	DBPath           string `toml:"db_path"`
	StopWords        string `toml:"stop_words"`
	Lexicon          string `toml:"lexicon"`
	ChartFont        string `toml:"chart_font"`
	Listen           string `toml:"listen"`
	MaxUploadMB      int    `toml:"max_upload_mb"`
	TopWords         int    `toml:"top_words"`
	MediaPlaceholder string `toml:"media_placeholder"`
}

// Load applies defaults, overlays the toml file at path (or $CHATLENS_CONFIG,
// or ~/.config/chatlens/config.toml when present) and expands ~ in paths.
// An explicit path that does not exist is an error.
func Load(path string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ExportRoot:       filepath.Join(home, "WhatsApp"),
		DBPath:           filepath.Join(home, ".config", "chatlens", "chatlens.db"),
		Listen:           DefaultListen,
		MaxUploadMB:      DefaultMaxUploadMB,
		TopWords:         DefaultTopWords,
		MediaPlaceholder: DefaultMediaPlaceholder,
	}

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
		explicit = path != ""
	}
	if !explicit {
		path = filepath.Join(home, ".config", "chatlens", "config.toml")
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	// expand ~ in paths
	cfg.ExportRoot = expandHome(cfg.ExportRoot, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)
	cfg.StopWords = expandHome(cfg.StopWords, home)
	cfg.Lexicon = expandHome(cfg.Lexicon, home)
	cfg.ChartFont = expandHome(cfg.ChartFont, home)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the analyzers and server cannot work with.
func (c *Config) Validate() error {
	if c.TopWords <= 0 {
		return errors.New("top_words must be positive")
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("max_upload_mb must be positive")
	}
	if c.DBPath == "" {
		return errors.New("db_path is required")
	}
	return nil
}

// MaxUploadBytes is MaxUploadMB in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
