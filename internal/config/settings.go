package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

type Settings struct {
	Tabs      TabsSettings      `toml:"tabs"`
	Transfer  TransferSettings  `toml:"transfer"`
	Summarize SummarizeSettings `toml:"summarize"`
	Grooming  GroomingSettings  `toml:"grooming"`
	Logging   LoggingSettings   `toml:"logging"`
}

type TabsSettings struct {
	// ClosedHistoryCapacity bounds the per-session closed-tab history.
	ClosedHistoryCapacity int `toml:"closed_history_capacity"`
}

type TransferSettings struct {
	// TokenWarningCeiling triggers an advisory warning before transferring
	// contexts estimated above it. Zero disables the check.
	TokenWarningCeiling int `toml:"token_warning_ceiling"`
}

type SummarizeSettings struct {
	// TokenThreshold is the minimum estimated context size eligible for
	// compaction.
	TokenThreshold int `toml:"token_threshold"`
}

type GroomingSettings struct {
	Default bool `toml:"default"`
}

type LoggingSettings struct {
	Level string `toml:"level"`
}

// settingsFile mirrors Settings with optional fields so a partial file only
// overrides what it names.
type settingsFile struct {
	Tabs struct {
		ClosedHistoryCapacity *int `toml:"closed_history_capacity"`
	} `toml:"tabs"`
	Transfer struct {
		TokenWarningCeiling *int `toml:"token_warning_ceiling"`
	} `toml:"transfer"`
	Summarize struct {
		TokenThreshold *int `toml:"token_threshold"`
	} `toml:"summarize"`
	Grooming struct {
		Default *bool `toml:"default"`
	} `toml:"grooming"`
	Logging struct {
		Level *string `toml:"level"`
	} `toml:"logging"`
}

func DefaultSettings() Settings {
	return Settings{
		Tabs:      TabsSettings{ClosedHistoryCapacity: 25},
		Transfer:  TransferSettings{TokenWarningCeiling: 150000},
		Summarize: SummarizeSettings{TokenThreshold: 20000},
		Grooming:  GroomingSettings{Default: true},
		Logging:   LoggingSettings{Level: "info"},
	}
}

// LoadSettings reads the settings file and fills gaps from the defaults. A
// missing file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, err
	}
	var loaded settingsFile
	if err := toml.Unmarshal(raw, &loaded); err != nil {
		return settings, err
	}
	if loaded.Tabs.ClosedHistoryCapacity != nil && *loaded.Tabs.ClosedHistoryCapacity > 0 {
		settings.Tabs.ClosedHistoryCapacity = *loaded.Tabs.ClosedHistoryCapacity
	}
	if loaded.Transfer.TokenWarningCeiling != nil && *loaded.Transfer.TokenWarningCeiling >= 0 {
		settings.Transfer.TokenWarningCeiling = *loaded.Transfer.TokenWarningCeiling
	}
	if loaded.Summarize.TokenThreshold != nil && *loaded.Summarize.TokenThreshold >= 0 {
		settings.Summarize.TokenThreshold = *loaded.Summarize.TokenThreshold
	}
	if loaded.Grooming.Default != nil {
		settings.Grooming.Default = *loaded.Grooming.Default
	}
	if loaded.Logging.Level != nil && *loaded.Logging.Level != "" {
		settings.Logging.Level = *loaded.Logging.Level
	}
	return settings, nil
}

// SaveSettings writes the settings file, creating the directory as needed.
func SaveSettings(path string, settings Settings) error {
	raw, err := toml.Marshal(settings)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}
