package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables overriding settings.
// DAGLINK_ESCALATION_COMMAND sets escalation.command.
const EnvPrefix = "DAGLINK_"

// Match policies for directive tags
const (
	MatchIntersect = "intersect"
	MatchSubset    = "subset"
)

// Settings controls how daglink behaves, as opposed to what it links
type Settings struct {
	Config     ConfigSettings     `koanf:"config"`
	Escalation EscalationSettings `koanf:"escalation"`
	Tags       TagSettings        `koanf:"tags"`
	Log        LogSettings        `koanf:"log"`
}

// ConfigSettings locates the link configuration
type ConfigSettings struct {
	// File overrides the default link configuration path
	File string `koanf:"file"`
}

// EscalationSettings selects the privilege escalation helper
type EscalationSettings struct {
	// Command is used verbatim when set, e.g. "doas" or "sudo -n"
	Command string `koanf:"command"`
	// Preference lists helpers to look for on PATH, first match wins
	Preference []string `koanf:"preference"`
}

// TagSettings controls directive selection
type TagSettings struct {
	// Match is MatchIntersect or MatchSubset
	Match string `koanf:"match"`
}

// LogSettings controls rotation of the log file
type LogSettings struct {
	MaxSizeMB  int `koanf:"max_size_mb"`
	MaxBackups int `koanf:"max_backups"`
	MaxAgeDays int `koanf:"max_age_days"`
}

func defaultSettings() map[string]interface{} {
	return map[string]interface{}{
		"config.file":           "",
		"escalation.command":    "",
		"escalation.preference": []string{"sudo", "doas", "run0"},
		"tags.match":            MatchIntersect,
		"log.max_size_mb":       5,
		"log.max_backups":       3,
		"log.max_age_days":      28,
	}
}

// LoadSettings layers built-in defaults, the settings file at path (if it
// exists) and DAGLINK_* environment variables.
func LoadSettings(path string) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultSettings(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load default settings: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load settings from %s: %w", path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat settings file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var s Settings
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &s,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &s, unmarshalConf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// envKey maps DAGLINK_SECTION_NAME to section.name. Only the first
// underscore separates the section so names keep theirs.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

// Validate checks values that cannot be expressed in the types alone
func (s *Settings) Validate() error {
	switch s.Tags.Match {
	case MatchIntersect, MatchSubset:
	default:
		return fmt.Errorf("invalid tags.match %q: expected %q or %q", s.Tags.Match, MatchIntersect, MatchSubset)
	}
	for i, p := range s.Escalation.Preference {
		s.Escalation.Preference[i] = strings.TrimSpace(p)
	}
	return nil
}
