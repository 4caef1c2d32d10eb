package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/timbertson/daglink/pkg/errors"
	"github.com/timbertson/daglink/pkg/types"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for daglink
	EnvConfigDir = "DAGLINK_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for daglink
	EnvStateDir = "DAGLINK_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// File names inside the daglink directories. The provenance record lives
// next to the config by default but never moves with a config passed via
// --config.
const (
	DirName            = "daglink"
	ConfigFileName     = "conf"
	SettingsFileName   = "settings.toml"
	ProvenanceFileName = "installed"
	MarkerFileName     = "last-applied"
)

// paths implements types.Pather
type paths struct {
	configDir string
	stateDir  string
}

// New creates a Pather from the environment
func New() (types.Pather, error) {
	p := &paths{}

	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.configDir = ExpandHome(dir)
	} else {
		p.configDir = filepath.Join(xdg.ConfigHome, DirName)
	}

	if dir := os.Getenv(EnvStateDir); dir != "" {
		p.stateDir = ExpandHome(dir)
	} else {
		p.stateDir = filepath.Join(xdg.StateHome, DirName)
	}

	for _, dir := range []*string{&p.configDir, &p.stateDir} {
		abs, err := filepath.Abs(*dir)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for %s", *dir)
		}
		*dir = abs
	}
	return p, nil
}

func (p *paths) ConfigDir() string      { return p.configDir }
func (p *paths) StateDir() string       { return p.stateDir }
func (p *paths) ConfigFile() string     { return filepath.Join(p.configDir, ConfigFileName) }
func (p *paths) SettingsFile() string   { return filepath.Join(p.configDir, SettingsFileName) }
func (p *paths) ProvenanceFile() string { return filepath.Join(p.configDir, ProvenanceFileName) }
func (p *paths) MarkerFile() string     { return filepath.Join(p.stateDir, MarkerFileName) }

// ExpandHome replaces a leading "~" or "~/" with the user's home directory.
// "~user" forms are returned unchanged.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// Absolutize expands "~" and resolves a relative path against base. An
// empty base means the current working directory.
func Absolutize(path, base string) (string, error) {
	path = ExpandHome(path)
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	if base != "" {
		base = ExpandHome(base)
		if filepath.IsAbs(base) {
			return filepath.Join(base, path), nil
		}
		path = filepath.Join(base, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for %s", path)
	}
	return abs, nil
}
