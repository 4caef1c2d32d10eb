package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("env overrides", func(t *testing.T) {
		t.Setenv(EnvConfigDir, "/custom/config")
		t.Setenv(EnvStateDir, "/custom/state")

		p, err := New()
		require.NoError(t, err)

		assert.Equal(t, "/custom/config", p.ConfigDir())
		assert.Equal(t, "/custom/state", p.StateDir())
		assert.Equal(t, "/custom/config/conf", p.ConfigFile())
		assert.Equal(t, "/custom/config/installed", p.ProvenanceFile())
		assert.Equal(t, "/custom/state/last-applied", p.MarkerFile())
	})

	t.Run("xdg defaults", func(t *testing.T) {
		t.Setenv(EnvConfigDir, "")
		t.Setenv(EnvStateDir, "")

		p, err := New()
		require.NoError(t, err)

		assert.True(t, filepath.IsAbs(p.ConfigDir()))
		assert.Equal(t, DirName, filepath.Base(p.ConfigDir()))
		assert.Equal(t, DirName, filepath.Base(p.StateDir()))
	})

	t.Run("tilde in override", func(t *testing.T) {
		home, err := os.UserHomeDir()
		require.NoError(t, err)
		t.Setenv(EnvConfigDir, "~/.daglink")

		p, err := New()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".daglink"), p.ConfigDir())
	})
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/.bashrc", filepath.Join(home, ".bashrc")},
		{"~other/.bashrc", "~other/.bashrc"},
		{"/etc/hosts", "/etc/hosts"},
		{"relative/~", "relative/~"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandHome(tt.in))
		})
	}
}

func TestAbsolutize(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		base string
		want string
	}{
		{"absolute ignores base", "/a/../b", "/base", "/b"},
		{"relative against base", "src/a", "/base", "/base/src/a"},
		{"relative against home base", "src/a", "~/dots", filepath.Join(home, "dots", "src", "a")},
		{"tilde path", "~/x", "/base", filepath.Join(home, "x")},
		{"relative without base", "src/a", "", filepath.Join(cwd, "src", "a")},
		{"relative base", "a", "rel", filepath.Join(cwd, "rel", "a")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Absolutize(tt.path, tt.base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
