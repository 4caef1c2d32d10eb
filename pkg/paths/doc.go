// Package paths provides centralized path handling for daglink.
//
// It resolves the per-user locations daglink keeps its files in, following
// the XDG Base Directory specification:
//
//   - Config: $XDG_CONFIG_HOME/daglink (declarative config, settings, and the
//     provenance record "installed")
//   - State: $XDG_STATE_HOME/daglink (log file, "last-applied" marker)
//
// # Environment Variables
//
//   - DAGLINK_CONFIG_DIR: override the config directory
//   - DAGLINK_STATE_DIR: override the state directory
//
// It also expands "~" and absolutizes declared paths against a base
// directory.
package paths
