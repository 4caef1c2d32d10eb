// Package config loads daglink's two kinds of configuration.
//
// The declarative link configuration (LoadFile, Parse) maps paths to
// directives. It is YAML by default, or TOML when the file name ends in
// ".toml", and is validated into a types.Config once at load time.
//
// Tool settings (LoadSettings) control how daglink behaves: which file to
// read by default, which escalation helper to use, the tag match policy
// and log rotation. They are layered with koanf from built-in defaults, an
// optional settings.toml and DAGLINK_* environment variables.
package config
