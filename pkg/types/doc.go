// Package types defines the core types and interfaces used throughout daglink.
// This includes the filesystem interface, directives and their sources,
// the parsed configuration and tag sets.
package types
