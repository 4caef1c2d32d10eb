// Package testutil provides utilities for testing daglink components.
//
// Key components:
//   - MemoryFS: in-memory filesystem with real symlink semantics, write
//     denial for simulating root-owned directories, and mutation counting
//   - RootShell: fake escalation helper that replays argv against MemoryFS
//   - Confirmer: scripted operator answering confirmation prompts
package testutil
