// Package linker reconciles declared symlinks against the disk.
//
// A Linker handles one path at a time: it resolves the directive's target,
// compares it with what is on disk and asks the executor for the smallest
// set of mutations that makes the path a symlink to that target. Paths it
// links or unlinks are recorded in the provenance store.
//
// An Engine drives a whole run on top of a Linker: selection for the
// active tags, the sweep of stale links, per-path reconciliation, the clean
// pass, reports and status.
package linker
