// Package config holds the editor options and loads them from files.
//
// Options is a flat set of named settings with documented defaults.
// Configuration files are read into a generic map by a format loader (TOML,
// YAML or JSON), layered with DeepMerge, and applied to a copy of the
// defaults key by key:
//
//   - key names are matched ignoring case, '_' and '-', so
//     "anchor_preview_hide_delay" and "anchorPreviewHideDelay" are the same
//     option
//   - unknown keys are ignored
//   - missing keys keep their default
//   - a value of the wrong type is an *OptionError
//
// Durations accept a number of milliseconds or a Go duration string.
//
// A Watcher observes a configuration file with fsnotify and calls back,
// debounced, whenever the file is written, created or replaced.
package config
