// Package config provides configuration for the undoredo demo.
//
// Configuration is read from a TOML or YAML file, chosen by extension,
// then overridden by UNDOREDO_* environment variables. A missing file
// yields the defaults:
//
//	[history]
//	capacity = 20    # negative keeps every record
//	enabled = true
//
//	[logging]
//	level = "info"
//
//	[scene]
//	seed = 0         # 0 seeds from the clock
//	width = 30
//	height = 12
//
// A Reloader reloads the file when it changes on disk.
package config
