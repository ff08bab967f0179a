// Package config loads the simulator settings.
//
// Settings are layered: built-in defaults, an optional YAML file, a .env
// file, INHIBIT_SIM_* environment variables and finally command-line flags
// applied by the caller. Validate should run after the last layer.
package config
