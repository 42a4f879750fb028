// Package config defines the runtime settings of learngrid: readiness
// weights, the mastery threshold, worker count, logging, the store backend
// and the health check server.
//
// Settings come from three layers, later ones winning for every non-zero
// value: DefaultConfig, an optional YAML settings file, and command-line
// flags.
package config
