// Package app contains the core application wiring. It builds the logger,
// the stores, the metrics registry and the engine service from a
// config.Config and owns their lifecycle, decoupled from any specific
// entrypoint like a CLI or server.
package app
