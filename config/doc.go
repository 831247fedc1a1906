// Package config loads and validates the daemon's JSON configuration:
// ingest listener, metrics endpoint, optional NATS bridge, and the monitor
// definitions with their limit rules.
//
// Load applies defaults before validating, so a minimal config only needs
// monitor names. BuildMonitors turns the validated config into live
// monitors registered in a pool.
package config
