// Package config loads, normalizes, and validates otterpack configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the OTTERPACK_DEV environment
// override. The Config type centralizes every knob the resource locator,
// conversion engine, and CLI need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical format names, and clear validation errors.
package config
