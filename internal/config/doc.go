// Package config loads, normalizes, and validates nimbus configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// WATERLOO_API_KEY. The Config type centralizes every knob the monitor and the
// review command need: the watched download directory, the course tree root,
// the ordered course list, and the journal location.
//
// A Config is built once at process start and passed by pointer; nothing in
// the monitor mutates it afterwards. Always obtain settings through this
// package so downstream code receives sanitized paths, canonical course codes,
// and clear validation errors.
package config
