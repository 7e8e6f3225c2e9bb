// Package main hosts the nimbus CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the download monitor in the foreground,
// drives interactive review passes over the command journal, and exposes
// journal, history, catalog and configuration utilities. It centralizes
// configuration resolution and logging setup so subcommands can focus on
// user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
