// Package main hosts the Bulwark CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into backup
// runs, protection rebuilds, partition previews, environment status reports,
// and configuration scaffolding. It centralizes configuration resolution and
// logging setup so subcommands can focus on user experience instead of
// wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
// That separation keeps the CLI declarative while the heavy lifting lives in
// the runner and protection packages.
package main
