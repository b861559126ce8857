// Package runner executes one backup run end to end.
//
// A run is either an archive task (snapshot configured git repositories,
// then compress each folder of the selected policy into an encrypted split
// archive) or a protect task (build par2 recovery layers over consolidated
// monthly archives). Monthly archive runs chain into the protect task when
// protection is enabled, matching the cadence the suite was built around.
//
// Runs are serialized through an advisory file lock: staging directories,
// working directories, and chunk files are scoped to one archive increment,
// and nothing below the runner guards against a second concurrent run over
// the same tree. Every run produces a RunReport the CLI renders; errors are
// classified with the services sentinels so callers can tell configuration
// faults from tool failures.
package runner
