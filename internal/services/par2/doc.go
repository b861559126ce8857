// Package par2 wraps the par2 command-line tool used to build recovery
// volumes for split archives.
//
// The CLI type renders create invocations from structured redundancy
// parameters and runs them with a caller-supplied working directory, so no
// process-wide directory changes are needed. Artifact discovery helpers let
// callers distinguish "tool exited cleanly" from "recovery data actually
// exists on disk".
package par2
