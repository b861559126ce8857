// Package services defines shared utilities consumed by the backup runner
// and the external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp archive names, increment tags, and
//     correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification consistent across tool invocations.
//
// Use these helpers when wiring new run logic so operational behaviour
// (error handling, observability) stays uniform across the suite.
package services
