// Package notifications delivers run milestones via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when no topic is set.
// Enumerated event types cover the run lifecycle so the runner can emit
// consistent, user-friendly messages without duplicating HTTP glue, and each
// event can be silenced individually from the notifications config section.
//
// Extend this package if you need alternative transports; the runner depends
// only on the simple Service interface.
package notifications
