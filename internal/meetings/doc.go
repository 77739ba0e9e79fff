// Package meetings defines the canonical meeting record that all three
// discovery sources converge to, and the JSON-file store that persists it.
//
// The store is the pipeline's single source of truth for what remains to
// be done: adapters insert newly discovered records, stages mutate them in
// place, and every mutation is persisted before the next stage runs.
// Records are never deleted; a permanently failing record keeps its error
// tag for inspection and is retried on the next run.
package meetings
