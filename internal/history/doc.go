// Package history persists conversion outcomes in a local SQLite database.
//
// Each converted, skipped, or failed file becomes one row tagged with the run
// id of the batch or watch session that produced it. The schema is versioned
// with PRAGMA user_version and upgraded on Open by the numbered scripts under
// migrations/. Prune keeps the table bounded by history.retain.
package history
