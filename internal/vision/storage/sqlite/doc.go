// Package sqlite persists pipeline outputs (runs, track summaries,
// per-frame verdicts, alert events) to a SQLite database.
//
// The schema is created on Open so tests and fresh deployments work
// without ceremony; the migrations/ directory carries the same schema
// for installations upgraded in place via golang-migrate.
package sqlite
