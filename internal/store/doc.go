// Package store provides durable history for translation runs.
//
// Every `pythia translate --store` invocation records one run per backend:
// the model name, a hash of the interchange source, the lint diagnostics,
// and the emitted target code. The pure core (linter, IR, codegen) never
// touches the store; it is wired only from the CLI.
//
// Storage is SQLite with WAL mode for concurrent read access and a single
// writer connection.
package store
