// Package sqlite provides a single-file SQLite key-value backend for the
// stores in internal/store, using the pure-Go modernc.org/sqlite driver.
package sqlite
