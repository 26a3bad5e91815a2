// Package postgres provides the PostgreSQL key-value backend for the stores
// in internal/store, together with the goose migrations that create its
// schema.
package postgres
