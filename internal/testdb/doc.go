// Package testdb provides helpers for tests that need a live PostgreSQL
// database. Tests using it are skipped unless DATABASE_URL is set.
package testdb
