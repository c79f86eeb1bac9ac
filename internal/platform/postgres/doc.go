// Package postgres provides PostgreSQL implementations of the store
// interfaces defined in internal/store. Stores run over database/sql with
// the pgx driver, so any store.DBTX (a *sql.DB or a *sql.Tx) can back them.
// The schema ships as embedded goose migrations; see Migrate.
package postgres
