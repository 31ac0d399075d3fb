// Package db provides the SQLite-backed implementation of the repository
// interfaces defined in the domain package.
//
// It uses sqlx for database access and goose for schema migrations, which
// are embedded in the binary. A single Repository type implements every
// domain repository interface, keeping all persistence concerns behind one
// connection pool.
package db
