// internal/core/ports/database.go
package ports

import (
	"context"
)

// Transactor runs fn inside a database transaction that travels in ctx.
// Repositories called with that ctx use the transaction; a nested call joins
// the outer transaction instead of opening a new one. Returning an error from
// fn rolls everything back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Database defines the port for database operations used outside repositories,
// abstracting away the concrete pgxpool implementation.
type Database interface {
	Transactor
	Close()
	Ping(ctx context.Context) error
	Health(ctx context.Context) map[string]interface{}
}
