// Package repomanager owns the database handle and hands out repositories
// bound to it.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/libriahq/libria/internal/server/repositories/items"
)

// RepositoryManager provides access to the repositories and the underlying
// connection pool.
type RepositoryManager interface {
	Conn() *sql.DB
	Items() items.Repository
	RunMigrations(ctx context.Context) error
	Close() error
}
