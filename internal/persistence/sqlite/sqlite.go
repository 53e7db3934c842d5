package sqlite

import (
	"context"

	"github.com/example/item-validation/internal/persistence"
)

var _ persistence.ItemRepository = (*Storage)(nil)

// Storage bundles the connection pool with the repositories built on it.
type Storage struct {
	*ItemRepository
	pool *ConnectionPool
}

// Open opens the database at dsn with DefaultSQLiteConfig.
func Open(dsn string) (*Storage, error) {
	return OpenWithConfig(DefaultSQLiteConfig(dsn))
}

// OpenWithConfig opens the database described by config.
func OpenWithConfig(config SQLiteConfig) (*Storage, error) {
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}
	return &Storage{
		ItemRepository: NewItemRepository(pool),
		pool:           pool,
	}, nil
}

// Pool exposes the underlying connection pool.
func (s *Storage) Pool() *ConnectionPool {
	return s.pool
}

// Ping checks that the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the database handle.
func (s *Storage) Close() error {
	return s.pool.Close()
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	migrations, err := Migrations()
	if err != nil {
		return err
	}
	_, err = NewMigrator(s.pool).Run(ctx, migrations)
	return err
}
