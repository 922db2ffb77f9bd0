package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/recordbook/recordbook/internal/config"
	"github.com/recordbook/recordbook/internal/database"
)

// Open builds the Store selected by cfg.Store.Driver. SQL backends get their
// schema created before Open returns.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return NewMemoryStore(), nil

	case config.DriverPostgres, config.DriverSQLite:
		driverName, dialect := database.DriverPgx, Postgres
		if cfg.Store.Driver == config.DriverSQLite {
			driverName, dialect = database.DriverSQLite, SQLite
		}
		db, err := database.Retry(ctx, cfg.Store.Driver, database.DefaultBackoff, func(ctx context.Context) (*sql.DB, error) {
			return database.OpenSQL(ctx, driverName, cfg.Store.DSN, cfg.Store.Timeout)
		})
		if err != nil {
			return nil, err
		}
		s := NewSQLStore(db, dialect)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return s, nil

	case config.DriverMongo:
		client, err := database.Retry(ctx, "MongoDB", database.DefaultBackoff, func(ctx context.Context) (*mongo.Client, error) {
			return database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		})
		if err != nil {
			return nil, err
		}
		s, err := NewMongoStore(ctx, client, cfg.MongoDB.Database)
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
