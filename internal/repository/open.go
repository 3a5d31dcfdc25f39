package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/fishcamp/internal/config"
	"github.com/iliyamo/fishcamp/internal/database"
)

// Open connects to the backend selected by cfg.DBDriver and returns a
// ready Store.  The caller closes it.
func Open(ctx context.Context, cfg config.Config) (*Store, error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		client, err := database.OpenMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("open mongo: %w", err)
		}
		return NewMongoStore(client, cfg.MongoDB), nil
	case config.DriverMySQL, config.DriverSQLite:
		db, err := database.OpenSQL(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", cfg.DBDriver, err)
		}
		return NewSQLStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}
