package store

import (
	"context"

	"github.com/matzehuels/dashgrid/pkg/config"
	"github.com/matzehuels/dashgrid/pkg/errors"
)

// Open builds the store selected by the persist config section.
func Open(ctx context.Context, p config.PersistConfig) (Store, error) {
	var keyer Keyer = NewDefaultKeyer()
	if p.KeyPrefix != "" {
		keyer = NewScopedKeyer(keyer, p.KeyPrefix)
	}

	switch p.Backend {
	case config.BackendFile, "":
		b, err := NewFileBackend(p.Path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "open file store %s", p.Path)
		}
		return NewKVStore(b, keyer), nil
	case config.BackendNull:
		return NewKVStore(NewNullBackend(), keyer), nil
	case config.BackendRedis:
		b, err := NewRedisBackend(ctx, p.RedisAddr)
		if err != nil {
			return nil, err
		}
		return NewKVStore(b, keyer), nil
	case config.BackendSQLite:
		b, err := NewSQLiteBackend(p.SQLitePath)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "open sqlite store %s", p.SQLitePath)
		}
		return NewKVStore(b, keyer), nil
	case config.BackendMongo:
		return NewMongoStore(ctx, p.MongoURI, p.Database, p.Collection, keyer)
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", p.Backend)
}
