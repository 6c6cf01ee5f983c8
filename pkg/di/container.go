// Package di wires configuration, logging, storage and caching into
// ready to use repositories.
package di

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-faster/errors"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/goliatone/go-domain-repository/cache"
	"github.com/goliatone/go-domain-repository/pkg/config"
	"github.com/goliatone/go-domain-repository/pkg/logger"
	"github.com/goliatone/go-domain-repository/repository"
	"github.com/goliatone/go-domain-repository/repositorycache"
	"github.com/goliatone/go-domain-repository/storage/bunstore"
	"github.com/goliatone/go-domain-repository/storage/memory"
)

// Container holds the shared infrastructure built from a Config. The
// database handle is nil for the memory driver and the cache service is
// nil when caching is disabled.
type Container struct {
	cfg          *config.Config
	logger       *zap.Logger
	db           *bun.DB
	cacheService cache.CacheService
	memStores    atomic.Uint64
	closeOnce    sync.Once
}

// NewContainer validates cfg and builds the logger, the database handle
// and the cache service it asks for.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("di: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	log, err := logger.New(cfg.Log, cfg.Env)
	if err != nil {
		return nil, err
	}
	c := &Container{cfg: cfg, logger: log}

	if cfg.Database.Driver != config.DriverMemory {
		db, err := bunstore.Open(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return nil, errors.Wrap(err, "open database")
		}
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
		c.db = db
	}

	if cfg.Cache.Enabled {
		svc, err := cache.NewCacheService(cfg.Cache.Config)
		if err != nil {
			_ = c.Close()
			return nil, errors.Wrap(err, "cache service")
		}
		c.cacheService = svc
	}

	log.Debug("container ready",
		zap.String("driver", cfg.Database.Driver),
		zap.Bool("cache", cfg.Cache.Enabled),
	)
	return c, nil
}

// NewContainerWithDefaults builds a container over config.Default: an in
// memory store, no cache.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(config.Default())
}

func (c *Container) Config() *config.Config { return c.cfg }

func (c *Container) Logger() *zap.Logger { return c.logger }

// DB returns the database handle, nil for the memory driver.
func (c *Container) DB() *bun.DB { return c.db }

// CacheService returns the shared cache, nil when caching is disabled.
func (c *Container) CacheService() cache.CacheService { return c.cacheService }

// Migrate creates the tables for models when a database is configured.
func (c *Container) Migrate(ctx context.Context, models ...any) error {
	if c.db == nil {
		return nil
	}
	for _, model := range models {
		if _, err := c.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return errors.Wrapf(err, "create table for %T", model)
		}
	}
	return nil
}

// Close releases the database handle and flushes the logger. It is safe
// to call more than once.
func (c *Container) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if c.db != nil {
			err = c.db.Close()
		}
		_ = c.logger.Sync()
	})
	return err
}

// NewStore returns the store for T on the configured backend: a bun
// store over mapper when a database is open, otherwise an in-memory
// store keyed by mapper.PrimaryKey and built with memOpts. With caching
// enabled the store is wrapped in a read-through cache. Bun stores for the
// same T share a table and so share the cache namespace. Every memory store
// is its own dataset and gets a namespace of its own.
//
// Go methods cannot have type parameters, so this is a package-level function.
func NewStore[T any, R any, PK comparable](c *Container, mapper bunstore.Mapper[T, R, PK], memOpts ...memory.Option[T, PK]) repository.Store[T, PK] {
	var store repository.Store[T, PK]
	if c.db != nil {
		store = bunstore.New(c.db, mapper)
	} else {
		store = memory.New(mapper.PrimaryKey, memOpts...)
	}

	if c.cacheService != nil {
		opts := []repositorycache.Option{repositorycache.WithLogger(c.logger)}
		if c.db == nil {
			ns := fmt.Sprintf("%s_%d", repositorycache.Namespace[T](), c.memStores.Add(1))
			opts = append(opts, repositorycache.WithNamespace(ns))
		}
		store = repositorycache.New(store, c.cacheService, mapper.PrimaryKey, opts...)
	}
	return store
}

// NewDefaultRepository returns a repository for entities whose identity is
// their storage key.
func NewDefaultRepository[T any, R any, ID comparable](c *Container, mapper bunstore.Mapper[T, R, ID], memOpts ...memory.Option[T, ID]) *repository.Default[T, ID] {
	return repository.NewDefault(NewStore(c, mapper, memOpts...), repository.WithLogger(c.logger))
}

// NewRepository returns a repository over store that maps identities to
// keys with resolve.
func NewRepository[T any, ID any, PK any](c *Container, store repository.Store[T, PK], resolve repository.Resolver[ID, PK]) *repository.Base[T, ID, PK] {
	return repository.New(store, resolve, repository.WithLogger(c.logger))
}
