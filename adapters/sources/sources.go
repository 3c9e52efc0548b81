// Package sources builds the configured catalog and snapshot providers.
package sources

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"isp-billing/adapters/file"
	"isp-billing/adapters/postgres"
	"isp-billing/core/catalog"
	"isp-billing/core/snapshot"
	"isp-billing/internal/config"
	"isp-billing/internal/errors"
	"isp-billing/internal/logging"
)

// Set holds the providers built from configuration. A nil provider means
// the source is not configured.
type Set struct {
	Catalog   catalog.Provider
	Snapshots snapshot.Provider

	pools map[string]*sql.DB
}

// Open builds providers for cfg. PostgreSQL sources with the same DSN share
// one connection pool.
func Open(ctx context.Context, cfg *config.Config) (*Set, error) {
	s := &Set{pools: make(map[string]*sql.DB)}
	log := logging.Named("sources")

	switch cfg.Catalog.Source {
	case "":
	case config.SourceFile:
		s.Catalog = file.NewCatalogProvider(cfg.Catalog.Path)
	case config.SourcePostgres:
		db, err := s.pool(ctx, cfg.Catalog.DSN)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Catalog = postgres.NewCatalogProvider(db)
	default:
		return nil, errors.Newf(errors.TypeConfig, "unknown catalog source %q", cfg.Catalog.Source)
	}

	switch cfg.Snapshots.Source {
	case "":
	case config.SourceFile:
		s.Snapshots = file.NewSnapshotProvider(cfg.Snapshots.Path)
	case config.SourcePostgres:
		db, err := s.pool(ctx, cfg.Snapshots.DSN)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Snapshots = postgres.NewSnapshotProvider(db)
	default:
		s.Close()
		return nil, errors.Newf(errors.TypeConfig, "unknown snapshot source %q", cfg.Snapshots.Source)
	}

	log.Debug("providers ready",
		zap.String("catalog", cfg.Catalog.Source),
		zap.String("snapshots", cfg.Snapshots.Source),
		zap.Int("pools", len(s.pools)))
	return s, nil
}

func (s *Set) pool(ctx context.Context, dsn string) (*sql.DB, error) {
	if db, ok := s.pools[dsn]; ok {
		return db, nil
	}
	db, err := postgres.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	s.pools[dsn] = db
	return db, nil
}

// Close releases database pools
func (s *Set) Close() error {
	var first error
	for dsn, db := range s.pools {
		if err := db.Close(); err != nil && first == nil {
			first = err
		}
		delete(s.pools, dsn)
	}
	return first
}
