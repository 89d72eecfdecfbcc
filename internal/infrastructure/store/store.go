// Package store abre el almacenamiento configurado (PostgreSQL o SQLite), aplica las
// migraciones y expone los repositorios y el TxRunner de ese backend.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/infrastructure/postgres"
	"github.com/jhoicas/almacen-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/almacen-api/pkg/config"
)

// Store repositorios fuera de transacción más el runner transaccional del backend.
type Store struct {
	Driver      string
	TxRunner    ports.TxRunner
	Ingredients repository.IngredientRepository
	Operations  repository.InventoryOperationRepository
	Requests    repository.MaterialRequestRepository

	close func()
}

// Open conecta según cfg.Store.Driver y migra el esquema.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := sqlite.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return fromSQLite(db), nil
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return fromPostgres(pool), nil
	default:
		return nil, fmt.Errorf("store: driver desconocido %q", cfg.Store.Driver)
	}
}

// Close libera las conexiones.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

func fromSQLite(db *sql.DB) *Store {
	return &Store{
		Driver:      config.DriverSQLite,
		TxRunner:    sqlite.NewTxRunner(db),
		Ingredients: sqlite.NewIngredientRepository(db),
		Operations:  sqlite.NewInventoryOperationRepository(db),
		Requests:    sqlite.NewMaterialRequestRepository(db),
		close:       func() { _ = db.Close() },
	}
}

func fromPostgres(pool *pgxpool.Pool) *Store {
	return &Store{
		Driver:      config.DriverPostgres,
		TxRunner:    postgres.NewTxRunner(pool),
		Ingredients: postgres.NewIngredientRepository(pool),
		Operations:  postgres.NewInventoryOperationRepository(pool),
		Requests:    postgres.NewMaterialRequestRepository(pool),
		close:       pool.Close,
	}
}
