// Package stores abre los adaptadores de persistencia según STORAGE_DRIVER y el store de
// refresh tokens según REDIS_ADDR.
package stores

import (
	"context"
	"fmt"

	"github.com/jhoicas/backoffice-api/internal/application/auth"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/cache"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/memory"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/postgres"
	"github.com/jhoicas/backoffice-api/pkg/config"
)

// Stores repositorios de un mismo driver. Close libera conexiones.
type Stores struct {
	Driver      string
	Resources   repository.ResourceRepository
	Users       repository.UserRepository
	Barcodes    repository.BarcodeRepository
	Inventories repository.InventoryRepository
	Tx          inventory.TxRunner
	Close       func()
}

// Open construye los repositorios del driver configurado. Con postgres aplica el DDL idempotente.
func Open(ctx context.Context, cfg config.Config) (*Stores, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		s := memory.NewStore()
		return &Stores{
			Driver:      config.DriverMemory,
			Resources:   memory.NewResourceRepository(s),
			Users:       memory.NewUserRepository(s),
			Barcodes:    memory.NewBarcodeRepository(s),
			Inventories: memory.NewInventoryRepository(s),
			Tx:          memory.NewTxRunner(s),
			Close:       func() {},
		}, nil
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("stores: postgres: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("stores: esquema: %w", err)
		}
		return &Stores{
			Driver:      config.DriverPostgres,
			Resources:   postgres.NewResourceRepository(pool),
			Users:       postgres.NewUserRepository(pool),
			Barcodes:    postgres.NewBarcodeRepository(pool),
			Inventories: postgres.NewInventoryRepository(pool),
			Tx:          postgres.NewTxRunner(pool),
			Close:       pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("stores: driver desconocido %q", cfg.Storage.Driver)
}

// RefreshStore usa Redis si hay dirección configurada; sin ella, un store en memoria del proceso.
func RefreshStore(ctx context.Context, cfg config.RedisConfig) (auth.RefreshStore, func(), error) {
	if cfg.Addr == "" {
		return memory.NewRefreshStore(), func() {}, nil
	}
	client, err := cache.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cache.NewRefreshStore(client), func() { _ = client.Close() }, nil
}
