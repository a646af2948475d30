package memory

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

// TxRunner serializa las operaciones de inventario bajo un mutex del store.
// No hay rollback: las operaciones validan el estado antes de escribir.
type TxRunner struct {
	s    *Store
	repo *InventoryRepo
}

// NewTxRunner construye el runner.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s, repo: NewInventoryRepository(s)}
}

// Run ejecuta fn con acceso exclusivo al inventario.
func (t *TxRunner) Run(ctx context.Context, fn func(repo repository.InventoryRepository) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(t.repo)
}
