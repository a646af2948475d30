// Package memory implementa los puertos de persistencia en memoria (STORAGE_DRIVER=memory).
// Mismas semánticas que el driver PostgreSQL: los listados se evalúan con query.Apply y los
// registros se copian al entrar y al salir para no compartir mapas con el llamador.
package memory

import (
	"sync"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// Store estado compartido por todos los repositorios en memoria.
type Store struct {
	mu  sync.RWMutex
	seq int64

	records   map[string]*entity.Record // por id
	users     map[string]*entity.User
	barcodes  map[string]*entity.Barcode
	inventory map[string]*entity.Inventory
	items     map[string][]*entity.InventoryItem // por inventory id, en orden de alta

	// txMu serializa las transacciones de inventario (equivalente al bloqueo de fila).
	txMu sync.Mutex
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		records:   map[string]*entity.Record{},
		users:     map[string]*entity.User{},
		barcodes:  map[string]*entity.Barcode{},
		inventory: map[string]*entity.Inventory{},
		items:     map[string][]*entity.InventoryItem{},
	}
}

// nextSeq debe llamarse con mu tomado en escritura.
func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}
