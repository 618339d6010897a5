// Package mlstore persists training-run and prediction history across
// multiple database backends.
package mlstore

import (
	"sync"

	"github.com/optiscan/optiscan/internal/contract"
)

// HistoryStoreManager manages the configured HistoryStore instance.
type HistoryStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	history      contract.HistoryStore
}

var _ contract.StoreManager = &HistoryStoreManager{} // Compile-time check

// GetHistoryStore returns the history store, or nil when tracking is
// disabled.
func (mgr *HistoryStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
