// Package ledger implements the expense lifecycle and the debt query surface.
//
// Every exported operation runs in exactly one storage unit of work: the reads
// of membership and existing debts, the reconciliation writes and the group
// aggregate update either all commit or none do.
package ledger

import (
	"time"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Errors returned by Ledger operations. Test with errors.Is.
var (
	ErrNotFound     = storage.ErrNotFound
	ErrConflict     = storage.ErrConflict
	ErrInvalidState = calculator.ErrInvalidState
)

// Ledger coordinates groups, expenses and the pairwise debt ledger on top of a Store.
type Ledger struct {
	store storage.Store
	now   func() time.Time
}

// New creates a Ledger backed by store.
func New(store storage.Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

func derefDebts(debts []*models.Debt) []models.Debt {
	out := make([]models.Debt, len(debts))
	for i, d := range debts {
		out[i] = *d
	}
	return out
}
