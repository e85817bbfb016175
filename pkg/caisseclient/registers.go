package caisseclient

import (
	"context"
	"sync"
)

// RegisterLister is the part of Client that RegisterBook needs.
type RegisterLister interface {
	ListCaisses(ctx context.Context) ([]CashRegister, error)
}

// RegisterBook holds the last fetched list of registers.
type RegisterBook struct {
	client RegisterLister

	mu        sync.RWMutex
	registers []CashRegister
	err       error
}

func NewRegisterBook(client RegisterLister) *RegisterBook {
	return &RegisterBook{client: client}
}

// Refresh re-fetches the list. On failure the held list is cleared and the error kept.
func (b *RegisterBook) Refresh(ctx context.Context) error {
	registers, err := b.client.ListCaisses(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.registers = nil
		b.err = err
		return err
	}
	b.registers = registers
	b.err = nil
	return nil
}

// Registers returns a copy of the held list.
func (b *RegisterBook) Registers() []CashRegister {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]CashRegister(nil), b.registers...)
}

// Find looks a register up by id in the held list.
func (b *RegisterBook) Find(caisseID int64) (CashRegister, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, r := range b.registers {
		if r.ID == caisseID {
			return r, true
		}
	}
	return CashRegister{}, false
}

// Err is the error of the last refresh, if it failed.
func (b *RegisterBook) Err() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.err
}
