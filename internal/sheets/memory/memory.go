// Package memory is an in-memory payment mirror used in tests and when no
// spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"mensalidades/internal/core"
)

type Store struct {
	mu   sync.Mutex
	rows []core.Payment
}

func New() *Store {
	return &Store{}
}

// AppendPayment stores the payment and returns a synthetic row reference.
func (s *Store) AppendPayment(_ context.Context, p core.Payment) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, p)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of the mirrored payments in append order.
func (s *Store) Rows() []core.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Payment, len(s.rows))
	copy(out, s.rows)
	return out
}
