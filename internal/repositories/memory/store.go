// Package memory is a process-local implementation of the repository ports. It backs
// STORE_DRIVER=memory and the handler tests.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/phone_store_caisse/internal/apperrors"
	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
	portsrepo "github.com/SscSPs/phone_store_caisse/internal/core/ports/repositories"
)

// Store holds every table behind one mutex.
type Store struct {
	mu           sync.RWMutex
	caisses      map[int64]*domain.CashRegister
	operations   []domain.Operation // append-only, in id order
	users        map[string]*domain.User
	nextCaisseID int64
	nextOpID     int64
	now          func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, for deterministic timestamps in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		caisses: make(map[int64]*domain.CashRegister),
		users:   make(map[string]*domain.User),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRepositoryProvider exposes s through the repository ports.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		CaisseRepo:    s,
		OperationRepo: s,
		UserRepo:      s,
	}
}

var (
	_ portsrepo.CaisseRepositoryFacade    = (*Store)(nil)
	_ portsrepo.OperationRepositoryFacade = (*Store)(nil)
	_ portsrepo.UserRepositoryFacade      = (*Store)(nil)
)

func (s *Store) SaveCaisse(_ context.Context, caisse domain.CashRegister) (*domain.CashRegister, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextCaisseID++
	now := s.now()
	c := &domain.CashRegister{
		CaisseID:    s.nextCaisseID,
		Name:        caisse.Name,
		LastUpdated: now,
		CreatedAt:   now,
	}
	s.caisses[c.CaisseID] = c
	out := *c
	return &out, nil
}

func (s *Store) FindCaisseByID(_ context.Context, caisseID int64) (*domain.CashRegister, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.caisses[caisseID]
	if !ok {
		return nil, fmt.Errorf("%w: caisse %d", apperrors.ErrNotFound, caisseID)
	}
	out := *c
	return &out, nil
}

func (s *Store) ListCaisses(_ context.Context) ([]domain.CashRegister, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CashRegister, 0, len(s.caisses))
	for _, c := range s.caisses {
		out = append(out, *c)
	}
	slices.SortFunc(out, func(a, b domain.CashRegister) int { return cmp.Compare(a.CaisseID, b.CaisseID) })
	return out, nil
}

// ApplyOperation checks and moves the balance and appends op under the write lock.
func (s *Store) ApplyOperation(_ context.Context, op domain.Operation, allowNegative bool) (*domain.MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.caisses[op.CaisseID]
	if !ok {
		return nil, fmt.Errorf("%w: caisse %d", apperrors.ErrNotFound, op.CaisseID)
	}
	next := c.CurrentBalance.Add(op.Amount)
	if !allowNegative && next.IsNegative() {
		return nil, fmt.Errorf("%w: balance %s, requested %s", apperrors.ErrInsufficientFunds, c.CurrentBalance.StringFixed(2), op.Amount.Abs().StringFixed(2))
	}

	now := s.now()
	c.CurrentBalance = next
	c.LastUpdated = now

	s.nextOpID++
	op.OperationID = s.nextOpID
	op.BalanceAfter = next
	op.Timestamp = now
	op.PerformedByUsername = ""
	s.operations = append(s.operations, op)

	return &domain.MutationResult{Caisse: *c, Operation: s.withUsername(op)}, nil
}

func (s *Store) withUsername(op domain.Operation) domain.Operation {
	if op.PerformedBy != nil {
		if u, ok := s.users[*op.PerformedBy]; ok {
			op.PerformedByUsername = u.Username
		}
	}
	return op
}

func (s *Store) matches(op domain.Operation, f domain.OperationFilter) bool {
	if f.CaisseID != nil && op.CaisseID != *f.CaisseID {
		return false
	}
	if f.OperationType != nil && op.OperationType != *f.OperationType {
		return false
	}
	if f.StartDate != nil && op.Timestamp.Before(*f.StartDate) {
		return false
	}
	if !f.BeforeEnd(op.Timestamp) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(op.PerformedByUsername), needle) &&
			!strings.Contains(strings.ToLower(op.Description), needle) {
			return false
		}
	}
	return true
}

func (s *Store) ListOperations(_ context.Context, filter domain.OperationFilter, limit int, offset int) ([]domain.Operation, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.Operation
	for _, op := range s.operations {
		op = s.withUsername(op)
		if s.matches(op, filter) {
			matched = append(matched, op)
		}
	}
	slices.SortFunc(matched, func(a, b domain.Operation) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(b.OperationID, a.OperationID)
	})

	count := int64(len(matched))
	if offset >= len(matched) {
		return []domain.Operation{}, count, nil
	}
	end := min(offset+limit, len(matched))
	return slices.Clone(matched[offset:end]), count, nil
}

func (s *Store) SumOperationsByType(_ context.Context, caisseID int64, from, to *time.Time) ([]domain.TypeTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filter := domain.OperationFilter{CaisseID: &caisseID, StartDate: from, EndDate: to}
	byType := make(map[domain.OperationType]*domain.TypeTotal)
	for _, op := range s.operations {
		if !s.matches(op, filter) {
			continue
		}
		t, ok := byType[op.OperationType]
		if !ok {
			t = &domain.TypeTotal{OperationType: op.OperationType}
			byType[op.OperationType] = t
		}
		t.Count++
		if op.Amount.IsPositive() {
			t.Inflow = t.Inflow.Add(op.Amount)
		} else {
			t.Outflow = t.Outflow.Add(op.Amount.Neg())
		}
	}

	totals := make([]domain.TypeTotal, 0, len(byType))
	for _, typ := range domain.OperationTypes {
		if t, ok := byType[typ]; ok {
			totals = append(totals, *t)
		}
	}
	return totals, nil
}

func (s *Store) SaveUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return fmt.Errorf("%w: username %s is taken", apperrors.ErrDuplicate, user.Username)
		}
	}
	u := user
	s.users[u.UserID] = &u
	return nil
}

func (s *Store) UpdateUserPassword(_ context.Context, userID string, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("%w: user %s", apperrors.ErrNotFound, userID)
	}
	u.PasswordHash = passwordHash
	return nil
}

func (s *Store) FindUserByID(_ context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, userID)
	}
	out := *u
	return &out, nil
}

func (s *Store) FindUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, username)
}
