package caisseclient

import (
	"context"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Mover is the part of Client that BalanceMutator needs.
type Mover interface {
	Deposit(ctx context.Context, caisseID int64, amount decimal.Decimal, description string) (*MutationResult, error)
	Withdraw(ctx context.Context, caisseID int64, amount decimal.Decimal, description string) (*MutationResult, error)
}

type movement struct {
	CaisseID    int64           `validate:"gt=0"`
	Amount      decimal.Decimal `validate:"gt=0"`
	Description string          `validate:"max=500"`
}

// BalanceMutator submits deposits and withdrawals, then refreshes the register list and
// the first page of operations. It never updates local state from the mutation reply.
type BalanceMutator struct {
	mover     Mover
	registers *RegisterBook
	query     *OperationsQuery
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewBalanceMutator wires a mutator. registers and query may be nil to skip the
// corresponding refresh.
func NewBalanceMutator(mover Mover, registers *RegisterBook, query *OperationsQuery, logger *slog.Logger) *BalanceMutator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return &BalanceMutator{
		mover:     mover,
		registers: registers,
		query:     query,
		validate:  v,
		logger:    logger,
	}
}

// ParseAmount reads a positive amount with at most two decimal places.
func ParseAmount(text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return decimal.Zero, validationError("amount is required")
	}
	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, validationError("amount %q is not a number", text)
	}
	if !amount.IsPositive() {
		return decimal.Zero, validationError("amount must be greater than zero")
	}
	if !amount.Equal(amount.Round(2)) {
		return decimal.Zero, validationError("amount has more than two decimal places")
	}
	return amount, nil
}

// SubmitDeposit validates amountText locally and deposits it.
func (m *BalanceMutator) SubmitDeposit(ctx context.Context, caisseID int64, amountText, description string) (*MutationResult, error) {
	mv, err := m.prepare(caisseID, amountText, description)
	if err != nil {
		return nil, err
	}
	result, err := m.mover.Deposit(ctx, mv.CaisseID, mv.Amount, mv.Description)
	if err != nil {
		return nil, err
	}
	m.refresh(ctx)
	return result, nil
}

// SubmitWithdrawal validates amountText locally, checks it against the balance last
// seen for register, and withdraws it. The balance check is advisory; the store has
// the final say.
func (m *BalanceMutator) SubmitWithdrawal(ctx context.Context, register CashRegister, amountText, description string) (*MutationResult, error) {
	mv, err := m.prepare(register.ID, amountText, description)
	if err != nil {
		return nil, err
	}
	if mv.Amount.GreaterThan(register.CurrentBalance) {
		return nil, validationError("amount %s exceeds the balance of %s", mv.Amount.StringFixed(2), register.CurrentBalance.StringFixed(2))
	}
	result, err := m.mover.Withdraw(ctx, mv.CaisseID, mv.Amount, mv.Description)
	if err != nil {
		return nil, err
	}
	m.refresh(ctx)
	return result, nil
}

func (m *BalanceMutator) prepare(caisseID int64, amountText, description string) (movement, error) {
	amount, err := ParseAmount(amountText)
	if err != nil {
		return movement{}, err
	}
	mv := movement{CaisseID: caisseID, Amount: amount, Description: strings.TrimSpace(description)}
	if err := m.validate.Struct(mv); err != nil {
		return movement{}, &Error{Kind: ValidationError, Message: err.Error(), Err: err}
	}
	return mv, nil
}

// refresh reloads dependent views. Failures are kept in those views' error state.
func (m *BalanceMutator) refresh(ctx context.Context) {
	if m.registers != nil {
		if err := m.registers.Refresh(ctx); err != nil {
			m.logger.WarnContext(ctx, "Register refresh failed after mutation", slog.String("error", err.Error()))
		}
	}
	if m.query != nil {
		if err := m.query.GoToPage(ctx, 1); err != nil {
			m.logger.WarnContext(ctx, "Operations refresh failed after mutation", slog.String("error", err.Error()))
		}
	}
}
