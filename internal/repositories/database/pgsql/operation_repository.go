package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/phone_store_caisse/internal/apperrors"
	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
	portsrepo "github.com/SscSPs/phone_store_caisse/internal/core/ports/repositories"
	"github.com/SscSPs/phone_store_caisse/internal/models"
	"github.com/SscSPs/phone_store_caisse/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const operationColumns = `o.operation_id, o.caisse_id, o.operation_type, o.amount, o.balance_after,
	o.description, o.reference_id, o.performed_by, u.username, o.occurred_at`

type PgxOperationRepository struct {
	BaseRepository
}

// newPgxOperationRepository creates a new repository for the caisse ledger.
func newPgxOperationRepository(pool *pgxpool.Pool) *PgxOperationRepository {
	return &PgxOperationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.OperationRepositoryFacade = (*PgxOperationRepository)(nil)

// ApplyOperation moves the balance with a guarded UPDATE and appends the operation in
// the same transaction. The UPDATE takes the row lock, so concurrent mutations on one
// register queue behind each other and each sees the balance the previous one left.
func (r *PgxOperationRepository) ApplyOperation(ctx context.Context, op domain.Operation, allowNegative bool) (*domain.MutationResult, error) {
	var result *domain.MutationResult
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		updateQuery := `
			UPDATE caisses
			SET current_balance = current_balance + $2, last_updated = clock_timestamp()
			WHERE caisse_id = $1 AND ($3::boolean OR current_balance + $2 >= 0)
			RETURNING ` + caisseColumns
		caisseRow, err := scanCaisse(tx.QueryRow(ctx, updateQuery, op.CaisseID, op.Amount, allowNegative))
		if errors.Is(err, pgx.ErrNoRows) {
			return r.explainRejectedUpdate(ctx, tx, op)
		}
		if err != nil {
			return fmt.Errorf("failed to update balance of caisse %d: %w", op.CaisseID, err)
		}

		m := mapping.ToModelOperation(op)
		m.BalanceAfter = caisseRow.CurrentBalance
		m.OccurredAt = caisseRow.LastUpdated
		insertQuery := `
			INSERT INTO caisse_operations (caisse_id, operation_type, amount, balance_after, description, reference_id, performed_by, occurred_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING operation_id`
		err = tx.QueryRow(ctx, insertQuery,
			m.CaisseID,
			m.OperationType,
			m.Amount,
			m.BalanceAfter,
			m.Description,
			m.ReferenceID,
			m.PerformedBy,
			m.OccurredAt,
		).Scan(&m.OperationID)
		if err != nil {
			return fmt.Errorf("failed to insert %s operation for caisse %d: %w", m.OperationType, m.CaisseID, err)
		}

		result = &domain.MutationResult{
			Caisse:    mapping.ToDomainCaisse(caisseRow),
			Operation: mapping.ToDomainOperation(m),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// explainRejectedUpdate tells a missing register apart from an overdraw.
func (r *PgxOperationRepository) explainRejectedUpdate(ctx context.Context, tx pgx.Tx, op domain.Operation) error {
	var balance decimal.Decimal
	err := tx.QueryRow(ctx, `SELECT current_balance FROM caisses WHERE caisse_id = $1`, op.CaisseID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: caisse %d", apperrors.ErrNotFound, op.CaisseID)
	}
	if err != nil {
		return fmt.Errorf("failed to read balance of caisse %d: %w", op.CaisseID, err)
	}
	return fmt.Errorf("%w: balance %s, requested %s", apperrors.ErrInsufficientFunds, balance.StringFixed(2), op.Amount.Abs().StringFixed(2))
}

// buildOperationWhere renders the WHERE clause for filter, numbering placeholders from 1.
func buildOperationWhere(filter domain.OperationFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(args))))
	}

	if filter.CaisseID != nil {
		add("o.caisse_id = ?", *filter.CaisseID)
	}
	if filter.OperationType != nil {
		add("o.operation_type = ?", string(*filter.OperationType))
	}
	if filter.StartDate != nil {
		add("o.occurred_at >= ?", *filter.StartDate)
	}
	switch {
	case filter.EndDate != nil && filter.EndExclusive:
		add("o.occurred_at < ?", *filter.EndDate)
	case filter.EndDate != nil:
		add("o.occurred_at <= ?", *filter.EndDate)
	}
	if filter.Search != "" {
		add("(u.username ILIKE ? OR o.description ILIKE ?)", "%"+escapeLike(filter.Search)+"%")
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ListOperations returns a window of matching operations, newest first, plus the match count.
func (r *PgxOperationRepository) ListOperations(ctx context.Context, filter domain.OperationFilter, limit int, offset int) ([]domain.Operation, int64, error) {
	where, args := buildOperationWhere(filter)
	from := `FROM caisse_operations o LEFT JOIN users u ON u.user_id = o.performed_by `

	var count int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) `+from+where, args...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("failed to count operations: %w", err)
	}
	if count == 0 || offset >= int(count) {
		return []domain.Operation{}, count, nil
	}

	query := fmt.Sprintf(`SELECT %s %s%s ORDER BY o.occurred_at DESC, o.operation_id DESC LIMIT $%d OFFSET $%d`,
		operationColumns, from, where, len(args)+1, len(args)+2)
	rows, err := r.Pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list operations: %w", err)
	}
	defer rows.Close()

	ops := make([]domain.Operation, 0, limit)
	for rows.Next() {
		var m models.CaisseOperation
		if err := rows.Scan(
			&m.OperationID,
			&m.CaisseID,
			&m.OperationType,
			&m.Amount,
			&m.BalanceAfter,
			&m.Description,
			&m.ReferenceID,
			&m.PerformedBy,
			&m.Username,
			&m.OccurredAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan operation row: %w", err)
		}
		ops = append(ops, mapping.ToDomainOperation(m))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating operation rows: %w", err)
	}
	return ops, count, nil
}

// SumOperationsByType aggregates one register's ledger per operation type.
func (r *PgxOperationRepository) SumOperationsByType(ctx context.Context, caisseID int64, from, to *time.Time) ([]domain.TypeTotal, error) {
	query := `
		SELECT operation_type,
		       COUNT(*),
		       COALESCE(SUM(amount) FILTER (WHERE amount > 0), 0),
		       COALESCE(-SUM(amount) FILTER (WHERE amount < 0), 0)
		FROM caisse_operations
		WHERE caisse_id = $1
		  AND ($2::timestamptz IS NULL OR occurred_at >= $2)
		  AND ($3::timestamptz IS NULL OR occurred_at <= $3)
		GROUP BY operation_type`
	rows, err := r.Pool.Query(ctx, query, caisseID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise caisse %d: %w", caisseID, err)
	}
	defer rows.Close()

	totals := []domain.TypeTotal{}
	for rows.Next() {
		var t domain.TypeTotal
		var typ string
		if err := rows.Scan(&typ, &t.Count, &t.Inflow, &t.Outflow); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		t.OperationType = domain.OperationType(typ)
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary rows: %w", err)
	}
	return totals, nil
}
