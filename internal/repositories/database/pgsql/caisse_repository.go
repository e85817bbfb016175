package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/phone_store_caisse/internal/apperrors"
	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
	portsrepo "github.com/SscSPs/phone_store_caisse/internal/core/ports/repositories"
	"github.com/SscSPs/phone_store_caisse/internal/models"
	"github.com/SscSPs/phone_store_caisse/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const caisseColumns = `caisse_id, name, current_balance, last_updated, created_at`

type PgxCaisseRepository struct {
	BaseRepository
}

// newPgxCaisseRepository creates a new repository for register data.
func newPgxCaisseRepository(pool *pgxpool.Pool) *PgxCaisseRepository {
	return &PgxCaisseRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CaisseRepositoryFacade = (*PgxCaisseRepository)(nil)

func scanCaisse(row pgx.Row) (models.Caisse, error) {
	var m models.Caisse
	err := row.Scan(&m.CaisseID, &m.Name, &m.CurrentBalance, &m.LastUpdated, &m.CreatedAt)
	return m, err
}

// SaveCaisse inserts a register with a zero balance.
func (r *PgxCaisseRepository) SaveCaisse(ctx context.Context, caisse domain.CashRegister) (*domain.CashRegister, error) {
	query := `
		INSERT INTO caisses (name, current_balance, last_updated, created_at)
		VALUES ($1, 0, $2, $2)
		RETURNING ` + caisseColumns
	m, err := scanCaisse(r.Pool.QueryRow(ctx, query, caisse.Name, caisse.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to save caisse %q: %w", caisse.Name, err)
	}
	saved := mapping.ToDomainCaisse(m)
	return &saved, nil
}

// FindCaisseByID retrieves a register by its ID.
func (r *PgxCaisseRepository) FindCaisseByID(ctx context.Context, caisseID int64) (*domain.CashRegister, error) {
	query := `SELECT ` + caisseColumns + ` FROM caisses WHERE caisse_id = $1`
	m, err := scanCaisse(r.Pool.QueryRow(ctx, query, caisseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: caisse %d", apperrors.ErrNotFound, caisseID)
		}
		return nil, fmt.Errorf("failed to find caisse %d: %w", caisseID, err)
	}
	c := mapping.ToDomainCaisse(m)
	return &c, nil
}

// ListCaisses retrieves every register ordered by id.
func (r *PgxCaisseRepository) ListCaisses(ctx context.Context) ([]domain.CashRegister, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+caisseColumns+` FROM caisses ORDER BY caisse_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list caisses: %w", err)
	}
	defer rows.Close()

	caisses := []domain.CashRegister{}
	for rows.Next() {
		m, err := scanCaisse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan caisse row: %w", err)
		}
		caisses = append(caisses, mapping.ToDomainCaisse(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating caisse rows: %w", err)
	}
	return caisses, nil
}
