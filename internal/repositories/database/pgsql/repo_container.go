package pgsql

import (
	portsrepo "github.com/SscSPs/phone_store_caisse/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		CaisseRepo:    newPgxCaisseRepository(dbPool),
		OperationRepo: newPgxOperationRepository(dbPool),
		UserRepo:      newPgxUserRepository(dbPool),
	}
}
