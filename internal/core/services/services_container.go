package services

import (
	portsrepo "github.com/SscSPs/phone_store_caisse/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/phone_store_caisse/internal/core/ports/services"
	"github.com/SscSPs/phone_store_caisse/internal/platform/config"
	"github.com/SscSPs/phone_store_caisse/internal/platform/lock"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, locker lock.Locker) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Caisse: NewCaisseService(
			repos.CaisseRepo,
			repos.OperationRepo,
			WithMutationLocker(locker),
		),
		Operation: NewOperationService(
			repos.OperationRepo,
			WithExportMaxRows(cfg.ExportMaxRows),
		),
		Reporting: NewReportingService(repos.CaisseRepo, repos.OperationRepo),
		Auth: NewAuthService(repos.UserRepo, TokenSettings{
			Secret: cfg.JWTSecret,
			Expiry: cfg.JWTExpiryDuration,
			Issuer: cfg.JWTIssuer,
		}),
	}
}
