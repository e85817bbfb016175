package mapping

import (
	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
	"github.com/SscSPs/phone_store_caisse/internal/models"
)

// ToDomainCaisse converts a caisses row to domain.CashRegister
func ToDomainCaisse(m models.Caisse) domain.CashRegister {
	return domain.CashRegister{
		CaisseID:       m.CaisseID,
		Name:           m.Name,
		CurrentBalance: m.CurrentBalance,
		LastUpdated:    m.LastUpdated,
		CreatedAt:      m.CreatedAt,
	}
}

// ToDomainOperation converts a caisse_operations row to domain.Operation
func ToDomainOperation(m models.CaisseOperation) domain.Operation {
	op := domain.Operation{
		OperationID:   m.OperationID,
		CaisseID:      m.CaisseID,
		OperationType: domain.OperationType(m.OperationType),
		Amount:        m.Amount,
		BalanceAfter:  m.BalanceAfter,
		Description:   m.Description,
		ReferenceID:   m.ReferenceID,
		PerformedBy:   m.PerformedBy,
		Timestamp:     m.OccurredAt,
	}
	if m.Username != nil {
		op.PerformedByUsername = *m.Username
	}
	return op
}

// ToModelOperation converts a domain.Operation to a caisse_operations row
func ToModelOperation(d domain.Operation) models.CaisseOperation {
	return models.CaisseOperation{
		OperationID:   d.OperationID,
		CaisseID:      d.CaisseID,
		OperationType: string(d.OperationType),
		Amount:        d.Amount,
		BalanceAfter:  d.BalanceAfter,
		Description:   d.Description,
		ReferenceID:   d.ReferenceID,
		PerformedBy:   d.PerformedBy,
		OccurredAt:    d.Timestamp,
	}
}
