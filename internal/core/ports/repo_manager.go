package ports

import "github.com/ark-network/ln-gateway/internal/core/domain"

type RepoManager interface {
	PendingSettlements() domain.PendingSettlementRepository
	OutgoingPayments() domain.OutgoingPaymentRepository
	Close()
}
