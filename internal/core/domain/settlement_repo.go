package domain

import "context"

type PendingSettlementRepository interface {
	Add(ctx context.Context, settlement PendingSettlement) error
	// Get returns nil if no settlement is pending for the given payment hash.
	Get(ctx context.Context, paymentHash string) (*PendingSettlement, error)
	GetAll(ctx context.Context) ([]PendingSettlement, error)
	Delete(ctx context.Context, paymentHash string) error
	Close()
}

type OutgoingPaymentRepository interface {
	Upsert(ctx context.Context, payment OutgoingPayment) error
	Get(ctx context.Context, contractId string) (*OutgoingPayment, error)
	Close()
}
