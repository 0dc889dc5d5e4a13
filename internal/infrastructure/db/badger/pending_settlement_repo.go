package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ark-network/ln-gateway/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

const pendingSettlementStoreDir = "pending_settlements"

type pendingSettlementRepository struct {
	store *badgerhold.Store
}

// NewPendingSettlementRepository expects the base directory, empty for an
// in-memory store, and an optional badger logger.
func NewPendingSettlementRepository(
	config ...interface{},
) (domain.PendingSettlementRepository, error) {
	dir, logger, err := parseConfig(pendingSettlementStoreDir, config...)
	if err != nil {
		return nil, err
	}

	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open pending settlement store: %s", err)
	}
	return &pendingSettlementRepository{store}, nil
}

func (r *pendingSettlementRepository) Add(
	ctx context.Context, settlement domain.PendingSettlement,
) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		err = r.store.Upsert(settlement.PaymentHash, settlement)
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if err != nil {
		return fmt.Errorf("failed to add pending settlement: %w", err)
	}
	return nil
}

func (r *pendingSettlementRepository) Get(
	ctx context.Context, paymentHash string,
) (*domain.PendingSettlement, error) {
	var settlement domain.PendingSettlement
	err := r.store.Get(paymentHash, &settlement)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending settlement: %w", err)
	}
	return &settlement, nil
}

func (r *pendingSettlementRepository) GetAll(
	ctx context.Context,
) ([]domain.PendingSettlement, error) {
	settlements := make([]domain.PendingSettlement, 0)
	query := badgerhold.Where("CreatedAt").Ge(int64(0)).SortBy("CreatedAt")
	if err := r.store.Find(&settlements, query); err != nil {
		return nil, fmt.Errorf("failed to get pending settlements: %w", err)
	}
	return settlements, nil
}

func (r *pendingSettlementRepository) Delete(
	ctx context.Context, paymentHash string,
) error {
	err := r.store.Delete(paymentHash, domain.PendingSettlement{})
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete pending settlement: %w", err)
	}
	return nil
}

func (r *pendingSettlementRepository) Close() {
	r.store.Close()
}
