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

const outgoingPaymentStoreDir = "outgoing_payments"

type outgoingPaymentRepository struct {
	store *badgerhold.Store
}

func NewOutgoingPaymentRepository(
	config ...interface{},
) (domain.OutgoingPaymentRepository, error) {
	dir, logger, err := parseConfig(outgoingPaymentStoreDir, config...)
	if err != nil {
		return nil, err
	}

	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open outgoing payment store: %s", err)
	}
	return &outgoingPaymentRepository{store}, nil
}

func (r *outgoingPaymentRepository) Upsert(
	ctx context.Context, payment domain.OutgoingPayment,
) error {
	if err := r.store.Upsert(payment.ContractId, &payment); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			attempts := 1
			for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
				time.Sleep(100 * time.Millisecond)
				err = r.store.Upsert(payment.ContractId, &payment)
				attempts++
			}
		}
		return err
	}
	return nil
}

func (r *outgoingPaymentRepository) Get(
	ctx context.Context, contractId string,
) (*domain.OutgoingPayment, error) {
	var payment domain.OutgoingPayment
	err := r.store.Get(contractId, &payment)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outgoing payment: %w", err)
	}
	return &payment, nil
}

func (r *outgoingPaymentRepository) Close() {
	r.store.Close()
}
