package db

import (
	"fmt"

	"github.com/ark-network/ln-gateway/internal/core/domain"
	"github.com/ark-network/ln-gateway/internal/core/ports"
	badgerdb "github.com/ark-network/ln-gateway/internal/infrastructure/db/badger"
)

var (
	settlementStoreTypes = map[string]func(...interface{}) (domain.PendingSettlementRepository, error){
		"badger": badgerdb.NewPendingSettlementRepository,
	}
	paymentStoreTypes = map[string]func(...interface{}) (domain.OutgoingPaymentRepository, error){
		"badger": badgerdb.NewOutgoingPaymentRepository,
	}
)

type ServiceConfig struct {
	DataStoreType   string
	DataStoreConfig []interface{}
}

type service struct {
	settlementStore domain.PendingSettlementRepository
	paymentStore    domain.OutgoingPaymentRepository
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	settlementStoreFactory, ok := settlementStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}
	paymentStoreFactory, ok := paymentStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}

	settlementStore, err := settlementStoreFactory(config.DataStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pending settlement store: %w", err)
	}

	paymentStore, err := paymentStoreFactory(config.DataStoreConfig...)
	if err != nil {
		settlementStore.Close()
		return nil, fmt.Errorf("failed to create outgoing payment store: %w", err)
	}

	return &service{settlementStore, paymentStore}, nil
}

func (s *service) PendingSettlements() domain.PendingSettlementRepository {
	return s.settlementStore
}

func (s *service) OutgoingPayments() domain.OutgoingPaymentRepository {
	return s.paymentStore
}

func (s *service) Close() {
	s.settlementStore.Close()
	s.paymentStore.Close()
}
