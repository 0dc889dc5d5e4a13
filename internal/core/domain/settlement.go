package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lightningnetwork/lnd/lntypes"
)

// PendingSettlement tracks a preimage released by the federation that could
// not be delivered to the lightning node.
type PendingSettlement struct {
	Id          string
	HtlcId      HtlcId
	PaymentHash string
	Preimage    lntypes.Preimage
	ContractId  ContractId
	Attempts    int
	LastError   string
	Abandoned   bool
	CreatedAt   int64
	UpdatedAt   int64
}

func NewPendingSettlement(
	htlcId HtlcId, preimage lntypes.Preimage, contractId ContractId, err error,
) PendingSettlement {
	now := time.Now().Unix()
	s := PendingSettlement{
		Id:          uuid.New().String(),
		HtlcId:      htlcId,
		PaymentHash: preimage.Hash().String(),
		Preimage:    preimage,
		ContractId:  contractId,
		Attempts:    1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err != nil {
		s.LastError = err.Error()
	}
	return s
}

// RecordFailure accounts for another failed delivery attempt and marks the
// settlement as abandoned once maxAttempts is reached.
func (s *PendingSettlement) RecordFailure(err error, maxAttempts int) {
	s.Attempts++
	s.UpdatedAt = time.Now().Unix()
	if err != nil {
		s.LastError = err.Error()
	}
	if maxAttempts > 0 && s.Attempts >= maxAttempts {
		s.Abandoned = true
	}
}
