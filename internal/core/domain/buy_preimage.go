package domain

import (
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/lntypes"
)

// BuyPreimage is the intermediate result of acquiring a preimage: either an
// escrow waiting for the federation to decrypt it (InternalPreimage) or a
// preimage already obtained by paying over lightning (ExternalPreimage).
type BuyPreimage interface {
	isBuyPreimage()
}

type InternalPreimage struct {
	OutPoint   wire.OutPoint
	ContractId ContractId
}

type ExternalPreimage struct {
	Preimage lntypes.Preimage
}

func (InternalPreimage) isBuyPreimage() {}
func (ExternalPreimage) isBuyPreimage() {}
