package domain

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/lntypes"
	"github.com/lightningnetwork/lnd/lnwallet/chainfee"
)

type OutgoingContract struct {
	Hash       lntypes.Hash
	GatewayKey *btcec.PublicKey
	UserKey    *btcec.PublicKey
	Timelock   uint32
	Invoice    string
	Cancelled  bool
}

type OutgoingContractAccount struct {
	ContractId ContractId
	Amount     Amount
	Contract   OutgoingContract
}

// PaymentParameters are the bounds within which an outgoing contract can be
// paid, as returned by the federation after validating the contract account.
type PaymentParameters struct {
	PaymentHash   lntypes.Hash
	InvoiceAmount Amount
	MaxSendAmount Amount
	MaxDelay      uint64
	MaybeInternal bool
}

// MaxFeePercent returns the maximum routing fee the contract can afford,
// expressed as a fraction of the invoice amount.
func (p PaymentParameters) MaxFeePercent() float64 {
	if p.InvoiceAmount == 0 || p.MaxSendAmount <= p.InvoiceAmount {
		return 0
	}
	maxFee := p.MaxSendAmount - p.InvoiceAmount
	return float64(maxFee) / float64(p.InvoiceAmount)
}

type PegOutFees struct {
	FeeRate     chainfee.SatPerKWeight
	TotalWeight int64
}

func (f PegOutFees) Amount() btcutil.Amount {
	return btcutil.Amount(int64(f.FeeRate) * f.TotalWeight / 1000)
}

type PegOut struct {
	Recipient btcutil.Address
	Amount    btcutil.Amount
	Fees      PegOutFees
}
