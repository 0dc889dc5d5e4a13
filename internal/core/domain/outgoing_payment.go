package domain

import (
	"time"

	"github.com/btcsuite/btcd/wire"
)

type OutgoingPaymentStatus int

const (
	OutgoingPaymentPending OutgoingPaymentStatus = iota
	OutgoingPaymentClaimed
	OutgoingPaymentAborted
	OutgoingPaymentCancelled
)

func (s OutgoingPaymentStatus) String() string {
	switch s {
	case OutgoingPaymentPending:
		return "pending"
	case OutgoingPaymentClaimed:
		return "claimed"
	case OutgoingPaymentAborted:
		return "aborted"
	case OutgoingPaymentCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// OutgoingPayment is the gateway's own record of an invoice paid on behalf of
// an outgoing contract.
type OutgoingPayment struct {
	ContractId    string
	PaymentHash   string
	InvoiceAmount Amount
	Internal      bool
	Status        OutgoingPaymentStatus
	ClaimOutPoint string
	FailureReason string
	CreatedAt     int64
	UpdatedAt     int64
}

func NewOutgoingPayment(
	contractId ContractId, params PaymentParameters, internal bool,
) OutgoingPayment {
	now := time.Now().Unix()
	return OutgoingPayment{
		ContractId:    contractId.String(),
		PaymentHash:   params.PaymentHash.String(),
		InvoiceAmount: params.InvoiceAmount,
		Internal:      internal,
		Status:        OutgoingPaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (p *OutgoingPayment) Claim(outpoint wire.OutPoint) {
	p.Status = OutgoingPaymentClaimed
	p.ClaimOutPoint = outpoint.String()
	p.UpdatedAt = time.Now().Unix()
}

func (p *OutgoingPayment) Abort(reason error) {
	p.fail(OutgoingPaymentAborted, reason)
}

func (p *OutgoingPayment) Cancel(reason error) {
	p.fail(OutgoingPaymentCancelled, reason)
}

func (p *OutgoingPayment) IsFinal() bool {
	return p.Status != OutgoingPaymentPending
}

func (p *OutgoingPayment) fail(status OutgoingPaymentStatus, reason error) {
	p.Status = status
	if reason != nil {
		p.FailureReason = reason.Error()
	}
	p.UpdatedAt = time.Now().Unix()
}
