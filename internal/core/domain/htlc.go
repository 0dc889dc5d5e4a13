package domain

import (
	"fmt"

	"github.com/lightningnetwork/lnd/lntypes"
)

// HtlcId is the identifier assigned by the lightning node to an intercepted
// htlc, ie. the incoming circuit key.
type HtlcId struct {
	ChanId uint64
	HtlcId uint64
}

func (h HtlcId) String() string {
	return fmt.Sprintf("%d:%d", h.ChanId, h.HtlcId)
}

type InterceptedHtlc struct {
	Id                 HtlcId
	PaymentHash        []byte
	OutgoingAmountMsat uint64
	ShortChannelId     uint64
}

func (h InterceptedHtlc) ParsePaymentHash() (lntypes.Hash, error) {
	hash, err := lntypes.MakeHash(h.PaymentHash)
	if err != nil {
		return lntypes.Hash{}, fmt.Errorf("failed to parse payment hash: %w", err)
	}
	return hash, nil
}

func (h InterceptedHtlc) Amount() Amount {
	return Amount(h.OutgoingAmountMsat)
}

// HtlcAction is the outcome sent back to the node for an intercepted htlc.
// It's either a SettleAction or a CancelAction.
type HtlcAction interface {
	isHtlcAction()
}

type SettleAction struct {
	Preimage lntypes.Preimage
}

type CancelAction struct {
	Reason string
}

func (SettleAction) isHtlcAction() {}
func (CancelAction) isHtlcAction() {}

type CompleteHtlcRequest struct {
	HtlcId HtlcId
	Action HtlcAction
}

func NewSettleRequest(id HtlcId, preimage lntypes.Preimage) CompleteHtlcRequest {
	return CompleteHtlcRequest{id, SettleAction{preimage}}
}

func NewCancelRequest(id HtlcId, reason string) CompleteHtlcRequest {
	return CompleteHtlcRequest{id, CancelAction{reason}}
}

type PayInvoiceRequest struct {
	Invoice       string
	MaxDelay      uint64
	MaxFeePercent float64
}

type PayInvoiceResponse struct {
	Preimage []byte
}
