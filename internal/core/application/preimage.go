package application

import (
	"context"
	"fmt"

	"github.com/ark-network/ln-gateway/internal/core/domain"
	"github.com/ark-network/ln-gateway/internal/core/ports"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/lntypes"
	log "github.com/sirupsen/logrus"
)

// BuyPreimageFromFederation refreshes the local notes and asks the
// federation for an escrow offer of the preimage of the given hash.
func (a *Actor) BuyPreimageFromFederation(
	ctx context.Context, paymentHash lntypes.Hash, amount domain.Amount,
) (wire.OutPoint, domain.ContractId, error) {
	if err := a.client.FetchAllNotes(ctx); err != nil {
		return wire.OutPoint{}, domain.ContractId{}, err
	}

	outpoint, contractId, err := a.client.BuyPreimageOffer(ctx, paymentHash, amount)
	if err != nil {
		return wire.OutPoint{}, domain.ContractId{}, err
	}

	log.WithFields(log.Fields{
		"payment_hash": paymentHash.String(),
		"contract_id":  contractId.String(),
		"outpoint":     outpoint.String(),
	}).Debug("bought preimage offer from federation")
	return outpoint, contractId, nil
}

// BuyPreimageFromFederationAwaitDecryption waits for the federation to
// decrypt the preimage of the escrow. If decryption fails, the incoming
// contract is refunded and the decryption error is returned whatever the
// outcome of the refund.
func (a *Actor) BuyPreimageFromFederationAwaitDecryption(
	ctx context.Context, outpoint wire.OutPoint, contractId domain.ContractId,
) (lntypes.Preimage, error) {
	preimage, err := a.client.AwaitPreimageDecryption(ctx, outpoint)
	if err == nil {
		return preimage, nil
	}

	logger := log.WithField("contract_id", contractId.String())
	logger.WithError(err).Warn("failed to decrypt preimage, requesting a refund")

	if _, refundErr := a.client.RefundIncomingContract(ctx, contractId); refundErr != nil {
		logger.WithError(refundErr).Error("failed to refund incoming contract")
	}
	return lntypes.Preimage{}, err
}

// BuyPreimageOverLightning pays the invoice through the lightning node
// within the fee and delay bounds of the payment.
func (a *Actor) BuyPreimageOverLightning(
	ctx context.Context, invoice string, params domain.PaymentParameters,
) (lntypes.Preimage, error) {
	var resp *domain.PayInvoiceResponse
	if err := a.lightning.Read(func(ln ports.LightningClient) error {
		var err error
		resp, err = ln.Pay(ctx, domain.PayInvoiceRequest{
			Invoice:       invoice,
			MaxDelay:      params.MaxDelay,
			MaxFeePercent: params.MaxFeePercent(),
		})
		return err
	}); err != nil {
		return lntypes.Preimage{}, fmt.Errorf("failed to pay invoice: %w", err)
	}

	preimage, err := lntypes.MakePreimage(resp.Preimage)
	if err != nil {
		return lntypes.Preimage{}, fmt.Errorf(
			"%w: got %d bytes", ErrInvalidPreimageLength, len(resp.Preimage),
		)
	}
	if !preimage.Matches(params.PaymentHash) {
		return lntypes.Preimage{}, ErrPreimageMismatch
	}
	return preimage, nil
}

// PayInvoiceBuyPreimageFinalize turns the result of a preimage purchase into
// the preimage itself.
func (a *Actor) PayInvoiceBuyPreimageFinalize(
	ctx context.Context, buyPreimage domain.BuyPreimage,
) (lntypes.Preimage, error) {
	switch b := buyPreimage.(type) {
	case domain.InternalPreimage:
		return a.BuyPreimageFromFederationAwaitDecryption(ctx, b.OutPoint, b.ContractId)
	case domain.ExternalPreimage:
		return b.Preimage, nil
	default:
		return lntypes.Preimage{}, fmt.Errorf("%w: %T", ErrUnknownBuyPreimage, buyPreimage)
	}
}
