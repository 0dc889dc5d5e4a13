package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/ark-network/ln-gateway/internal/core/domain"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/lntypes"
	log "github.com/sirupsen/logrus"
)

// PayInvoice pays the invoice of the given outgoing contract and claims the
// contract with the obtained preimage. Whenever the payment fails after the
// contract has been validated, the contract is aborted before returning.
func (a *Actor) PayInvoice(
	ctx context.Context, contractId domain.ContractId,
) (wire.OutPoint, error) {
	buyPreimage, err := a.PayInvoiceBuyPreimage(ctx, contractId)
	if err != nil {
		return wire.OutPoint{}, err
	}
	return a.PayInvoiceFinalizeAndClaim(ctx, contractId, buyPreimage)
}

func (a *Actor) PayInvoiceBuyPreimage(
	ctx context.Context, contractId domain.ContractId,
) (domain.BuyPreimage, error) {
	logger := log.WithField("contract_id", contractId.String())

	logger.Debug("fetching outgoing contract")
	account, err := a.client.FetchOutgoingContract(ctx, contractId)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch outgoing contract: %w", err)
	}

	params, err := a.client.ValidateOutgoingAccount(ctx, *account)
	if err != nil {
		return nil, a.cancelOutgoingContract(ctx, *account, nil, err)
	}
	logger.Debug("fetched and validated outgoing contract")

	if err := a.client.SaveOutgoingPayment(ctx, *account); err != nil {
		return nil, a.cancelOutgoingContract(
			ctx, *account, params,
			fmt.Errorf("failed to save outgoing payment: %w", err),
		)
	}

	internal := params.MaybeInternal && a.offerExists(ctx, params.PaymentHash)
	payment := domain.NewOutgoingPayment(contractId, *params, internal)
	a.recordOutgoingPayment(ctx, payment)

	if internal {
		outpoint, incomingContractId, err := a.BuyPreimageFromFederation(
			ctx, params.PaymentHash, params.InvoiceAmount,
		)
		if err != nil {
			return nil, a.abortOutgoingPayment(ctx, contractId, err)
		}
		return domain.InternalPreimage{
			OutPoint:   outpoint,
			ContractId: incomingContractId,
		}, nil
	}

	preimage, err := a.BuyPreimageOverLightning(ctx, account.Contract.Invoice, *params)
	if err != nil {
		return nil, a.abortOutgoingPayment(ctx, contractId, err)
	}
	return domain.ExternalPreimage{Preimage: preimage}, nil
}

func (a *Actor) PayInvoiceFinalizeAndClaim(
	ctx context.Context, contractId domain.ContractId, buyPreimage domain.BuyPreimage,
) (wire.OutPoint, error) {
	preimage, err := a.PayInvoiceBuyPreimageFinalize(ctx, buyPreimage)
	if err != nil {
		log.WithError(err).WithField("contract_id", contractId.String()).Warn(
			"invoice payment failed, aborting",
		)
		return wire.OutPoint{}, a.abortOutgoingPayment(ctx, contractId, err)
	}

	return a.claimOutgoingContract(ctx, contractId, preimage)
}

func (a *Actor) AwaitOutgoingContractClaimed(
	ctx context.Context, contractId domain.ContractId, outpoint wire.OutPoint,
) error {
	return a.client.AwaitOutgoingContractClaimed(ctx, contractId, outpoint)
}

func (a *Actor) claimOutgoingContract(
	ctx context.Context, contractId domain.ContractId, preimage lntypes.Preimage,
) (wire.OutPoint, error) {
	outpoint, err := a.client.ClaimOutgoingContract(ctx, contractId, preimage)
	if err != nil {
		return wire.OutPoint{}, fmt.Errorf("failed to claim outgoing contract: %w", err)
	}

	a.updateOutgoingPayment(ctx, contractId, func(p *domain.OutgoingPayment) {
		p.Claim(outpoint)
	})
	log.WithField("contract_id", contractId.String()).Infof(
		"claimed outgoing contract in %s", outpoint,
	)
	return outpoint, nil
}

// cancelOutgoingContract cancels a contract that can't be paid and returns
// cause, joined with the cancel error if any. The cancellation is recorded
// when the contract has been validated.
func (a *Actor) cancelOutgoingContract(
	ctx context.Context, account domain.OutgoingContractAccount,
	params *domain.PaymentParameters, cause error,
) error {
	if err := a.client.CancelOutgoingContract(ctx, account); err != nil {
		return errors.Join(cause, fmt.Errorf("failed to cancel outgoing contract: %w", err))
	}

	if params != nil {
		payment := domain.NewOutgoingPayment(account.ContractId, *params, false)
		payment.Cancel(cause)
		a.recordOutgoingPayment(ctx, payment)
	}
	return cause
}

// abortOutgoingPayment gives the funds of the contract back to the user and
// returns cause, joined with the abort error if any.
func (a *Actor) abortOutgoingPayment(
	ctx context.Context, contractId domain.ContractId, cause error,
) error {
	if err := a.client.AbortOutgoingPayment(ctx, contractId); err != nil {
		log.WithError(err).WithField("contract_id", contractId.String()).Error(
			"failed to abort outgoing payment",
		)
		return errors.Join(cause, fmt.Errorf("failed to abort outgoing payment: %w", err))
	}

	a.updateOutgoingPayment(ctx, contractId, func(p *domain.OutgoingPayment) {
		p.Abort(cause)
	})
	return cause
}

// offerExists reports whether the federation holds an offer for the hash, a
// failed lookup makes the payment go over lightning.
func (a *Actor) offerExists(ctx context.Context, paymentHash lntypes.Hash) bool {
	exists, err := a.client.OfferExists(ctx, paymentHash)
	if err != nil {
		log.WithError(err).WithField("payment_hash", paymentHash.String()).Debug(
			"failed to look up offer, paying over lightning",
		)
		return false
	}
	return exists
}

func (a *Actor) recordOutgoingPayment(ctx context.Context, payment domain.OutgoingPayment) {
	if err := a.repoManager.OutgoingPayments().Upsert(ctx, payment); err != nil {
		log.WithError(err).WithField("contract_id", payment.ContractId).Warn(
			"failed to record outgoing payment",
		)
	}
}

func (a *Actor) updateOutgoingPayment(
	ctx context.Context, contractId domain.ContractId,
	update func(p *domain.OutgoingPayment),
) {
	payment, err := a.repoManager.OutgoingPayments().Get(ctx, contractId.String())
	if err != nil || payment == nil {
		return
	}
	if payment.IsFinal() {
		log.WithField("contract_id", payment.ContractId).Debugf(
			"outgoing payment already %s, skipping update", payment.Status,
		)
		return
	}
	update(payment)
	a.recordOutgoingPayment(ctx, *payment)
}
