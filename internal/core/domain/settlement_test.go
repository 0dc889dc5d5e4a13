package domain_test

import (
	"errors"
	"testing"

	"github.com/ark-network/ln-gateway/internal/core/domain"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

func TestPendingSettlement(t *testing.T) {
	htlcId := domain.HtlcId{ChanId: 3, HtlcId: 1}
	contractId := domain.ContractId{0x0a}

	settlement := domain.NewPendingSettlement(
		htlcId, preimage, contractId, errors.New("stream closed"),
	)
	require.NotEmpty(t, settlement.Id)
	require.Equal(t, preimage.Hash().String(), settlement.PaymentHash)
	require.Equal(t, 1, settlement.Attempts)
	require.Equal(t, "stream closed", settlement.LastError)
	require.False(t, settlement.Abandoned)

	settlement.RecordFailure(errors.New("unknown circuit"), 3)
	require.Equal(t, 2, settlement.Attempts)
	require.Equal(t, "unknown circuit", settlement.LastError)
	require.False(t, settlement.Abandoned)

	settlement.RecordFailure(nil, 3)
	require.Equal(t, 3, settlement.Attempts)
	require.True(t, settlement.Abandoned)
}

func TestOutgoingPayment(t *testing.T) {
	contractId := domain.ContractId{0x0b}
	params := domain.PaymentParameters{
		PaymentHash:   preimage.Hash(),
		InvoiceAmount: 21000,
	}

	t.Run("claim", func(t *testing.T) {
		payment := domain.NewOutgoingPayment(contractId, params, true)
		require.Equal(t, contractId.String(), payment.ContractId)
		require.Equal(t, domain.OutgoingPaymentPending, payment.Status)
		require.False(t, payment.IsFinal())

		outpoint := wire.OutPoint{Hash: chainhash.Hash{0x01}, Index: 2}
		payment.Claim(outpoint)
		require.Equal(t, domain.OutgoingPaymentClaimed, payment.Status)
		require.Equal(t, outpoint.String(), payment.ClaimOutPoint)
		require.True(t, payment.IsFinal())
	})

	t.Run("abort", func(t *testing.T) {
		payment := domain.NewOutgoingPayment(contractId, params, false)
		payment.Abort(errors.New("no route"))
		require.Equal(t, domain.OutgoingPaymentAborted, payment.Status)
		require.Equal(t, "no route", payment.FailureReason)
		require.Equal(t, "aborted", payment.Status.String())
	})

	t.Run("cancel", func(t *testing.T) {
		payment := domain.NewOutgoingPayment(contractId, params, false)
		payment.Cancel(errors.New("expired"))
		require.Equal(t, domain.OutgoingPaymentCancelled, payment.Status)
		require.Equal(t, "cancelled", payment.Status.String())
	})
}
