package lnd

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/ark-network/ln-gateway/internal/core/domain"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/lnrpc/routerrpc"
	log "github.com/sirupsen/logrus"
)

const paymentTimeoutSeconds = 60

// Pay sends the payment of the invoice and waits for its outcome. The fee
// limit is the fee percentage applied to the invoice amount.
func (c *Client) Pay(
	ctx context.Context, req domain.PayInvoiceRequest,
) (*domain.PayInvoiceResponse, error) {
	ln, router, err := c.clients()
	if err != nil {
		return nil, err
	}

	payReq, err := ln.DecodePayReq(ctx, &lnrpc.PayReqString{PayReq: req.Invoice})
	if err != nil {
		return nil, fmt.Errorf("failed to decode invoice: %w", err)
	}

	feeLimit := maxFeeMsat(payReq.GetNumMsat(), req.MaxFeePercent)
	logger := log.WithField("payment_hash", payReq.GetPaymentHash())
	logger.Debugf(
		"paying invoice of %d msat with fee limit %d msat and max delay %d",
		payReq.GetNumMsat(), feeLimit, req.MaxDelay,
	)

	stream, err := router.SendPaymentV2(ctx, &routerrpc.SendPaymentRequest{
		PaymentRequest:    req.Invoice,
		TimeoutSeconds:    paymentTimeoutSeconds,
		FeeLimitMsat:      feeLimit,
		CltvLimit:         cltvLimit(req.MaxDelay),
		NoInflightUpdates: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send payment: %w", err)
	}

	payment, err := getPaymentResult(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment result: %w", err)
	}
	if payment.GetStatus() != lnrpc.Payment_SUCCEEDED {
		return nil, fmt.Errorf("payment failed: %s", payment.GetFailureReason())
	}

	preimage, err := hex.DecodeString(payment.GetPaymentPreimage())
	if err != nil {
		return nil, fmt.Errorf("invalid payment preimage: %s", err)
	}
	logger.Infof("paid invoice with fee %d msat", payment.GetFeeMsat())
	return &domain.PayInvoiceResponse{Preimage: preimage}, nil
}

func getPaymentResult(stream routerrpc.Router_SendPaymentV2Client) (*lnrpc.Payment, error) {
	for {
		payment, err := stream.Recv()
		if err != nil {
			return nil, err
		}

		if payment.GetStatus() != lnrpc.Payment_IN_FLIGHT {
			return payment, nil
		}
	}
}
