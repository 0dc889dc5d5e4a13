package lnd

import (
	"encoding/hex"
	"fmt"
	"math"

	"github.com/ark-network/ln-gateway/internal/core/domain"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/lnrpc/routerrpc"
	"github.com/lightningnetwork/lnd/lnwire"
)

func toInterceptedHtlc(req *routerrpc.ForwardHtlcInterceptRequest) domain.InterceptedHtlc {
	var id domain.HtlcId
	if key := req.GetIncomingCircuitKey(); key != nil {
		id = domain.HtlcId{ChanId: key.GetChanId(), HtlcId: key.GetHtlcId()}
	}
	return domain.InterceptedHtlc{
		Id:                 id,
		PaymentHash:        req.GetPaymentHash(),
		OutgoingAmountMsat: req.GetOutgoingAmountMsat(),
		ShortChannelId:     req.GetOutgoingRequestedChanId(),
	}
}

func toInterceptResponse(
	req domain.CompleteHtlcRequest,
) (*routerrpc.ForwardHtlcInterceptResponse, error) {
	key := &routerrpc.CircuitKey{
		ChanId: req.HtlcId.ChanId,
		HtlcId: req.HtlcId.HtlcId,
	}

	switch action := req.Action.(type) {
	case domain.SettleAction:
		preimage := action.Preimage
		return &routerrpc.ForwardHtlcInterceptResponse{
			IncomingCircuitKey: key,
			Action:             routerrpc.ResolveHoldForwardAction_SETTLE,
			Preimage:           preimage[:],
		}, nil
	case domain.CancelAction:
		return &routerrpc.ForwardHtlcInterceptResponse{
			IncomingCircuitKey: key,
			Action:             routerrpc.ResolveHoldForwardAction_FAIL,
			FailureCode:        lnrpc.Failure_TEMPORARY_CHANNEL_FAILURE,
		}, nil
	default:
		return nil, fmt.Errorf("unknown htlc action %T", req.Action)
	}
}

// maxFeeMsat is the fee budget of a payment of amountMsat, rounded down.
func maxFeeMsat(amountMsat int64, maxFeePercent float64) int64 {
	if amountMsat <= 0 || maxFeePercent <= 0 {
		return 0
	}
	return int64(math.Floor(float64(amountMsat) * maxFeePercent))
}

func cltvLimit(maxDelay uint64) int32 {
	if maxDelay > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(maxDelay)
}

// toRouteHint builds the hint of a private channel from the policy that the
// peer applies when forwarding to us.
func toRouteHint(
	channel *lnrpc.Channel, edge *lnrpc.ChannelEdge,
) (domain.RouteHint, error) {
	policy := edge.GetNode1Policy()
	if edge.GetNode1Pub() != channel.GetRemotePubkey() {
		policy = edge.GetNode2Policy()
	}
	if policy == nil {
		return nil, fmt.Errorf("missing remote policy for channel %d", channel.GetChanId())
	}

	pubkey, err := parsePubkey(channel.GetRemotePubkey())
	if err != nil {
		return nil, err
	}

	chanId := channel.GetChanId()
	if alias := channel.GetPeerScidAlias(); alias != 0 {
		chanId = alias
	}

	return domain.RouteHint{{
		SrcNodeId:              pubkey,
		ShortChannelId:         lnwire.NewShortChanIDFromInt(chanId),
		BaseMsat:               uint32(policy.GetFeeBaseMsat()),
		ProportionalMillionths: uint32(policy.GetFeeRateMilliMsat()),
		CltvExpiryDelta:        uint16(policy.GetTimeLockDelta()),
		HtlcMinimumMsat:        uint64(policy.GetMinHtlc()),
		HtlcMaximumMsat:        policy.GetMaxHtlcMsat(),
	}}, nil
}

func parsePubkey(key string) (*btcec.PublicKey, error) {
	buf, err := hex.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("invalid node pubkey %s: %s", key, err)
	}
	pubkey, err := btcec.ParsePubKey(buf)
	if err != nil {
		return nil, fmt.Errorf("invalid node pubkey %s: %s", key, err)
	}
	return pubkey, nil
}
