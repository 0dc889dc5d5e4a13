package domain

import (
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/lightningnetwork/lnd/lnwire"
)

type HopHint struct {
	SrcNodeId              *btcec.PublicKey
	ShortChannelId         lnwire.ShortChannelID
	BaseMsat               uint32
	ProportionalMillionths uint32
	CltvExpiryDelta        uint16
	HtlcMinimumMsat        uint64
	HtlcMaximumMsat        uint64
}

type RouteHint []HopHint

type RoutingFees struct {
	BaseMsat               uint32
	ProportionalMillionths uint32
}

// GatewayClientConfig is the federation-specific configuration of the
// gateway client.
type GatewayClientConfig struct {
	FederationId  string
	MintChannelId uint64
	RedeemKey     *btcec.PublicKey
	NodePubKey    *btcec.PublicKey
	Api           string
	Fees          RoutingFees
}

// GatewayRegistration is the announcement that makes the gateway eligible
// for routing payments of a federation until ValidUntil.
type GatewayRegistration struct {
	MintChannelId uint64
	MintPubKey    *btcec.PublicKey
	NodePubKey    *btcec.PublicKey
	Api           string
	RouteHints    []RouteHint
	Fees          RoutingFees
	ValidUntil    time.Time
}

func (c GatewayClientConfig) ToRegistration(
	routeHints []RouteHint, ttl time.Duration,
) GatewayRegistration {
	return GatewayRegistration{
		MintChannelId: c.MintChannelId,
		MintPubKey:    c.RedeemKey,
		NodePubKey:    c.NodePubKey,
		Api:           c.Api,
		RouteHints:    routeHints,
		Fees:          c.Fees,
		ValidUntil:    time.Now().Add(ttl),
	}
}
