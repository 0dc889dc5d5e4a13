package domain_test

import (
	"testing"
	"time"

	"github.com/ark-network/ln-gateway/internal/core/domain"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/stretchr/testify/require"
)

func TestGatewayRegistration(t *testing.T) {
	cfg := domain.GatewayClientConfig{
		FederationId:  "fed",
		MintChannelId: 2,
		Api:           "http://127.0.0.1:8175",
		Fees:          domain.RoutingFees{BaseMsat: 1000, ProportionalMillionths: 100},
	}
	hints := []domain.RouteHint{
		{{ShortChannelId: lnwire.NewShortChanIDFromInt(42), CltvExpiryDelta: 40}},
	}

	before := time.Now()
	registration := cfg.ToRegistration(hints, 10*time.Minute)

	require.Equal(t, cfg.MintChannelId, registration.MintChannelId)
	require.Equal(t, cfg.Api, registration.Api)
	require.Equal(t, cfg.Fees, registration.Fees)
	require.Equal(t, hints, registration.RouteHints)
	require.WithinRange(
		t, registration.ValidUntil,
		before.Add(10*time.Minute), time.Now().Add(10*time.Minute),
	)
}
