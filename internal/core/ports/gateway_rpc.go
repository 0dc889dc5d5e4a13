package ports

import (
	"context"

	"github.com/ark-network/ln-gateway/internal/core/domain"
)

// GatewayRpcSender forwards out-of-band requests to the supervising process.
type GatewayRpcSender interface {
	Send(ctx context.Context, payload domain.LightningReconnectPayload) error
}
