package ports

import (
	"context"

	"github.com/ark-network/ln-gateway/internal/core/domain"
)

// HtlcEvent is an item of an htlc subscription stream. Exactly one of Htlc
// and Err is set. The stream channel is closed when the node stops sending.
type HtlcEvent struct {
	Htlc *domain.InterceptedHtlc
	Err  error
}

type LightningClient interface {
	// SubscribeHtlcs intercepts the htlcs forwarded to the given short
	// channel id. The stream stops when ctx is cancelled.
	SubscribeHtlcs(
		ctx context.Context, shortChannelId uint64,
	) (<-chan HtlcEvent, error)
	Pay(
		ctx context.Context, req domain.PayInvoiceRequest,
	) (*domain.PayInvoiceResponse, error)
	CompleteHtlc(ctx context.Context, req domain.CompleteHtlcRequest) error
	Disconnect(ctx context.Context) error
}
