package lnd

import (
	"context"
	"fmt"

	"github.com/ark-network/ln-gateway/internal/core/domain"
	"github.com/lightningnetwork/lnd/lnrpc"
	log "github.com/sirupsen/logrus"
)

// RouteHints returns up to count hints for the active private channels of the
// node, to be announced along with the gateway registration.
func (c *Client) RouteHints(ctx context.Context, count int) ([]domain.RouteHint, error) {
	if count <= 0 {
		return nil, nil
	}

	ln, _, err := c.clients()
	if err != nil {
		return nil, err
	}

	resp, err := ln.ListChannels(ctx, &lnrpc.ListChannelsRequest{
		ActiveOnly:  true,
		PrivateOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}

	hints := make([]domain.RouteHint, 0, count)
	for _, channel := range resp.GetChannels() {
		if len(hints) >= count {
			break
		}

		edge, err := ln.GetChanInfo(ctx, &lnrpc.ChanInfoRequest{
			ChanId: channel.GetChanId(),
		})
		if err != nil {
			log.WithError(err).Debugf(
				"skipping route hint for channel %d", channel.GetChanId(),
			)
			continue
		}

		hint, err := toRouteHint(channel, edge)
		if err != nil {
			log.WithError(err).Debug("skipping route hint")
			continue
		}
		hints = append(hints, hint)
	}
	return hints, nil
}
