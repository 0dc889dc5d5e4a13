package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ark-network/ln-gateway/internal/core/domain"
	"github.com/ark-network/ln-gateway/internal/core/ports"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// htlcSubscription owns the node-side stream through ctx: cancelling it
// releases the stream, so that the node stops holding htlcs for us.
type htlcSubscription struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once

	// generation of the lightning connection the stream was opened on.
	generation uint64
}

func newHtlcSubscription(ctx context.Context) *htlcSubscription {
	ctx, cancel := context.WithCancel(ctx)
	return &htlcSubscription{
		id:     uuid.New().String(),
		ctx:    ctx,
		cancel: cancel,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (s *htlcSubscription) shutdown() {
	s.once.Do(func() {
		close(s.stop)
		s.cancel()
	})
}

// SubscribeHtlcs starts intercepting the htlcs routed to the federation's
// channel. An active subscription is stopped, and waited for, before the
// new one is started.
func (a *Actor) SubscribeHtlcs(ctx context.Context) error {
	a.subscribeLock.Lock()
	defer a.subscribeLock.Unlock()

	a.lock.Lock()
	prev := a.subscription
	a.lock.Unlock()

	if prev != nil {
		prev.shutdown()
		select {
		case <-prev.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	shortChannelId := a.client.Config().MintChannelId
	sub := newHtlcSubscription(a.taskGroup.Context())

	var events <-chan ports.HtlcEvent
	if err := a.lightning.Read(func(ln ports.LightningClient) error {
		var err error
		events, err = ln.SubscribeHtlcs(sub.ctx, shortChannelId)
		sub.generation = a.lightning.generation
		return err
	}); err != nil {
		sub.cancel()
		return fmt.Errorf("failed to subscribe to htlcs: %w", err)
	}

	a.lock.Lock()
	a.subscription = sub
	a.lock.Unlock()

	log.WithField("subscription", sub.id).Infof(
		"subscribed to htlcs with short channel id %d", shortChannelId,
	)

	a.taskGroup.Spawn("subscribe to intercepted htlcs", func(ctx context.Context) {
		a.consumeHtlcs(ctx, sub, shortChannelId, events)
	})
	return nil
}

// StopSubscribingHtlcs signals the active subscription to stop. It does not
// wait for the htlc being processed, if any, and it's a no-op if there's no
// active subscription.
func (a *Actor) StopSubscribingHtlcs() error {
	a.lock.Lock()
	sub := a.subscription
	a.lock.Unlock()

	if sub == nil {
		log.Debug("no active htlc subscription to stop")
		return nil
	}
	sub.shutdown()
	return nil
}

func (a *Actor) consumeHtlcs(
	ctx context.Context, sub *htlcSubscription, shortChannelId uint64,
	events <-chan ports.HtlcEvent,
) {
	defer func() {
		sub.cancel()
		a.lock.Lock()
		if a.subscription == sub {
			a.subscription = nil
		}
		a.lock.Unlock()
		close(sub.done)
	}()

	logger := log.WithField("subscription", sub.id)

	for {
		htlc, ok := a.waitForHtlcOrShutdown(ctx, sub, events)
		if !ok {
			return
		}
		if ctx.Err() != nil {
			logger.Info("shutting down htlc subscription")
			return
		}

		if err := a.handleInterceptedHtlc(ctx, shortChannelId, *htlc); err != nil {
			logger.WithError(err).WithField("htlc_id", htlc.Id.String()).Warn(
				"failed to process intercepted htlc",
			)
		}
	}
}

func (a *Actor) waitForHtlcOrShutdown(
	ctx context.Context, sub *htlcSubscription, events <-chan ports.HtlcEvent,
) (*domain.InterceptedHtlc, bool) {
	logger := log.WithField("subscription", sub.id)

	select {
	case event, ok := <-events:
		if !ok {
			logger.Warn("htlc stream closed by service")
			return nil, false
		}
		if event.Err != nil {
			logger.WithError(event.Err).Warn(
				"error sent over htlc subscription, sending reconnect request",
			)
			a.requestReconnect(ctx, sub.generation)
			return nil, false
		}
		if event.Htlc == nil {
			logger.Warn("received empty htlc event")
			return nil, false
		}
		return event.Htlc, true
	case <-sub.stop:
		logger.Info("received signal to shutdown htlc subscription")
		return nil, false
	case <-ctx.Done():
		logger.Info("shutting down htlc subscription")
		return nil, false
	}
}

// requestReconnect drops the connection the failed stream was opened on and
// asks the supervisor for a new one. Nothing is done if the connection has
// been renewed in the meantime.
func (a *Actor) requestReconnect(ctx context.Context, generation uint64) {
	renewed, err := a.lightning.writeAt(generation, func(ln ports.LightningClient) error {
		return ln.Disconnect(ctx)
	})
	if renewed {
		log.Debug("lightning connection already renewed, skipping reconnect request")
		return
	}
	if err != nil {
		log.WithError(err).Warn("failed to disconnect lightning node")
	}

	// A nil node type makes the supervisor reuse the current credentials.
	payload := domain.LightningReconnectPayload{NodeType: nil}
	if err := a.gwRpc.Send(ctx, payload); err != nil {
		log.WithError(err).Error("failed to send lightning reconnect request")
	}
}

// handleInterceptedHtlc drives a single htlc to exactly one completion:
// settle if the federation releases the preimage, cancel otherwise.
func (a *Actor) handleInterceptedHtlc(
	ctx context.Context, shortChannelId uint64, htlc domain.InterceptedHtlc,
) error {
	if htlc.ShortChannelId != shortChannelId {
		a.cancelHtlc(ctx, htlc.Id, ErrUnexpectedChannel.Error())
		return ErrUnexpectedChannel
	}

	hash, err := htlc.ParsePaymentHash()
	if err != nil {
		a.cancelHtlc(ctx, htlc.Id, "failed to parse payment hash")
		return err
	}

	if htlc.OutgoingAmountMsat == 0 {
		a.cancelHtlc(ctx, htlc.Id, ErrZeroAmountHtlc.Error())
		return ErrZeroAmountHtlc
	}

	logger := log.WithFields(log.Fields{
		"htlc_id":      htlc.Id.String(),
		"payment_hash": hash.String(),
		"amount_msat":  htlc.OutgoingAmountMsat,
	})

	// The node replays the htlcs it still holds when a new interception
	// stream is opened, settle those with the preimage we already have.
	pending, err := a.repoManager.PendingSettlements().Get(ctx, hash.String())
	if err != nil {
		logger.WithError(err).Warn("failed to look up pending settlement")
	}
	if pending != nil {
		logger.Info("settling replayed htlc with released preimage")
		return a.settlePending(ctx, pending.PaymentHash, &htlc.Id)
	}

	outpoint, contractId, err := a.BuyPreimageFromFederation(
		ctx, hash, htlc.Amount(),
	)
	if err != nil {
		// No contract was created, the node fails the htlc on expiry anyway
		// if this cancel doesn't go through.
		a.cancelHtlc(ctx, htlc.Id, err.Error())
		return fmt.Errorf("failed to buy preimage: %w", err)
	}

	preimage, err := a.PayInvoiceBuyPreimageFinalize(ctx, domain.InternalPreimage{
		OutPoint:   outpoint,
		ContractId: contractId,
	})
	if err != nil {
		a.cancelHtlc(ctx, htlc.Id, err.Error())
		return fmt.Errorf("failed to finalize preimage: %w", err)
	}

	if err := a.completeHtlc(ctx, domain.NewSettleRequest(htlc.Id, preimage)); err != nil {
		logger.WithError(err).Error(
			"failed to settle htlc after preimage release, funds at risk",
		)
		settlement := domain.NewPendingSettlement(htlc.Id, preimage, contractId, err)
		if err := a.repoManager.PendingSettlements().Add(ctx, settlement); err != nil {
			logger.WithError(err).Error("failed to persist pending settlement")
		}
		return errSettleHtlc{htlc.Id.String(), err}
	}

	logger.Info("successfully processed intercepted htlc")
	return nil
}

func (a *Actor) cancelHtlc(ctx context.Context, id domain.HtlcId, reason string) {
	err := a.completeHtlc(ctx, domain.NewCancelRequest(id, reason))
	if err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).WithField("htlc_id", id.String()).Warn(
			"failed to cancel htlc",
		)
	}
}
