package lnd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ark-network/ln-gateway/internal/core/domain"
	"github.com/ark-network/ln-gateway/internal/core/ports"
	"github.com/lightningnetwork/lnd/lnrpc/routerrpc"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const subscriberBufferSize = 16

// SubscribeHtlcs returns the htlcs intercepted on their way to the given
// short channel id. A previous subscription for the same channel is closed.
// The returned channel is closed when ctx is done or the interception stream
// stops; if the stream fails, its error is the last event.
func (c *Client) SubscribeHtlcs(
	ctx context.Context, shortChannelId uint64,
) (<-chan ports.HtlcEvent, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.conn == nil {
		return nil, fmt.Errorf("lnd client is disconnected")
	}

	if c.interceptor == nil || c.interceptor.isDone() {
		ic, err := startInterceptor(c.router)
		if err != nil {
			return nil, err
		}
		c.interceptor = ic
	}

	return c.interceptor.subscribe(ctx, shortChannelId), nil
}

// CompleteHtlc resolves a held htlc. The cancel reason can't be relayed to
// the node, htlcs are always failed with a temporary channel failure.
func (c *Client) CompleteHtlc(
	_ context.Context, req domain.CompleteHtlcRequest,
) error {
	c.lock.RLock()
	ic := c.interceptor
	c.lock.RUnlock()

	if ic == nil || ic.isDone() {
		return fmt.Errorf("no active htlc interceptor")
	}

	resp, err := toInterceptResponse(req)
	if err != nil {
		return err
	}
	if action, ok := req.Action.(domain.CancelAction); ok {
		log.WithField("htlc_id", req.HtlcId.String()).Debugf(
			"failing htlc: %s", action.Reason,
		)
	}
	return ic.send(resp)
}

type interceptor struct {
	cancel   context.CancelFunc
	stream   routerrpc.Router_HtlcInterceptorClient
	sendLock sync.Mutex
	done     chan struct{}

	lock        sync.Mutex
	subscribers map[uint64]*subscriber
}

func startInterceptor(router routerrpc.RouterClient) (*interceptor, error) {
	ctx, cancel := context.WithCancel(context.Background())
	stream, err := router.HtlcInterceptor(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open htlc interceptor: %s", err)
	}

	ic := &interceptor{
		cancel:      cancel,
		stream:      stream,
		done:        make(chan struct{}),
		subscribers: make(map[uint64]*subscriber),
	}
	go ic.run()
	return ic, nil
}

func (ic *interceptor) isDone() bool {
	select {
	case <-ic.done:
		return true
	default:
		return false
	}
}

func (ic *interceptor) stop() {
	ic.cancel()
}

func (ic *interceptor) subscribe(ctx context.Context, shortChannelId uint64) <-chan ports.HtlcEvent {
	sub := newSubscriber(ctx)

	ic.lock.Lock()
	prev := ic.subscribers[shortChannelId]
	ic.subscribers[shortChannelId] = sub
	ic.lock.Unlock()

	if prev != nil {
		prev.close()
	}

	go func() {
		select {
		case <-ctx.Done():
		case <-sub.quit:
		case <-ic.done:
		}
		ic.unsubscribe(shortChannelId, sub)
	}()

	return sub.events
}

func (ic *interceptor) unsubscribe(shortChannelId uint64, sub *subscriber) {
	ic.lock.Lock()
	if ic.subscribers[shortChannelId] == sub {
		delete(ic.subscribers, shortChannelId)
	}
	ic.lock.Unlock()

	sub.close()
}

func (ic *interceptor) run() {
	defer close(ic.done)

	for {
		req, err := ic.stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) || status.Code(err) == codes.Canceled {
				log.Info("htlc interceptor stream closed")
				ic.closeSubscribers(nil)
				return
			}
			log.WithError(err).Warn("htlc interceptor stream failed")
			ic.closeSubscribers(err)
			return
		}

		ic.dispatch(req)
	}
}

// dispatch never blocks the stream: an htlc whose subscriber can't take it
// right away is failed, one nobody subscribed to is resumed.
func (ic *interceptor) dispatch(req *routerrpc.ForwardHtlcInterceptRequest) {
	ic.lock.Lock()
	sub, ok := ic.subscribers[req.GetOutgoingRequestedChanId()]
	ic.lock.Unlock()

	htlc := toInterceptedHtlc(req)
	logger := log.WithField("htlc_id", htlc.Id.String())

	resp := &routerrpc.ForwardHtlcInterceptResponse{
		IncomingCircuitKey: req.GetIncomingCircuitKey(),
		Action:             routerrpc.ResolveHoldForwardAction_RESUME,
	}
	if ok {
		if sub.trySend(ports.HtlcEvent{Htlc: &htlc}) {
			return
		}
		logger.Warn("htlc subscriber is busy, failing htlc")
		resp, _ = toInterceptResponse(
			domain.NewCancelRequest(htlc.Id, "htlc subscriber is busy"),
		)
	}

	if err := ic.send(resp); err != nil {
		logger.WithError(err).Warn("failed to resolve htlc")
	}
}

func (ic *interceptor) closeSubscribers(err error) {
	ic.lock.Lock()
	subscribers := make([]*subscriber, 0, len(ic.subscribers))
	for id, sub := range ic.subscribers {
		subscribers = append(subscribers, sub)
		delete(ic.subscribers, id)
	}
	ic.lock.Unlock()

	for _, sub := range subscribers {
		if err != nil {
			if !sub.trySend(ports.HtlcEvent{Err: err}) {
				log.Warn("htlc subscriber is busy, dropping stream error")
			}
		}
		sub.close()
	}
}

func (ic *interceptor) send(resp *routerrpc.ForwardHtlcInterceptResponse) error {
	ic.sendLock.Lock()
	defer ic.sendLock.Unlock()

	if err := ic.stream.Send(resp); err != nil {
		return fmt.Errorf("failed to send htlc resolution: %w", err)
	}
	return nil
}

// subscriber guards its event channel so that it's never written after
// being closed.
type subscriber struct {
	ctx      context.Context
	events   chan ports.HtlcEvent
	quit     chan struct{}
	quitOnce sync.Once

	lock   sync.Mutex
	closed bool
}

func newSubscriber(ctx context.Context) *subscriber {
	return &subscriber{
		ctx:    ctx,
		events: make(chan ports.HtlcEvent, subscriberBufferSize),
		quit:   make(chan struct{}),
	}
}

// trySend delivers event only if there's room for it in the buffer.
func (s *subscriber) trySend(event ports.HtlcEvent) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed || s.ctx.Err() != nil {
		return false
	}
	select {
	case s.events <- event:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.quitOnce.Do(func() { close(s.quit) })

	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.closed {
		s.closed = true
		close(s.events)
	}
}
