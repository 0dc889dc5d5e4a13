package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/ark-network/ln-gateway/internal/core/domain"
	"github.com/ark-network/ln-gateway/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// Actor bridges a federation and the lightning node: it intercepts the htlcs
// routed to the federation's channel, pays invoices on behalf of outgoing
// contracts and keeps the gateway registered with the federation.
// There is one actor per federation.
type Actor struct {
	client      ports.FederationClient
	lightning   *LightningHandle
	taskGroup   *TaskGroup
	gwRpc       ports.GatewayRpcSender
	repoManager ports.RepoManager
	routeHints  []domain.RouteHint
	cfg         ActorConfig

	settleLock sync.Mutex

	// subscribeLock serializes (re)subscriptions, lock guards subscription.
	subscribeLock sync.Mutex
	lock          sync.Mutex
	subscription  *htlcSubscription
}

func NewActor(
	client ports.FederationClient, lightning *LightningHandle,
	routeHints []domain.RouteHint, taskGroup *TaskGroup,
	gwRpc ports.GatewayRpcSender, repoManager ports.RepoManager,
	scheduler ports.SchedulerService, cfg ActorConfig,
) (*Actor, error) {
	if client == nil {
		return nil, fmt.Errorf("missing federation client")
	}
	if lightning == nil {
		return nil, fmt.Errorf("missing lightning client")
	}
	if gwRpc == nil {
		return nil, fmt.Errorf("missing gateway rpc sender")
	}
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if taskGroup == nil {
		taskGroup = NewTaskGroup(context.Background())
	}

	actor := &Actor{
		client:      client,
		lightning:   lightning,
		taskGroup:   taskGroup.MakeSubgroup(),
		gwRpc:       gwRpc,
		repoManager: repoManager,
		routeHints:  routeHints,
		cfg:         cfg.withDefaults(),
	}

	actor.taskGroup.Spawn("register with federation", actor.registerLoop)

	if scheduler != nil {
		interval := int64(actor.cfg.SettleRetryInterval.Seconds())
		if interval < 1 {
			interval = 1
		}
		if err := scheduler.ScheduleTask(interval, false, func() {
			actor.RetryPendingSettlements(actor.taskGroup.Context())
		}); err != nil {
			actor.taskGroup.Shutdown()
			return nil, fmt.Errorf("failed to schedule settlement retries: %s", err)
		}
	}

	if err := actor.SubscribeHtlcs(actor.taskGroup.Context()); err != nil {
		actor.taskGroup.Shutdown()
		return nil, err
	}

	return actor, nil
}

func (a *Actor) FederationId() string {
	return a.client.Config().FederationId
}

// Close cancels the background tasks of the actor and waits for them to
// return.
func (a *Actor) Close() {
	a.taskGroup.Shutdown()
	a.taskGroup.Join()
	log.WithField("federation", a.FederationId()).Debug("actor stopped")
}

func (a *Actor) completeHtlc(
	ctx context.Context, req domain.CompleteHtlcRequest,
) error {
	return a.lightning.Read(func(ln ports.LightningClient) error {
		return ln.CompleteHtlc(ctx, req)
	})
}
