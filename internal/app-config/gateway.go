package appconfig

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ark-network/ln-gateway/internal/core/application"
	"github.com/ark-network/ln-gateway/internal/core/domain"
	"github.com/ark-network/ln-gateway/internal/core/ports"
	gatewayrpc "github.com/ark-network/ln-gateway/internal/infrastructure/gateway-rpc"
	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

const maxReconnectElapsedTime = 5 * time.Minute

type lightningNode interface {
	ports.LightningClient
	Reconnect(ctx context.Context, mode *domain.LightningMode) error
	RouteHints(ctx context.Context, count int) ([]domain.RouteHint, error)
}

// Gateway supervises the actors of the federations the gateway serves and
// handles the reconnect requests they send when the lightning node drops.
type Gateway struct {
	node            lightningNode
	handle          *application.LightningHandle
	scheduler       ports.SchedulerService
	gwRpc           *gatewayrpc.Service
	taskGroup       *application.TaskGroup
	newRepoManager  func(federationId string) (ports.RepoManager, error)
	routeHintsCount int
	actorCfg        application.ActorConfig

	lock   sync.RWMutex
	actors map[string]*federationActor
}

type federationActor struct {
	actor       *application.Actor
	repoManager ports.RepoManager
}

func newGateway(
	node lightningNode, scheduler ports.SchedulerService,
	gwRpc *gatewayrpc.Service,
	newRepoManager func(federationId string) (ports.RepoManager, error),
	routeHintsCount int, actorCfg application.ActorConfig,
) *Gateway {
	return &Gateway{
		node:            node,
		handle:          application.NewLightningHandle(node),
		scheduler:       scheduler,
		gwRpc:           gwRpc,
		taskGroup:       application.NewTaskGroup(context.Background()),
		newRepoManager:  newRepoManager,
		routeHintsCount: routeHintsCount,
		actorCfg:        actorCfg,
		actors:          make(map[string]*federationActor),
	}
}

func (g *Gateway) Start() {
	g.scheduler.Start()
	g.taskGroup.Spawn("handle gateway rpc requests", g.listenToRequests)
	log.Info("gateway started")
}

func (g *Gateway) Stop() {
	g.lock.Lock()
	actors := g.actors
	g.actors = make(map[string]*federationActor)
	g.lock.Unlock()

	for _, fa := range actors {
		fa.close()
	}

	g.taskGroup.Shutdown()
	g.gwRpc.Close()
	g.taskGroup.Join()
	g.scheduler.Stop()

	if err := g.handle.Write(func(ln ports.LightningClient) error {
		return ln.Disconnect(context.Background())
	}); err != nil {
		log.WithError(err).Warn("failed to disconnect lightning node")
	}
	log.Info("gateway stopped")
}

// AddFederation starts serving the given federation.
func (g *Gateway) AddFederation(
	ctx context.Context, client ports.FederationClient,
) (*application.Actor, error) {
	federationId := client.Config().FederationId

	g.lock.Lock()
	defer g.lock.Unlock()

	if _, ok := g.actors[federationId]; ok {
		return nil, fmt.Errorf("federation %s already added", federationId)
	}

	var routeHints []domain.RouteHint
	if err := g.handle.Read(func(ln ports.LightningClient) error {
		var err error
		routeHints, err = g.node.RouteHints(ctx, g.routeHintsCount)
		return err
	}); err != nil {
		log.WithError(err).Warn("failed to fetch route hints")
	}

	repoManager, err := g.newRepoManager(federationId)
	if err != nil {
		return nil, fmt.Errorf("failed to open federation stores: %s", err)
	}

	actor, err := application.NewActor(
		client, g.handle, routeHints, g.taskGroup, g.gwRpc, repoManager,
		g.scheduler, g.actorCfg,
	)
	if err != nil {
		repoManager.Close()
		return nil, err
	}

	g.actors[federationId] = &federationActor{actor, repoManager}
	log.WithField("federation", federationId).Info("federation added")
	return actor, nil
}

func (g *Gateway) RemoveFederation(federationId string) error {
	g.lock.Lock()
	fa, ok := g.actors[federationId]
	delete(g.actors, federationId)
	g.lock.Unlock()

	if !ok {
		return fmt.Errorf("federation %s not found", federationId)
	}
	fa.close()
	log.WithField("federation", federationId).Info("federation removed")
	return nil
}

func (g *Gateway) Actor(federationId string) (*application.Actor, error) {
	g.lock.RLock()
	defer g.lock.RUnlock()

	fa, ok := g.actors[federationId]
	if !ok {
		return nil, fmt.Errorf("federation %s not found", federationId)
	}
	return fa.actor, nil
}

func (g *Gateway) listenToRequests(ctx context.Context) {
	requests := g.gwRpc.Requests()
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-requests:
			if !ok {
				return
			}
			g.reconnect(ctx, req)
		}
	}
}

// reconnect re-establishes the connection with the lightning node and
// resubscribes every actor to its htlcs.
func (g *Gateway) reconnect(
	ctx context.Context, req domain.LightningReconnectPayload,
) {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = maxReconnectElapsedTime

	if err := backoff.Retry(func() error {
		return g.handle.Renew(func(ports.LightningClient) error {
			return g.node.Reconnect(ctx, req.NodeType)
		})
	}, backoff.WithContext(bo, ctx)); err != nil {
		log.WithError(err).Error("failed to reconnect to lightning node")
		return
	}
	log.Info("reconnected to lightning node")

	// Requests queued in the meantime were raised on the previous connection,
	// only a switch to another node needs a new reconnection.
	if next := g.drainRequests(); next != nil {
		g.reconnect(ctx, *next)
		return
	}

	g.lock.RLock()
	actors := make([]*application.Actor, 0, len(g.actors))
	for _, fa := range g.actors {
		actors = append(actors, fa.actor)
	}
	g.lock.RUnlock()

	for _, actor := range actors {
		if err := actor.SubscribeHtlcs(ctx); err != nil {
			log.WithError(err).WithField("federation", actor.FederationId()).Warn(
				"failed to resubscribe to htlcs",
			)
		}
	}
}

// drainRequests empties the request queue and returns the last request that
// switches node, if any.
func (g *Gateway) drainRequests() *domain.LightningReconnectPayload {
	var next *domain.LightningReconnectPayload
	for {
		select {
		case req, ok := <-g.gwRpc.Requests():
			if !ok {
				return next
			}
			if req.NodeType != nil {
				next = &req
			}
		default:
			return next
		}
	}
}

func (fa *federationActor) close() {
	fa.actor.Close()
	fa.repoManager.Close()
}
