package appconfig

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ark-network/ln-gateway/internal/config"
	"github.com/ark-network/ln-gateway/internal/core/application"
	"github.com/ark-network/ln-gateway/internal/core/ports"
	"github.com/ark-network/ln-gateway/internal/infrastructure/db"
	gatewayrpc "github.com/ark-network/ln-gateway/internal/infrastructure/gateway-rpc"
	"github.com/ark-network/ln-gateway/internal/infrastructure/lightning/lnd"
	scheduler "github.com/ark-network/ln-gateway/internal/infrastructure/scheduler/gocron"
	log "github.com/sirupsen/logrus"
)

// A single queued reconnect request covers every failure reported before
// the supervisor picks it up.
const gatewayRpcBufferSize = 1

var (
	supportedDbs = supportedType{
		"badger":   {},
		"inmemory": {},
	}
	supportedSchedulers = supportedType{
		"gocron": {},
	}
)

type Config struct {
	DbType          string
	DbDir           string
	SchedulerType   string
	LndHost         string
	LndTLSCertPath  string
	LndMacaroonPath string
	RouteHintsCount int
	Actor           application.ActorConfig

	node      lightningNode
	scheduler ports.SchedulerService
	gwRpc     *gatewayrpc.Service
}

func FromConfig(cfg *config.Config) *Config {
	return &Config{
		DbType:          cfg.DbType,
		DbDir:           cfg.DbDir,
		SchedulerType:   cfg.SchedulerType,
		LndHost:         cfg.LndHost,
		LndTLSCertPath:  cfg.LndTLSCertPath,
		LndMacaroonPath: cfg.LndMacaroonPath,
		RouteHintsCount: cfg.RouteHintsCount,
		Actor: application.ActorConfig{
			AnnouncementTTL:         cfg.AnnouncementTTL,
			RegistrationMaxAttempts: cfg.RegistrationMaxAttempts,
			RegistrationBackoff:     cfg.RegistrationBackoff,
			SettleRetryInterval:     cfg.SettleRetryInterval,
			SettleMaxAttempts:       cfg.SettleMaxAttempts,
			RestoreGapLimit:         cfg.RestoreGapLimit,
		},
	}
}

func (c *Config) Validate() error {
	if !supportedDbs.supports(c.DbType) {
		return fmt.Errorf("db type not supported, please select one of: %s", supportedDbs)
	}
	if c.DbType != "inmemory" && len(c.DbDir) <= 0 {
		return fmt.Errorf("missing db dir")
	}
	if !supportedSchedulers.supports(c.SchedulerType) {
		return fmt.Errorf("scheduler type not supported, please select one of: %s", supportedSchedulers)
	}
	if c.RouteHintsCount < 0 {
		return fmt.Errorf("invalid route hints count, must not be negative")
	}

	if err := c.schedulerService(); err != nil {
		return err
	}
	if err := c.lightningService(); err != nil {
		return err
	}
	c.gatewayRpcService()
	return nil
}

// AppService returns the gateway wired with the services built by Validate.
func (c *Config) AppService() (*Gateway, error) {
	if c.node == nil || c.scheduler == nil || c.gwRpc == nil {
		return nil, fmt.Errorf("config not validated")
	}
	return newGateway(
		c.node, c.scheduler, c.gwRpc, c.repoManager, c.RouteHintsCount, c.Actor,
	), nil
}

// repoManager opens the stores of the given federation, each federation has
// its own under the db dir.
func (c *Config) repoManager(federationId string) (ports.RepoManager, error) {
	var dataStoreConfig []interface{}
	switch c.DbType {
	case "inmemory":
		dataStoreConfig = []interface{}{"", nil}
	case "badger":
		logger := log.New()
		dataStoreConfig = []interface{}{
			filepath.Join(c.DbDir, federationId), logger,
		}
	default:
		return nil, fmt.Errorf("unknown db type")
	}

	return db.NewService(db.ServiceConfig{
		DataStoreType:   "badger",
		DataStoreConfig: dataStoreConfig,
	})
}

func (c *Config) schedulerService() error {
	var svc ports.SchedulerService
	switch c.SchedulerType {
	case "gocron":
		svc = scheduler.NewScheduler()
	default:
		return fmt.Errorf("unknown scheduler type")
	}
	c.scheduler = svc
	return nil
}

func (c *Config) lightningService() error {
	client, err := lnd.NewClient(lnd.Config{
		Host:         c.LndHost,
		TLSCertPath:  c.LndTLSCertPath,
		MacaroonPath: c.LndMacaroonPath,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to lnd: %s", err)
	}
	c.node = client
	return nil
}

func (c *Config) gatewayRpcService() {
	c.gwRpc = gatewayrpc.NewService(gatewayRpcBufferSize)
}

type supportedType map[string]struct{}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for tt := range t {
		types = append(types, tt)
	}
	return strings.Join(types, " | ")
}

func (t supportedType) supports(typeStr string) bool {
	_, ok := t[typeStr]
	return ok
}
