package lnd

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/ark-network/ln-gateway/internal/core/domain"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/lnrpc/routerrpc"
	"github.com/lightningnetwork/lnd/macaroons"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"gopkg.in/macaroon.v2"
)

type Config struct {
	Host         string
	TLSCertPath  string
	MacaroonPath string
}

func (c Config) validate() error {
	if c.Host == "" {
		return fmt.Errorf("missing lnd host")
	}
	if c.TLSCertPath == "" {
		return fmt.Errorf("missing lnd tls cert path")
	}
	if c.MacaroonPath == "" {
		return fmt.Errorf("missing lnd macaroon path")
	}
	return nil
}

// Client talks to lnd over gRPC. A node accepts a single htlc interceptor,
// so the client owns one interception stream and dispatches the intercepted
// htlcs to the subscriber of their outgoing channel.
type Client struct {
	lock   sync.RWMutex
	cfg    Config
	conn   *grpc.ClientConn
	ln     lnrpc.LightningClient
	router routerrpc.RouterClient

	interceptor *interceptor
}

func NewClient(cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	c := &Client{cfg: cfg}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect() error {
	creds, err := credentials.NewClientTLSFromFile(c.cfg.TLSCertPath, "")
	if err != nil {
		return fmt.Errorf("failed to load tls cert: %s", err)
	}

	macBytes, err := os.ReadFile(c.cfg.MacaroonPath)
	if err != nil {
		return fmt.Errorf("failed to read macaroon: %s", err)
	}
	mac := &macaroon.Macaroon{}
	if err := mac.UnmarshalBinary(macBytes); err != nil {
		return fmt.Errorf("failed to unmarshal macaroon: %s", err)
	}
	macCreds, err := macaroons.NewMacaroonCredential(mac)
	if err != nil {
		return fmt.Errorf("failed to create macaroon credential: %s", err)
	}

	conn, err := grpc.Dial(
		c.cfg.Host,
		grpc.WithTransportCredentials(creds),
		grpc.WithPerRPCCredentials(macCreds),
	)
	if err != nil {
		return fmt.Errorf("failed to dial lnd: %s", err)
	}

	c.conn = conn
	c.ln = lnrpc.NewLightningClient(conn)
	c.router = routerrpc.NewRouterClient(conn)

	log.Infof("connected to lnd at %s", c.cfg.Host)
	return nil
}

// Disconnect stops the interception stream, which closes the subscriptions,
// and closes the connection. It's a no-op if already disconnected.
func (c *Client) Disconnect(_ context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.disconnect()
}

func (c *Client) disconnect() error {
	if c.interceptor != nil {
		c.interceptor.stop()
		c.interceptor = nil
	}
	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	c.conn, c.ln, c.router = nil, nil, nil
	if err != nil {
		return fmt.Errorf("failed to close lnd connection: %s", err)
	}
	log.Infof("disconnected from lnd at %s", c.cfg.Host)
	return nil
}

// Reconnect closes the current connection, if any, and dials the node
// again. A nil mode reuses the current connection settings.
func (c *Client) Reconnect(_ context.Context, mode *domain.LightningMode) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	cfg := c.cfg
	if mode != nil {
		cfg = Config{
			Host:         mode.Host,
			TLSCertPath:  mode.TLSCertPath,
			MacaroonPath: mode.MacaroonPath,
		}
		if err := cfg.validate(); err != nil {
			return err
		}
	}

	if err := c.disconnect(); err != nil {
		log.WithError(err).Warn("failed to disconnect before reconnecting")
	}
	c.cfg = cfg
	return c.connect()
}

func (c *Client) clients() (lnrpc.LightningClient, routerrpc.RouterClient, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	if c.conn == nil {
		return nil, nil, fmt.Errorf("lnd client is disconnected")
	}
	return c.ln, c.router, nil
}
