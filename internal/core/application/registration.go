package application

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// registerLoop keeps the gateway announcement alive: it renews it at half of
// its ttl and retries sooner, at a quarter of the ttl, when registration
// fails.
func (a *Actor) registerLoop(ctx context.Context) {
	ttl := a.cfg.AnnouncementTTL

	for {
		err := retry(ctx, "register with federation", func(ctx context.Context) error {
			registration := a.client.Config().ToRegistration(a.routeHints, ttl)
			return a.client.RegisterWithFederation(ctx, registration)
		}, a.cfg.RegistrationBackoff, a.cfg.RegistrationMaxAttempts)

		delay := ttl / 2
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithError(err).Warn("failed to register with federation")
			delay = ttl / 4
		} else {
			log.Info("registered with federation")
		}

		if !sleep(ctx, delay) {
			return
		}
	}
}
