package main

import (
	"os"
	"os/signal"
	"syscall"

	appconfig "github.com/ark-network/ln-gateway/internal/app-config"
	"github.com/ark-network/ln-gateway/internal/config"
	log "github.com/sirupsen/logrus"
)

//nolint:all
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	log.SetLevel(log.Level(cfg.LogLevel))
	log.Debugf("config: %s", cfg)

	appConfig := appconfig.FromConfig(cfg)
	if err := appConfig.Validate(); err != nil {
		log.WithError(err).Fatal("invalid app config")
	}

	gateway, err := appConfig.AppService()
	if err != nil {
		log.Fatal(err)
	}

	log.RegisterExitHandler(gateway.Stop)

	log.Infof("starting gateway %s (commit %s, built %s)...", version, commit, date)
	gateway.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT, os.Interrupt)
	<-sigChan

	log.Info("shutting down gateway...")
	log.Exit(0)
}
