package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/viper"
)

type Config struct {
	Datadir  string
	LogLevel int

	DbType        string
	DbDir         string
	SchedulerType string

	LndHost         string
	LndTLSCertPath  string
	LndMacaroonPath string

	AnnouncementTTL         time.Duration
	RegistrationMaxAttempts int
	RegistrationBackoff     time.Duration
	SettleRetryInterval     time.Duration
	SettleMaxAttempts       int
	RouteHintsCount         int
	RestoreGapLimit         int
}

func (c *Config) String() string {
	json, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("error while marshalling config JSON: %s", err)
	}
	return string(json)
}

var (
	Datadir                 = "DATADIR"
	LogLevel                = "LOG_LEVEL"
	DbType                  = "DB_TYPE"
	SchedulerType           = "SCHEDULER_TYPE"
	LndHost                 = "LND_HOST"
	LndTLSCertPath          = "LND_TLS_CERT_PATH"
	LndMacaroonPath         = "LND_MACAROON_PATH"
	AnnouncementTTL         = "ANNOUNCEMENT_TTL"
	RegistrationMaxAttempts = "REGISTRATION_MAX_ATTEMPTS"
	RegistrationBackoff     = "REGISTRATION_BACKOFF"
	SettleRetryInterval     = "SETTLE_RETRY_INTERVAL"
	SettleMaxAttempts       = "SETTLE_MAX_ATTEMPTS"
	RouteHintsCount         = "ROUTE_HINTS_COUNT"
	RestoreGapLimit         = "RESTORE_GAP_LIMIT"

	defaultDatadir                 = btcutil.AppDataDir("lngateway", false)
	defaultLogLevel                = 4
	defaultDbType                  = "badger"
	defaultSchedulerType           = "gocron"
	defaultLndHost                 = "localhost:10009"
	defaultAnnouncementTTL         = 600 // 10 minutes
	defaultRegistrationMaxAttempts = 5
	defaultRegistrationBackoff     = 1
	defaultSettleRetryInterval     = 30
	defaultSettleMaxAttempts       = 20
	defaultRouteHintsCount         = 10
	defaultRestoreGapLimit         = 10
)

func LoadConfig() (*Config, error) {
	viper.SetEnvPrefix("LNGATEWAY")
	viper.AutomaticEnv()

	viper.SetDefault(Datadir, defaultDatadir)
	viper.SetDefault(LogLevel, defaultLogLevel)
	viper.SetDefault(DbType, defaultDbType)
	viper.SetDefault(SchedulerType, defaultSchedulerType)
	viper.SetDefault(LndHost, defaultLndHost)
	viper.SetDefault(AnnouncementTTL, defaultAnnouncementTTL)
	viper.SetDefault(RegistrationMaxAttempts, defaultRegistrationMaxAttempts)
	viper.SetDefault(RegistrationBackoff, defaultRegistrationBackoff)
	viper.SetDefault(SettleRetryInterval, defaultSettleRetryInterval)
	viper.SetDefault(SettleMaxAttempts, defaultSettleMaxAttempts)
	viper.SetDefault(RouteHintsCount, defaultRouteHintsCount)
	viper.SetDefault(RestoreGapLimit, defaultRestoreGapLimit)

	if err := initDatadir(); err != nil {
		return nil, fmt.Errorf("error while creating datadir: %s", err)
	}

	datadir := viper.GetString(Datadir)
	cfg := &Config{
		Datadir:                 datadir,
		LogLevel:                viper.GetInt(LogLevel),
		DbType:                  viper.GetString(DbType),
		DbDir:                   filepath.Join(datadir, "db"),
		SchedulerType:           viper.GetString(SchedulerType),
		LndHost:                 viper.GetString(LndHost),
		LndTLSCertPath:          viper.GetString(LndTLSCertPath),
		LndMacaroonPath:         viper.GetString(LndMacaroonPath),
		AnnouncementTTL:         seconds(viper.GetInt64(AnnouncementTTL)),
		RegistrationMaxAttempts: viper.GetInt(RegistrationMaxAttempts),
		RegistrationBackoff:     seconds(viper.GetInt64(RegistrationBackoff)),
		SettleRetryInterval:     seconds(viper.GetInt64(SettleRetryInterval)),
		SettleMaxAttempts:       viper.GetInt(SettleMaxAttempts),
		RouteHintsCount:         viper.GetInt(RouteHintsCount),
		RestoreGapLimit:         viper.GetInt(RestoreGapLimit),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.LndTLSCertPath) <= 0 {
		return fmt.Errorf("missing lnd tls cert path")
	}
	if len(c.LndMacaroonPath) <= 0 {
		return fmt.Errorf("missing lnd macaroon path")
	}
	if c.AnnouncementTTL < 2*time.Second {
		return fmt.Errorf("invalid announcement ttl, must be at least 2 seconds")
	}
	if c.RegistrationMaxAttempts < 1 {
		return fmt.Errorf("invalid registration max attempts, must be at least 1")
	}
	if c.SettleRetryInterval < time.Second {
		return fmt.Errorf("invalid settle retry interval, must be at least 1 second")
	}
	if c.SettleMaxAttempts < 1 {
		return fmt.Errorf("invalid settle max attempts, must be at least 1")
	}
	if c.RouteHintsCount < 0 {
		return fmt.Errorf("invalid route hints count, must not be negative")
	}
	return nil
}

func seconds(n int64) time.Duration {
	return time.Duration(n) * time.Second
}

func initDatadir() error {
	datadir := viper.GetString(Datadir)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
