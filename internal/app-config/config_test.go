package appconfig

import (
	"testing"
	"time"

	"github.com/ark-network/ln-gateway/internal/config"
	"github.com/stretchr/testify/require"
)

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(&config.Config{
		DbType:                  "badger",
		DbDir:                   "/data/db",
		SchedulerType:           "gocron",
		LndHost:                 "lnd:10009",
		AnnouncementTTL:         time.Minute,
		RegistrationMaxAttempts: 3,
		SettleMaxAttempts:       7,
		RouteHintsCount:         4,
	})

	require.Equal(t, "badger", cfg.DbType)
	require.Equal(t, "/data/db", cfg.DbDir)
	require.Equal(t, "lnd:10009", cfg.LndHost)
	require.Equal(t, 4, cfg.RouteHintsCount)
	require.Equal(t, time.Minute, cfg.Actor.AnnouncementTTL)
	require.Equal(t, 3, cfg.Actor.RegistrationMaxAttempts)
	require.Equal(t, 7, cfg.Actor.SettleMaxAttempts)
}

func TestValidate(t *testing.T) {
	fixtures := []struct {
		name        string
		cfg         Config
		expectedErr string
	}{
		{
			name:        "unsupported db",
			cfg:         Config{DbType: "sqlite", SchedulerType: "gocron"},
			expectedErr: "db type not supported",
		},
		{
			name:        "missing db dir",
			cfg:         Config{DbType: "badger", SchedulerType: "gocron"},
			expectedErr: "missing db dir",
		},
		{
			name:        "unsupported scheduler",
			cfg:         Config{DbType: "inmemory", SchedulerType: "cron"},
			expectedErr: "scheduler type not supported",
		},
		{
			name: "negative route hints count",
			cfg: Config{
				DbType: "inmemory", SchedulerType: "gocron", RouteHintsCount: -1,
			},
			expectedErr: "invalid route hints count, must not be negative",
		},
		{
			name:        "missing lnd host",
			cfg:         Config{DbType: "inmemory", SchedulerType: "gocron"},
			expectedErr: "failed to connect to lnd: missing lnd host",
		},
		{
			name: "missing tls cert",
			cfg: Config{
				DbType: "inmemory", SchedulerType: "gocron",
				LndHost: "lnd:10009", LndTLSCertPath: "/does/not/exist",
				LndMacaroonPath: "/does/not/exist",
			},
			expectedErr: "failed to connect to lnd: failed to load tls cert",
		},
	}

	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			err := f.cfg.Validate()
			require.ErrorContains(t, err, f.expectedErr)
		})
	}

	t.Run("not validated", func(t *testing.T) {
		cfg := &Config{}
		gw, err := cfg.AppService()
		require.EqualError(t, err, "config not validated")
		require.Nil(t, gw)
	})
}

func TestRepoManager(t *testing.T) {
	t.Run("inmemory", func(t *testing.T) {
		cfg := &Config{DbType: "inmemory"}
		repoManager, err := cfg.repoManager("fed1")
		require.NoError(t, err)
		require.NotNil(t, repoManager.PendingSettlements())
		require.NotNil(t, repoManager.OutgoingPayments())
		repoManager.Close()
	})

	t.Run("badger", func(t *testing.T) {
		cfg := &Config{DbType: "badger", DbDir: t.TempDir()}

		fed1, err := cfg.repoManager("fed1")
		require.NoError(t, err)
		defer fed1.Close()

		// Stores of different federations don't share directories.
		fed2, err := cfg.repoManager("fed2")
		require.NoError(t, err)
		defer fed2.Close()
	})
}
