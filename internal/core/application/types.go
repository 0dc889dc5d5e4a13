package application

import "time"

const (
	// DefaultAnnouncementTTL is how long a gateway announcement stays valid.
	DefaultAnnouncementTTL         = 10 * time.Minute
	DefaultRegistrationMaxAttempts = 5
	DefaultRegistrationBackoff     = time.Second
	DefaultSettleRetryInterval     = 30 * time.Second
	DefaultSettleMaxAttempts       = 20
	DefaultRestoreGapLimit         = 10
)

type ActorConfig struct {
	AnnouncementTTL         time.Duration
	RegistrationMaxAttempts int
	RegistrationBackoff     time.Duration
	SettleRetryInterval     time.Duration
	SettleMaxAttempts       int
	RestoreGapLimit         int
}

func DefaultActorConfig() ActorConfig {
	return ActorConfig{
		AnnouncementTTL:         DefaultAnnouncementTTL,
		RegistrationMaxAttempts: DefaultRegistrationMaxAttempts,
		RegistrationBackoff:     DefaultRegistrationBackoff,
		SettleRetryInterval:     DefaultSettleRetryInterval,
		SettleMaxAttempts:       DefaultSettleMaxAttempts,
		RestoreGapLimit:         DefaultRestoreGapLimit,
	}
}

func (c ActorConfig) withDefaults() ActorConfig {
	def := DefaultActorConfig()
	if c.AnnouncementTTL <= 0 {
		c.AnnouncementTTL = def.AnnouncementTTL
	}
	if c.RegistrationMaxAttempts <= 0 {
		c.RegistrationMaxAttempts = def.RegistrationMaxAttempts
	}
	if c.RegistrationBackoff <= 0 {
		c.RegistrationBackoff = def.RegistrationBackoff
	}
	if c.SettleRetryInterval <= 0 {
		c.SettleRetryInterval = def.SettleRetryInterval
	}
	if c.SettleMaxAttempts <= 0 {
		c.SettleMaxAttempts = def.SettleMaxAttempts
	}
	if c.RestoreGapLimit <= 0 {
		c.RestoreGapLimit = def.RestoreGapLimit
	}
	return c
}
