package config

import (
	"errors"
	"log"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ReminderConfig controls which lead intervals (in days before expiry) fire
// a reminder, and how often an already-expired condition re-notifies.
type ReminderConfig struct {
	IntervalDays        []int `mapstructure:"intervalDays"`
	ExpiredCooldownHrs  int   `mapstructure:"expiredCooldownHours"`
	WarningWindowDays   int   `mapstructure:"warningWindowDays"`
	PenaltyGraceDays    int   `mapstructure:"penaltyGraceDays"`
	PenaltyGapThreshold int   `mapstructure:"penaltyGapThresholdDays"`
}

func DefaultReminderConfig() ReminderConfig {
	return ReminderConfig{
		IntervalDays:        []int{14, 7, 3, 1},
		ExpiredCooldownHrs:  24,
		WarningWindowDays:   30,
		PenaltyGraceDays:    30,
		PenaltyGapThreshold: 30,
	}
}

// ReminderConfigHolder serves the current reminder configuration and
// hot-reloads it when the backing file changes. Readers call Current();
// writers are the fsnotify callback only.
type ReminderConfigHolder struct {
	current atomic.Value // holds ReminderConfig
}

func NewReminderConfigHolder() (*ReminderConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("reminders")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/fleetguard/config")
	v.AddConfigPath("/etc/fleetguard")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FLEETGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &ReminderConfigHolder{}

	load := func() error {
		cfg := DefaultReminderConfig()
		if err := v.UnmarshalKey("reminders", &cfg); err != nil {
			return err
		}
		if err := validateReminderConfig(cfg); err != nil {
			return err
		}
		sort.Sort(sort.Reverse(sort.IntSlice(cfg.IntervalDays)))
		holder.current.Store(cfg)
		return nil
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		holder.current.Store(DefaultReminderConfig())
	} else {
		if err := load(); err != nil {
			return nil, err
		}
		v.OnConfigChange(func(_ fsnotify.Event) {
			if err := load(); err != nil {
				log.Printf("reminder config reload rejected: %v", err)
			}
		})
		v.WatchConfig()
	}

	return holder, nil
}

// NewStaticReminderConfigHolder wraps a fixed configuration with no file
// watching. Used by tests and one-shot CLI runs.
func NewStaticReminderConfigHolder(cfg ReminderConfig) *ReminderConfigHolder {
	holder := &ReminderConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *ReminderConfigHolder) Current() ReminderConfig {
	if cfg, ok := h.current.Load().(ReminderConfig); ok {
		return cfg
	}
	return DefaultReminderConfig()
}

func validateReminderConfig(cfg ReminderConfig) error {
	if len(cfg.IntervalDays) == 0 {
		return errors.New("reminders.intervalDays must not be empty")
	}
	for _, d := range cfg.IntervalDays {
		if d <= 0 {
			return errors.New("reminders.intervalDays must be positive")
		}
	}
	if cfg.ExpiredCooldownHrs <= 0 {
		return errors.New("reminders.expiredCooldownHours must be positive")
	}
	return nil
}
