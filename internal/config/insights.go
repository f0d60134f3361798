package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// InsightsConfig holds the prediction policy. The lookback window is fixed
// independently of the trend window requested for display.
type InsightsConfig struct {
	LookbackDays      int `mapstructure:"lookbackDays"`
	WarningCutoffDays int `mapstructure:"warningCutoffDays"`
}

func DefaultInsightsConfig() InsightsConfig {
	return InsightsConfig{
		LookbackDays:      14,
		WarningCutoffDays: 7,
	}
}

// InsightsConfigHolder serves the current policy and hot-reloads it when the
// config file changes.
type InsightsConfigHolder struct {
	current atomic.Value // holds InsightsConfig
}

func NewInsightsConfigHolder() (*InsightsConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("insights")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/boxtrack")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BOXTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultInsightsConfig()
	v.SetDefault("insights.lookbackDays", defaults.LookbackDays)
	v.SetDefault("insights.warningCutoffDays", defaults.WarningCutoffDays)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg InsightsConfig
	if err := v.UnmarshalKey("insights", &cfg); err != nil {
		return nil, err
	}
	if err := validateInsightsConfig(cfg); err != nil {
		return nil, err
	}

	holder := &InsightsConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		// The holder can be constructed before fx wires a logger; the
		// process global is replaced by pkg/log at startup.
		log := zap.L().Named("insights.config")

		var updated InsightsConfig
		if err := v.UnmarshalKey("insights", &updated); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validateInsightsConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("policy reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *InsightsConfigHolder) Get() InsightsConfig {
	return h.current.Load().(InsightsConfig)
}

// NewStaticInsightsConfigHolder returns a holder with a fixed policy.
// Intended for tests.
func NewStaticInsightsConfigHolder(cfg InsightsConfig) *InsightsConfigHolder {
	holder := &InsightsConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func validateInsightsConfig(cfg InsightsConfig) error {
	if cfg.LookbackDays <= 0 {
		return errors.New("insights.lookbackDays must be positive")
	}
	if cfg.WarningCutoffDays <= 0 {
		return errors.New("insights.warningCutoffDays must be positive")
	}
	return nil
}
