package config

import (
	"errors"
	"io/fs"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// TariffMapping is the explicit alias table used to classify a tariff id.
// Aliases maps a lowercase product token to a tariff type; CampaignKeys maps a
// tariff type to its canonical campaign key.
type TariffMapping struct {
	Aliases      map[string]string `mapstructure:"aliases"`
	CampaignKeys map[string]string `mapstructure:"campaignKeys"`
}

func DefaultTariffMapping() TariffMapping {
	return TariffMapping{
		Aliases: map[string]string{
			"standard": "STANDARD",
			"fix":      "STANDARD",
			"fixed":    "STANDARD",
			"green":    "GREEN",
			"oeko":     "GREEN",
			"eco":      "GREEN",
			"dynamic":  "DYNAMIC",
		},
		CampaignKeys: map[string]string{
			"STANDARD": "fix-12",
			"GREEN":    "green-12",
			"DYNAMIC":  "dynamic",
		},
	}
}

type TariffMappingHolder struct {
	current atomic.Value // holds TariffMapping
}

// StaticTariffMapping returns a holder that never reloads.
func StaticTariffMapping(m TariffMapping) *TariffMappingHolder {
	holder := &TariffMappingHolder{}
	holder.current.Store(normalizeTariffMapping(m))
	return holder
}

func NewTariffMappingHolder(cfg Config, log *zap.Logger) (*TariffMappingHolder, error) {
	log = log.Named("config.tariff_mapping")
	v := viper.New()

	if cfg.TariffMappingPath != "" {
		v.SetConfigFile(cfg.TariffMappingPath)
	} else {
		v.SetConfigName("onboarding")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/onboarding")
		v.AddConfigPath(".")
	}

	defaults := DefaultTariffMapping()
	v.SetDefault("tariffs.aliases", defaults.Aliases)
	v.SetDefault("tariffs.campaignKeys", defaults.CampaignKeys)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		fileLoaded = false
	}

	cfgMapping, err := readTariffMapping(v)
	if err != nil {
		return nil, err
	}

	holder := &TariffMappingHolder{}
	holder.current.Store(cfgMapping)

	if !fileLoaded {
		log.Info("tariff mapping file not found, using defaults")
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := readTariffMapping(v)
		if err != nil {
			log.Warn("tariff mapping reload ignored", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("tariff mapping reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *TariffMappingHolder) Get() TariffMapping {
	return h.current.Load().(TariffMapping)
}

func readTariffMapping(v *viper.Viper) (TariffMapping, error) {
	var m TariffMapping
	if err := v.UnmarshalKey("tariffs", &m); err != nil {
		return TariffMapping{}, err
	}
	m = normalizeTariffMapping(m)
	if err := validateTariffMapping(m); err != nil {
		return TariffMapping{}, err
	}
	return m, nil
}

// viper lowercases map keys, so tariff types are upper-cased again here.
func normalizeTariffMapping(m TariffMapping) TariffMapping {
	out := TariffMapping{
		Aliases:      make(map[string]string, len(m.Aliases)),
		CampaignKeys: make(map[string]string, len(m.CampaignKeys)),
	}
	for alias, tariffType := range m.Aliases {
		out.Aliases[strings.ToLower(strings.TrimSpace(alias))] = strings.ToUpper(strings.TrimSpace(tariffType))
	}
	for tariffType, key := range m.CampaignKeys {
		out.CampaignKeys[strings.ToUpper(strings.TrimSpace(tariffType))] = strings.TrimSpace(key)
	}
	return out
}

func validateTariffMapping(m TariffMapping) error {
	if len(m.Aliases) == 0 {
		return errors.New("tariffs.aliases cannot be empty")
	}
	for _, tariffType := range m.Aliases {
		if _, ok := m.CampaignKeys[tariffType]; !ok {
			return errors.New("tariffs.campaignKeys missing entry for " + tariffType)
		}
	}
	return nil
}
