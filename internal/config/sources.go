package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// SourcesConfig points each rule kind at its tabular source file.
// A path may reference a file that does not exist; the loader treats a
// missing source as "feature not configured" and skips the kind.
type SourcesConfig struct {
	TreeCSV    string `mapstructure:"treeCsv"`
	PatchCSV   string `mapstructure:"patchCsv"`
	AppCSV     string `mapstructure:"appCsv"`
	SpeciesCSV string `mapstructure:"speciesCsv"`
}

func DefaultSourcesConfig() SourcesConfig {
	return SourcesConfig{
		TreeCSV:    "federal_compensation.csv",
		PatchCSV:   "patch_compensation.csv",
		AppCSV:     "app_compensation.csv",
		SpeciesCSV: "species_status.csv",
	}
}

// SourcesHolder keeps the current SourcesConfig behind an atomic value so
// readers never observe a partially applied reload.
type SourcesHolder struct {
	current atomic.Value // holds SourcesConfig
}

func NewSourcesHolder() (*SourcesHolder, error) {
	v := viper.New()

	v.SetConfigName("sources")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/compensa")
	v.AddConfigPath(".")

	v.SetEnvPrefix("COMPENSA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultSourcesConfig()
	v.SetDefault("sources.treeCsv", defaults.TreeCSV)
	v.SetDefault("sources.patchCsv", defaults.PatchCSV)
	v.SetDefault("sources.appCsv", defaults.AppCSV)
	v.SetDefault("sources.speciesCsv", defaults.SpeciesCSV)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg SourcesConfig
	if err := v.UnmarshalKey("sources", &cfg); err != nil {
		return nil, err
	}
	if err := validateSourcesConfig(cfg); err != nil {
		return nil, err
	}

	holder := &SourcesHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated SourcesConfig
		if err := v.UnmarshalKey("sources", &updated); err != nil {
			log.Printf("[sources-config] reload failed: %v", err)
			return
		}
		if err := validateSourcesConfig(updated); err != nil {
			log.Printf("[sources-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[sources-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticSourcesHolder wraps a fixed SourcesConfig without file watching.
func NewStaticSourcesHolder(cfg SourcesConfig) *SourcesHolder {
	holder := &SourcesHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *SourcesHolder) Get() SourcesConfig {
	return h.current.Load().(SourcesConfig)
}

func validateSourcesConfig(cfg SourcesConfig) error {
	if strings.TrimSpace(cfg.TreeCSV) == "" ||
		strings.TrimSpace(cfg.PatchCSV) == "" ||
		strings.TrimSpace(cfg.AppCSV) == "" ||
		strings.TrimSpace(cfg.SpeciesCSV) == "" {
		return errors.New("sources paths cannot be empty")
	}
	return nil
}
