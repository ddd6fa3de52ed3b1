package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "KCFGRAPH"

// newViper builds a pre-configured Viper instance: YAML file type, KCFGRAPH_
// env prefix, automatic env binding, a key replacer that maps "." → "_" so
// that nested keys like "redis.addr" resolve to "KCFGRAPH_REDIS_ADDR", and
// every default registered so that env-only loading can see each key.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, value := range defaultValues() {
		v.SetDefault(key, value)
	}
	return v
}

// Load reads the YAML file at configPath, merges any KCFGRAPH_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.  An empty configPath behaves like LoadFromEnv.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from KCFGRAPH_* environment variables
// and defaults, with no config file required.
//
// Environment variable naming convention:
//
//	KCFGRAPH_<SECTION>_<FIELD>   e.g.  KCFGRAPH_BATCH_CONCURRENCY, KCFGRAPH_REDIS_ADDR
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file is modified on disk.  Only the log level
// is applied at runtime by the commands; other sections need a restart.
//
// Watch is non-blocking; viper runs the watcher goroutine.  A change that
// fails to parse or validate is reported to onError (if non-nil) and
// onChange is not called.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// MustLoad is a convenience wrapper around Load that panics on any error.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
