package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type StoreConfig struct {
	// Backend selects where credentials are persisted: "file" or "redis".
	Backend string
	Path    string
	// Secret enables at-rest encryption of the file store when set.
	Secret string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

type ServeConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// RevalidateInterval is how often the running server re-checks the
	// held token against the backend.
	RevalidateInterval time.Duration
}

type AppConfig struct {
	Environment string
	API         APIConfig
	Store       StoreConfig
	Redis       RedisConfig
	Serve       ServeConfig
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.config/authctl")

	v.SetEnvPrefix("MATDEPOT")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("api.baseurl is required")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("api.timeout", "15s")

	v.SetDefault("store.backend", "file")
	v.SetDefault("store.path", "$HOME/.config/authctl/credentials.json")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key", "authctl:credentials")

	v.SetDefault("serve.host", "127.0.0.1")
	v.SetDefault("serve.port", 8321)
	v.SetDefault("serve.readtimeout", "10s")
	v.SetDefault("serve.writetimeout", "15s")
	v.SetDefault("serve.idletimeout", "60s")
	v.SetDefault("serve.revalidateinterval", "10m")
}
