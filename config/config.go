// Package config loads the lifelens configuration from an optional config
// file plus LIFELENS_* environment overrides, applying defaults in code.
package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/lifelens-io/lifelens/dataset"
	"github.com/lifelens-io/lifelens/pkg/errors"
)

// Config is the whole process configuration.
type Config struct {
	Data   DataConfig   `mapstructure:"data"`
	Server ServerConfig `mapstructure:"server"`
	Model  ModelConfig  `mapstructure:"model"`
	Log    LogConfig    `mapstructure:"log"`
}

// DataConfig locates the hosted CSV and its local cache.
type DataConfig struct {
	URL       string `mapstructure:"url" validate:"required,url"`
	CachePath string `mapstructure:"cache_path" validate:"required"`
}

// ServerConfig is the REST listener address.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"gte=1,lte=65535"`
}

// ModelConfig holds the artifact directory and forest hyperparameters.
type ModelConfig struct {
	Dir         string `mapstructure:"dir" validate:"required"`
	Trees       int    `mapstructure:"trees" validate:"gte=1"`
	MaxDepth    int    `mapstructure:"max_depth" validate:"gte=1"`
	RandomState int64  `mapstructure:"random_state"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=1"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.url", dataset.DefaultDataURL)
	v.SetDefault("data.cache_path", "data/global_development_data.csv")
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8088)
	v.SetDefault("model.dir", "artifacts")
	v.SetDefault("model.trees", 100)
	v.SetDefault("model.max_depth", 16)
	v.SetDefault("model.random_state", 42)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
}

// Load reads the config file at path (optional, empty means defaults plus
// environment) and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("lifelens")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}
