package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ClientConfig holds the terminal client settings.
type ClientConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	LogLevel       string        `mapstructure:"log_level"`
}

// LoadClient reads the client configuration. An explicit path must exist;
// with an empty path the default location is used when present. Environment
// variables prefixed with EXAMSATHI_ override the file.
func LoadClient(path string) (*ClientConfig, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("api_url", "http://localhost:5000")
	v.SetDefault("request_timeout", "0s")
	v.SetDefault("log_level", "warn")

	v.SetEnvPrefix("EXAMSATHI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.SetConfigName("config")
			v.AddConfigPath(filepath.Join(home, ".config", "examsathi"))
			if err := v.ReadInConfig(); err != nil {
				var notFound viper.ConfigFileNotFoundError
				if !errors.As(err, &notFound) {
					return nil, fmt.Errorf("failed to read config: %w", err)
				}
			}
		}
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.RequestTimeout < 0 {
		return nil, fmt.Errorf("request_timeout must not be negative")
	}

	return &cfg, nil
}
