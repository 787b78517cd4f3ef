package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

/* Config holds the process-wide bridge configuration.
 * Loaded once at startup and never mutated afterwards.
 */

type Config struct {
	Port        string `mapstructure:"PORT"`
	BaseURL     string `mapstructure:"BASE_URL"`
	APIKey      string `mapstructure:"API_KEY"`
	CollectorID string `mapstructure:"COLLECTOR_ID"`

	InboundHeaderName  string `mapstructure:"INBOUND_HEADER_NAME"`
	InboundHeaderValue string `mapstructure:"INBOUND_HEADER_VALUE"`
	WebhookSecret      string `mapstructure:"WEBHOOK_SECRET"`
	SignatureHeader    string `mapstructure:"SIGNATURE_HEADER"`
	HMACAlgo           string `mapstructure:"HMAC_ALGO"`

	PublicBaseURL      string `mapstructure:"PUBLIC_BASE_URL"`
	UpstreamRoutesFile string `mapstructure:"UPSTREAM_ROUTES_FILE"`
}

func GetConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Registering defaults makes the keys visible to AutomaticEnv
	viper.SetDefault("PORT", "3000")
	viper.SetDefault("BASE_URL", "")
	viper.SetDefault("API_KEY", "")
	viper.SetDefault("COLLECTOR_ID", "")
	viper.SetDefault("INBOUND_HEADER_NAME", "")
	viper.SetDefault("INBOUND_HEADER_VALUE", "")
	viper.SetDefault("WEBHOOK_SECRET", "")
	viper.SetDefault("SIGNATURE_HEADER", "X-Cucuru-Signature")
	viper.SetDefault("HMAC_ALGO", "sha256")
	viper.SetDefault("PUBLIC_BASE_URL", "")
	viper.SetDefault("UPSTREAM_ROUTES_FILE", "")

	// The .env file is optional; the environment alone is enough
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the mandatory provider settings. The process must not
// start serving traffic without them.
func (c *Config) Validate() error {
	var missing []string
	if c.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}
	if c.APIKey == "" {
		missing = append(missing, "API_KEY")
	}
	if c.CollectorID == "" {
		missing = append(missing, "COLLECTOR_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
