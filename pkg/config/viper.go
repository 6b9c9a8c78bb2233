package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config file (if one
// exists at the given path or in the working directory), and binds
// environment variables with the QUIP_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound by the command layer)
//  2. Environment variables (QUIP_IRC_SERVER, QUIP_COMPLETION_API_KEY, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configPath string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("quip")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("QUIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// Load unmarshals the resolved configuration into a typed Config.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// IRC
	v.SetDefault("irc.server", d.IRC.Server)
	v.SetDefault("irc.port", d.IRC.Port)
	v.SetDefault("irc.tls", d.IRC.TLS)
	v.SetDefault("irc.nick", d.IRC.Nick)
	v.SetDefault("irc.channels", d.IRC.Channels)

	// Completion
	v.SetDefault("completion.base_url", d.Completion.BaseURL)
	v.SetDefault("completion.model", d.Completion.Model)
	v.SetDefault("completion.api_key", d.Completion.APIKey)
	v.SetDefault("completion.max_tokens", d.Completion.MaxTokens)

	// Relay
	v.SetDefault("relay.send_delay", d.Relay.SendDelay)
	v.SetDefault("relay.reconnect_backoff", d.Relay.ReconnectBackoff)

	// API
	v.SetDefault("api.listen", d.API.Listen)

	// Event stream
	v.SetDefault("eventstream.provider", d.EventStream.Provider)
	v.SetDefault("eventstream.brokers", d.EventStream.Brokers)
	v.SetDefault("eventstream.topic", d.EventStream.Topic)
}
