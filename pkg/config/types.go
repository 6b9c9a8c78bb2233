// Package config defines the configuration surface for the quip relay and
// loads it via viper with file, environment, and flag precedence.
package config

import "time"

// Config is the full runtime configuration.
type Config struct {
	Version int `mapstructure:"version"`

	IRC         IRCConfig         `mapstructure:"irc"`
	Completion  CompletionConfig  `mapstructure:"completion"`
	Relay       RelayConfig       `mapstructure:"relay"`
	API         APIConfig         `mapstructure:"api"`
	EventStream EventStreamConfig `mapstructure:"eventstream"`
}

// IRCConfig holds the transport connection settings.
type IRCConfig struct {
	Server   string   `mapstructure:"server"`
	Port     int      `mapstructure:"port"`
	TLS      bool     `mapstructure:"tls"`
	Nick     string   `mapstructure:"nick"`
	Channels []string `mapstructure:"channels"`
}

// CompletionConfig holds the completion-service client settings.
type CompletionConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Model     string `mapstructure:"model"`
	APIKey    string `mapstructure:"api_key"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// RelayConfig holds the relay's pacing and supervision tunables.
type RelayConfig struct {
	// SendDelay is the pause between consecutive outbound chunks.
	SendDelay time.Duration `mapstructure:"send_delay"`

	// ReconnectBackoff is the pause between a session ending and the next
	// connection attempt.
	ReconnectBackoff time.Duration `mapstructure:"reconnect_backoff"`
}

// APIConfig holds the optional status API settings. An empty Listen disables
// the server.
type APIConfig struct {
	Listen string `mapstructure:"listen"`
}

// EventStreamConfig selects and configures the exchange-event publisher.
type EventStreamConfig struct {
	// Provider is "nop" or "kafka".
	Provider string `mapstructure:"provider"`

	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}
