package config

import "time"

const (
	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

// NewDefaultConfig returns the config used when no file, environment, or
// flag overrides are present.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		IRC: IRCConfig{
			Server:   "irc.libera.chat",
			Port:     6667,
			TLS:      false,
			Nick:     "quip",
			Channels: []string{},
		},
		Completion: CompletionConfig{
			BaseURL:   "https://api.openai.com",
			Model:     "gpt-3.5-turbo",
			MaxTokens: 2048,
		},
		Relay: RelayConfig{
			SendDelay:        750 * time.Millisecond,
			ReconnectBackoff: 30 * time.Second,
		},
		API: APIConfig{
			Listen: "",
		},
		EventStream: EventStreamConfig{
			Provider: "nop",
		},
	}
}
