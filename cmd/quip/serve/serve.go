// Package servecmder provides the serve command that runs the relay.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/papercomputeco/quip/api"
	"github.com/papercomputeco/quip/pkg/config"
	"github.com/papercomputeco/quip/pkg/eventstream"
	eskafka "github.com/papercomputeco/quip/pkg/eventstream/kafka"
	"github.com/papercomputeco/quip/pkg/eventstream/nop"
	"github.com/papercomputeco/quip/pkg/irc"
	"github.com/papercomputeco/quip/pkg/llm/openai"
	"github.com/papercomputeco/quip/pkg/logger"
	"github.com/papercomputeco/quip/pkg/relay"
)

type ServeCommander struct {
	cfg    *config.Config
	debug  bool
	logger *zap.Logger
}

const serveLongDesc string = `Run the quip relay.

Connects to the configured IRC server, joins the monitored channels, and
relays addressed messages to the completion service until interrupted.
The relay reconnects on its own after transport failures; it never exits
on error.

Configuration comes from quip.toml, QUIP_* environment variables, and the
flags below, in increasing precedence.

Examples:
  quip serve --server irc.libera.chat --nick quip --channel '#quiptest'
  QUIP_COMPLETION_API_KEY=sk-... quip serve --api-listen :8081`

const serveShortDesc string = "Run the quip relay"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")

			v, err := config.InitViper(configPath)
			if err != nil {
				return err
			}
			bindFlags(cmd, v)

			cmder.cfg, err = config.Load(v)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run()
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().String("server", defaults.IRC.Server, "IRC server hostname")
	cmd.Flags().Int("port", defaults.IRC.Port, "IRC server port")
	cmd.Flags().Bool("tls", defaults.IRC.TLS, "Connect over TLS")
	cmd.Flags().StringP("nick", "n", defaults.IRC.Nick, "Bot nick")
	cmd.Flags().StringSliceP("channel", "c", defaults.IRC.Channels, "Channel to monitor (repeatable)")
	cmd.Flags().StringP("model", "m", defaults.Completion.Model, "Chat completion model")
	cmd.Flags().StringP("upstream", "u", defaults.Completion.BaseURL, "Completion service base URL")
	cmd.Flags().StringP("api-listen", "a", defaults.API.Listen, "Status API listen address (empty: disabled)")

	return cmd
}

// bindFlags maps the serve flags onto their config keys so flag values win
// over file and environment values.
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	flagKeys := map[string]string{
		"server":     "irc.server",
		"port":       "irc.port",
		"tls":        "irc.tls",
		"nick":       "irc.nick",
		"channel":    "irc.channels",
		"model":      "completion.model",
		"upstream":   "completion.base_url",
		"api-listen": "api.listen",
	}
	for flag, key := range flagKeys {
		if cmd.Flags().Changed(flag) {
			_ = v.BindPFlag(key, cmd.Flags().Lookup(flag))
		}
	}
}

func (c *ServeCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	completer, err := openai.NewClient(openai.Config{
		BaseURL: c.cfg.Completion.BaseURL,
		Model:   c.cfg.Completion.Model,
		APIKey:  c.cfg.Completion.APIKey,
	})
	if err != nil {
		return fmt.Errorf("creating completion client: %w", err)
	}

	publisher, err := c.createPublisher()
	if err != nil {
		return err
	}
	defer publisher.Close()

	ircCfg := irc.Config{
		Server:   c.cfg.IRC.Server,
		Port:     c.cfg.IRC.Port,
		TLS:      c.cfg.IRC.TLS,
		Nick:     c.cfg.IRC.Nick,
		Channels: c.cfg.IRC.Channels,
	}
	dial := func(_ context.Context) (relay.Session, error) {
		return irc.Connect(ircCfg, c.logger)
	}

	supervisor := relay.New(relay.Config{
		Channels:         c.cfg.IRC.Channels,
		MaxTokens:        c.cfg.Completion.MaxTokens,
		SendDelay:        c.cfg.Relay.SendDelay,
		ReconnectBackoff: c.cfg.Relay.ReconnectBackoff,
	}, dial, completer, publisher, c.logger)

	c.logger.Info("starting relay",
		zap.String("server", c.cfg.IRC.Server),
		zap.Int("port", c.cfg.IRC.Port),
		zap.String("nick", c.cfg.IRC.Nick),
		zap.Strings("channels", c.cfg.IRC.Channels),
		zap.String("model", c.cfg.Completion.Model),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Channel to capture errors from goroutines
	errChan := make(chan error, 2)

	go func() {
		if err := supervisor.Run(ctx); err != nil {
			errChan <- fmt.Errorf("relay error: %w", err)
		}
	}()

	if c.cfg.API.Listen != "" {
		apiServer := api.NewServer(api.Config{ListenAddr: c.cfg.API.Listen}, supervisor, c.logger)
		defer apiServer.Shutdown()

		go func() {
			if err := apiServer.Run(); err != nil {
				errChan <- fmt.Errorf("API server error: %w", err)
			}
		}()
	}

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return nil
	}
}

func (c *ServeCommander) createPublisher() (eventstream.Publisher, error) {
	switch c.cfg.EventStream.Provider {
	case "", "nop":
		return nop.NewPublisher(), nil
	case "kafka":
		return eskafka.NewPublisher(eskafka.Config{
			Brokers: c.cfg.EventStream.Brokers,
			Topic:   c.cfg.EventStream.Topic,
		})
	default:
		return nil, fmt.Errorf("unknown eventstream provider: %q", c.cfg.EventStream.Provider)
	}
}
