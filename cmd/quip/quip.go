// Package quipcmder
package quipcmder

import (
	servecmder "github.com/papercomputeco/quip/cmd/quip/serve"
	"github.com/spf13/cobra"
)

const quipLongDesc string = `Quip is a conversational IRC relay.

It sits in your channels, forwards messages addressed to it to a chat
completion service with bounded per-user context, and paces the reply back
through the channel.

Run the relay using:
  quip serve           Connect and relay until interrupted`

const quipShortDesc string = "Quip - IRC chat relay"

func NewQuipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quip",
		Short: quipShortDesc,
		Long:  quipLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config", "", "Path to config file (default: ./quip.toml)")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())

	return cmd
}
