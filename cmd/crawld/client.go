package main

import (
	"github.com/spf13/cobra"

	"crawld/internal/config"
	"crawld/internal/model"
	"crawld/internal/server"
)

// addAddrFlag registers the daemon address flag shared by the client
// commands.
func addAddrFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("addr", "a", config.DefaultListenAddress,
		"Address of the running daemon (host:port)")
}

// sendCommand sends one command to the daemon named by the --addr flag.
// The protocol is fire-and-forget: success means the daemon accepted
// the bytes, and any outcome shows up in the daemon's own output.
func sendCommand(cmd *cobra.Command, c model.Command) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}
	return server.NewClient(addr).Send(cmd.Context(), c)
}

// NewStartCmd creates the start command.
func NewStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <url>",
		Short: "Start crawling a URL",
		Long: `Start tells the daemon to begin crawling the given URL.

The URL's domain is marked active and the page is fetched; every link
on it that points within the same domain is crawled in turn. Starting
a URL whose domain was stopped reactivates the domain.

Examples:
  crawld start http://example.com
  crawld start http://example.com/docs --addr 127.0.0.1:9000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendCommand(cmd, model.StartCommand(args[0]))
		},
	}
	addAddrFlag(cmd)
	return cmd
}

// NewStopCmd creates the stop command.
func NewStopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop <url>",
		Short: "Stop crawling a URL's domain",
		Long: `Stop tells the daemon to stop crawling the given URL's domain.

In-flight fetches are not interrupted; they finish, and any further
crawling within the domain quietly stops. Stopping a domain that was
never started is a no-op.

Examples:
  crawld stop http://example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendCommand(cmd, model.StopCommand(args[0]))
		},
	}
	addAddrFlag(cmd)
	return cmd
}

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the daemon's discovery tree",
		Long: `List tells the daemon to print its discovery tree.

The tree shows which page led to which, one domain root per tree. The
output appears on the daemon's stdout, not here: the command transport
is one-way by design.

Examples:
  crawld list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sendCommand(cmd, model.ListCommand())
		},
	}
	addAddrFlag(cmd)
	return cmd
}
