// Package cli implements the apikit command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	baseURL    string
	logLevel   string
	backend    string
}

// NewRootCommand creates the apikit root command with all subcommands attached.
func NewRootCommand() *cobra.Command {
	g := &globals{}
	cmd := &cobra.Command{
		Use:   "apikit",
		Short: "apikit - admin API client",
		Long: `apikit sends authenticated requests to the admin backend and unwraps the
{code, msg, data} envelope. Business errors are printed, file exports are
written to disk, and an expired session asks you to sign in again.

Run 'apikit login --token <token>' to get started.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "Path to config file (default: <user config dir>/apikit/config.yaml)")
	flags.StringVar(&g.baseURL, "base-url", "", "Backend base URL (overrides base_url)")
	flags.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides log.level)")
	flags.StringVar(&g.backend, "session-backend", "", "Session store: memory, file, keyring, redis (overrides session.backend)")

	cmd.AddCommand(
		newLoginCommand(g),
		newLogoutCommand(g),
		newWhoamiCommand(g),
		newCallCommand(g, "get"),
		newCallCommand(g, "post"),
		newCallCommand(g, "put"),
		newCallCommand(g, "delete"),
		newExportCommand(g),
		newVersionCommand(),
	)
	return cmd
}
