package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lgc202/apikit/terminal"
)

func newLoginCommand(g *globals) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login --token TOKEN",
		Short: "Store the session token",
		Long: `Store the token issued by the admin backend. Every request sends it in the
Authorization header until you log out or the backend reports the session expired.

Use --token - to read the token from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "-" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read token from stdin: %w", err)
				}
				token = line
			}
			return g.run(cmd, func(ctx context.Context, a *app) error {
				if err := a.session.Login(ctx, token); err != nil {
					return fmt.Errorf("login: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), terminal.RenderInfo("Logged in to "+a.settings.BaseURL))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Session token (- reads stdin)")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func newLogoutCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.run(cmd, func(ctx context.Context, a *app) error {
				if err := a.session.Logout(ctx); err != nil {
					return fmt.Errorf("logout: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), terminal.RenderInfo("Logged out"))
				return nil
			})
		},
	}
}

func newWhoamiCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.run(cmd, func(_ context.Context, a *app) error {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "base url: %s\n", a.settings.BaseURL)
				fmt.Fprintf(out, "backend:  %s\n", a.settings.Session.Backend)
				if !a.session.LoggedIn() {
					fmt.Fprintln(out, "session:  "+terminal.RenderMuted("not logged in"))
					return nil
				}
				fmt.Fprintf(out, "session:  %s\n", maskToken(a.session.Token()))
				return nil
			})
		},
	}
}

// maskToken keeps the first four characters of the token.
func maskToken(tok string) string {
	const keep = 4
	if len(tok) <= keep {
		return strings.Repeat("*", len(tok))
	}
	return tok[:keep] + strings.Repeat("*", min(len(tok)-keep, 8))
}
