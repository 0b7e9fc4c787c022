package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lgc202/apikit/version"
)

func newVersionCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			out := cmd.OutOrStdout()
			switch output {
			case "", "text":
				fmt.Fprintln(out, info.Text())
			case "json":
				s, err := info.JSON(true)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, s)
			case "short":
				fmt.Fprintln(out, info.String())
			default:
				return fmt.Errorf("unknown output format %q, want text, json or short", output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json or short")
	return cmd
}
