package cli

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lgc202/apikit/terminal"
)

func newExportCommand(g *globals) *cobra.Command {
	var (
		f      callFlags
		method string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export PATH",
		Short: "Download a file export",
		Long: `Call an export endpoint and write the returned file to disk.

Without -o the file name from the Content-Disposition header is used. If the
backend answers with a JSON envelope instead of a file, its message is shown
and nothing is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options()
			if err != nil {
				return err
			}
			body, err := f.body(cmd.InOrStdin())
			if err != nil {
				return err
			}
			return g.run(cmd, func(ctx context.Context, a *app) error {
				resp, err := a.client.Download(ctx, strings.ToUpper(method), args[0], body, opts...)
				if err != nil {
					return err
				}
				defer resp.Body.Close()

				name := output
				if name == "" {
					name = attachmentName(resp)
				}
				if name == "" {
					return fmt.Errorf("no file name in the response, use -o")
				}
				if name == "-" {
					_, err := io.Copy(cmd.OutOrStdout(), resp.Body)
					return err
				}
				n, err := writeFile(name, resp.Body)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), terminal.RenderInfo(fmt.Sprintf("Saved %s (%d bytes)", name, n)))
				return nil
			})
		},
	}
	f.register(cmd, true)
	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method of the export endpoint")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (- for stdout)")
	return cmd
}

// attachmentName returns the base name of the Content-Disposition filename.
func attachmentName(resp *http.Response) string {
	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
	if err != nil {
		return ""
	}
	name := filepath.Base(params["filename"])
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}

// writeFile streams r into name through a temporary file.
func writeFile(name string, r io.Reader) (int64, error) {
	tmp := name + ".part"
	fh, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", name, err)
	}
	n, err := io.Copy(fh, r)
	if cerr := fh.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, name); err != nil {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("write %s: %w", name, err)
	}
	return n, nil
}
