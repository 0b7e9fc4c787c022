package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lgc202/apikit/request"
)

// callFlags are shared by the verb commands and export.
type callFlags struct {
	query   []string
	headers []string
	data    string
	raw     bool
}

func (f *callFlags) register(cmd *cobra.Command, withBody bool) {
	cmd.Flags().StringArrayVarP(&f.query, "query", "q", nil, "Query parameter key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, "Extra header key=value (repeatable)")
	if withBody {
		cmd.Flags().StringVarP(&f.data, "data", "d", "", "JSON body, @FILE to read a file, - to read stdin")
	}
}

func (f *callFlags) options() ([]request.CallOption, error) {
	var opts []request.CallOption
	for _, q := range f.query {
		k, v, ok := strings.Cut(q, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid query %q, want key=value", q)
		}
		opts = append(opts, request.Param(k, v))
	}
	for _, h := range f.headers {
		k, v, ok := strings.Cut(h, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid header %q, want key=value", h)
		}
		opts = append(opts, request.Header(k, v))
	}
	return opts, nil
}

// body returns the request body as raw JSON, or nil when --data is unset.
func (f *callFlags) body(in io.Reader) (any, error) {
	if f.data == "" {
		return nil, nil
	}
	var (
		b   []byte
		err error
	)
	switch {
	case f.data == "-":
		b, err = io.ReadAll(in)
	case strings.HasPrefix(f.data, "@"):
		b, err = os.ReadFile(f.data[1:])
	default:
		b = []byte(f.data)
	}
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	b = bytes.TrimSpace(b)
	if !json.Valid(b) {
		return nil, fmt.Errorf("body is not valid JSON")
	}
	return json.RawMessage(b), nil
}

func newCallCommand(g *globals, verb string) *cobra.Command {
	method := strings.ToUpper(verb)
	withBody := method == http.MethodPost || method == http.MethodPut
	var f callFlags

	cmd := &cobra.Command{
		Use:   verb + " PATH",
		Short: fmt.Sprintf("Send a %s request and print the response data", method),
		Args:  cobra.ExactArgs(1),
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
				res, err := a.client.Do(ctx, method, args[0], body, opts...)
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), res, f.raw)
			})
		},
	}
	f.register(cmd, withBody)
	cmd.Flags().BoolVar(&f.raw, "raw", false, "Print the whole envelope instead of its data")
	return cmd
}

// printResult writes the envelope data (or the whole envelope with raw) as
// indented JSON. A binary response is copied verbatim.
func printResult(w io.Writer, res *request.Result, raw bool) error {
	if res.IsBinary() {
		defer res.Binary.Body.Close()
		_, err := io.Copy(w, res.Binary.Body)
		return err
	}

	var src []byte
	if raw {
		b, err := json.Marshal(res.Envelope)
		if err != nil {
			return err
		}
		src = b
	} else {
		src = res.Envelope.Data
	}
	if len(src) == 0 || bytes.Equal(src, []byte("null")) {
		return nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, src, "", "  "); err != nil {
		return fmt.Errorf("format response: %w", err)
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}
